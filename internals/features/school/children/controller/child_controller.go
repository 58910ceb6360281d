package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindergarten_backend/internals/constants"
	childDTO "kindergarten_backend/internals/features/school/children/dto"
	childModel "kindergarten_backend/internals/features/school/children/model"
	childRepo "kindergarten_backend/internals/features/school/children/repository"
	classModel "kindergarten_backend/internals/features/school/classes/model"
	userDTO "kindergarten_backend/internals/features/users/user/dto"
	uModel "kindergarten_backend/internals/features/users/user/model"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/export"
	"kindergarten_backend/internals/helpers/storage"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/realtime"
)

const imageDir = "children"

// ClassEnroller is the slice of the class service children need.
type ClassEnroller interface {
	List(ctx context.Context) ([]classModel.ClassModel, error)
	Get(ctx context.Context, id uuid.UUID) (*classModel.ClassModel, error)
	EnrollChild(ctx context.Context, childID string, classID *uuid.UUID) error
	RemoveChild(ctx context.Context, childID string) error
}

type ParentFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]uModel.UserModel, error)
}

type ChildController struct {
	Repo    childRepo.ChildRepository
	Classes ClassEnroller
	Parents ParentFinder
	Blob    storage.BlobService
	Events  realtime.Publisher
}

func NewChildController(repo childRepo.ChildRepository, classes ClassEnroller, parents ParentFinder, blob storage.BlobService, events realtime.Publisher) *ChildController {
	if events == nil {
		events = realtime.Nop{}
	}
	return &ChildController{Repo: repo, Classes: classes, Parents: parents, Blob: blob, Events: events}
}

// publish: parent anak (ditambah parent lama saat update) ikut menerima event.
func (cc *ChildController) publish(action string, m *childModel.ChildModel, formerParents ...string) {
	audience := append(append([]string{}, m.ChildParentIDs...), formerParents...)
	cc.Events.Publish(realtime.Event{Topic: constants.TopicChildren, Action: action, ID: m.ChildID.String(), Audience: audience})
}

// load mengambil anak dari :id; parent hanya boleh melihat anaknya sendiri.
func (cc *ChildController) load(c *fiber.Ctx) (*childModel.ChildModel, error) {
	id, err := helper.ParseUUIDParam(c.Params("id"), "child id")
	if err != nil {
		return nil, err
	}
	m, err := cc.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Child not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch child")
	}
	if helper.IsParentRequest(c) {
		uid, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return nil, err
		}
		if !m.HasParent(uid.String()) {
			return nil, fiber.NewError(fiber.StatusForbidden, "You may only access your own children")
		}
	}
	return m, nil
}

func (cc *ChildController) filterFromQuery(c *fiber.Ctx) (childRepo.ChildFilter, error) {
	f := childRepo.ChildFilter{
		Name:     strings.TrimSpace(c.Query("name")),
		ParentID: strings.TrimSpace(c.Query("parentId")),
	}
	if raw := strings.TrimSpace(c.Query("classId")); raw != "" {
		id, err := helper.ParseUUIDParam(raw, "classId")
		if err != nil {
			return f, err
		}
		f.ClassID = &id
	}
	if helper.IsParentRequest(c) {
		uid, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return f, err
		}
		f.ParentID = uid.String()
	}
	return f, nil
}

// GET /api/children?name=&classId=&parentId=
func (cc *ChildController) GetChildren(c *fiber.Ctx) error {
	f, err := cc.filterFromQuery(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	f.Offset, f.Limit = p.Offset, p.Limit

	list, total, err := cc.Repo.List(c.UserContext(), f)
	if err != nil {
		logger.FromCtx(c).Error("list children", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch children")
	}
	pg := helper.BuildPagination(total, p)
	return helper.JsonList(c, "ok", childDTO.FromModels(list), &pg)
}

// GET /api/children/:id
func (cc *ChildController) GetChild(c *fiber.Ctx) error {
	m, err := cc.load(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "", childDTO.FromModel(m))
}

// GET /api/children/:id/parents
func (cc *ChildController) GetChildParents(c *fiber.Ctx) error {
	m, err := cc.load(c)
	if err != nil {
		return err
	}
	users, err := cc.Parents.FindByIDs(c.UserContext(), m.ChildParentIDs)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch parents")
	}
	return helper.JsonList(c, "ok", userDTO.FromModels(users), nil)
}

/* ===================== images ===================== */

type imageField struct {
	name  string
	input *string
	dst   **string
}

func childImageFields(m *childModel.ChildModel, image, healthRecord, guardianAuth *string) []imageField {
	return []imageField{
		{name: "image", input: image, dst: &m.ChildImage},
		{name: "healthRecordImage", input: healthRecord, dst: &m.ChildHealthRecordImage},
		{name: "guardianAuthImage", input: guardianAuth, dst: &m.ChildGuardianAuthImage},
	}
}

// applyImages: upload file atau pakai URL string. Field yang tidak dikirim tidak diubah;
// string kosong menghapus gambar. Return URL baru yang di-upload dan URL lama yang diganti.
func (cc *ChildController) applyImages(c *fiber.Ctx, fields []imageField) (uploaded, replaced []string, err error) {
	ctx := c.UserContext()
	for _, f := range fields {
		hasFile := storage.FormFile(c, f.name) != nil
		if !hasFile && f.input == nil {
			continue
		}
		url, err := storage.ResolveImageField(ctx, cc.Blob, c, f.name, imageDir, f.input)
		if err != nil {
			storage.DeleteQuietly(ctx, cc.Blob, uploaded...)
			return nil, nil, err
		}
		if hasFile && url != nil {
			uploaded = append(uploaded, *url)
		}
		if old := *f.dst; old != nil && (url == nil || *old != *url) {
			replaced = append(replaced, *old)
		}
		*f.dst = url
	}
	return uploaded, replaced, nil
}

/* ===================== create ===================== */

func (cc *ChildController) parseCreate(c *fiber.Ctx) (*childDTO.CreateChildRequest, error) {
	var req childDTO.CreateChildRequest
	if storage.IsMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid multipart form")
		}
		if err := req.FromForm(form.Value); err != nil {
			return nil, err
		}
	} else if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	return &req, nil
}

// insert menyimpan anak lalu mendaftarkannya ke kelas; gagal daftar = anak dihapus lagi.
func (cc *ChildController) insert(ctx context.Context, m *childModel.ChildModel, classID uuid.UUID) error {
	if _, err := cc.Classes.Get(ctx, classID); err != nil {
		return err
	}
	if err := cc.Repo.Create(ctx, m); err != nil {
		logger.FromContext(ctx).Error("create child", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create child")
	}
	if err := cc.Classes.EnrollChild(ctx, m.ChildID.String(), &classID); err != nil {
		if derr := cc.Repo.Delete(ctx, m.ChildID); derr != nil {
			logger.FromContext(ctx).Error("rollback child create", zap.Error(derr))
		}
		return err
	}
	m.ChildClassID = &classID
	return nil
}

// POST /api/children (JSON atau multipart)
func (cc *ChildController) CreateChild(c *fiber.Ctx) error {
	req, err := cc.parseCreate(c)
	if err != nil {
		return err
	}
	if ok, err := helper.Validate(c, req); !ok {
		return err
	}
	classID := uuid.MustParse(req.ClassID)

	m := req.ToModel()
	uploaded, _, err := cc.applyImages(c, childImageFields(m, req.Image, req.HealthRecordImage, req.GuardianAuthImage))
	if err != nil {
		return err
	}
	if err := cc.insert(c.UserContext(), m, classID); err != nil {
		storage.DeleteQuietly(c.UserContext(), cc.Blob, uploaded...)
		return err
	}
	cc.publish(realtime.ActionCreated, m)
	return helper.JsonCreated(c, "Child created", childDTO.FromModel(m))
}

/* ===================== update ===================== */

// PUT /api/children/:id
func (cc *ChildController) UpdateChild(c *fiber.Ctx) error {
	m, err := cc.load(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var req childDTO.UpdateChildRequest
	if storage.IsMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid multipart form")
		}
		if err := req.FromForm(form.Value); err != nil {
			return err
		}
		req.Uploaded = map[string]bool{}
		for name := range form.File {
			req.Uploaded[name] = true
		}
	} else if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if req.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "No data to update")
	}
	if ok, err := helper.Validate(c, req.ValidationTarget()); !ok {
		return err
	}

	// pindah kelas dijalankan setelah Save berhasil; kalau gagal, data anak dikembalikan
	prev := *m
	move := false
	var target *uuid.UUID
	if req.ClassID != nil {
		if *req.ClassID != "" {
			cid := uuid.MustParse(*req.ClassID)
			target = &cid
		}
		if !sameClass(m.ChildClassID, target) {
			if target != nil {
				if _, err := cc.Classes.Get(ctx, *target); err != nil {
					return err
				}
			}
			move = true
			m.ChildClassID = target
		}
	}

	req.Apply(m)
	uploaded, replaced, err := cc.applyImages(c, childImageFields(m, req.Image, req.HealthRecordImage, req.GuardianAuthImage))
	if err != nil {
		return err
	}
	if err := cc.Repo.Save(ctx, m); err != nil {
		storage.DeleteQuietly(ctx, cc.Blob, uploaded...)
		logger.FromCtx(c).Error("update child", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update child")
	}
	if move {
		if err := cc.Classes.EnrollChild(ctx, m.ChildID.String(), target); err != nil {
			if rerr := cc.Repo.Save(ctx, &prev); rerr != nil {
				logger.FromCtx(c).Error("rollback child update", zap.Error(rerr))
			}
			storage.DeleteQuietly(ctx, cc.Blob, uploaded...)
			return err
		}
	}
	storage.DeleteQuietly(ctx, cc.Blob, replaced...)

	cc.publish(realtime.ActionUpdated, m, prev.ChildParentIDs...)
	return helper.JsonUpdated(c, "Child updated", childDTO.FromModel(m))
}

func sameClass(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

/* ===================== delete ===================== */

// DELETE /api/children/:id
func (cc *ChildController) DeleteChild(c *fiber.Ctx) error {
	m, err := cc.load(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	if err := cc.Classes.RemoveChild(ctx, m.ChildID.String()); err != nil {
		return err
	}
	if err := cc.Repo.Delete(ctx, m.ChildID); err != nil {
		if helper.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "Child not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete child")
	}
	storage.DeleteQuietly(ctx, cc.Blob, m.ImageURLs()...)

	cc.publish(realtime.ActionDeleted, m)
	return helper.JsonDeleted(c, "Child deleted", fiber.Map{"id": m.ChildID})
}

/* ===================== export / import ===================== */

// GET /api/children/export?format=xlsx|pdf
func (cc *ChildController) ExportChildren(c *fiber.Ctx) error {
	f, err := cc.filterFromQuery(c)
	if err != nil {
		return err
	}
	list, _, err := cc.Repo.List(c.UserContext(), f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch children")
	}
	classNames := map[uuid.UUID]string{}
	if classes, err := cc.Classes.List(c.UserContext()); err == nil {
		for _, cl := range classes {
			classNames[cl.ClassID] = cl.ClassName
		}
	}

	t := export.Table{
		Title: "Children",
		Columns: []export.Column{
			{Header: "Name", Width: 3}, {Header: "Age", Width: 1}, {Header: "Class", Width: 2},
			{Header: "Parents", Width: 3}, {Header: "Health", Width: 3}, {Header: "Created", Width: 2},
		},
	}
	for _, m := range list {
		class := ""
		if m.ChildClassID != nil {
			class = classNames[*m.ChildClassID]
		}
		t.Rows = append(t.Rows, []string{
			m.ChildName,
			strconv.Itoa(m.ChildAge),
			class,
			strings.Join(m.ChildParentIDs, ", "),
			deref(m.ChildHealth),
			m.ChildCreatedAt.Format("2006-01-02"),
		})
	}
	return export.Send(c, t, "children")
}

type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// POST /api/children/import (xlsx: name, age, classId, parentIds)
func (cc *ChildController) ImportChildren(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if constants.DetectFileKindFromExt(fh.Filename) != constants.FileKindSpreadsheet {
		return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files are allowed")
	}
	src, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to read file")
	}
	defer src.Close()

	rows, err := export.ReadXLSX(src)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()
	imported := 0
	rowErrors := []ImportRowError{}
	for _, rec := range rows {
		row, _ := strconv.Atoi(rec["_row"])
		req, err := rowRequest(rec)
		if err == nil {
			if fields := helper.ValidateStruct(req); fields != nil {
				err = fmt.Errorf("%s", firstFieldError(fields))
			}
		}
		if err == nil {
			m := req.ToModel()
			if ierr := cc.insert(ctx, m, uuid.MustParse(req.ClassID)); ierr != nil {
				_, msg := helper.FromFiberError(ierr)
				err = fmt.Errorf("%s", msg)
			} else {
				imported++
				cc.publish(realtime.ActionCreated, m)
			}
		}
		if err != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: row, Error: err.Error()})
		}
	}
	return helper.JsonOK(c, fmt.Sprintf("%d children imported", imported), fiber.Map{
		"imported": imported,
		"errors":   rowErrors,
	})
}

func rowRequest(rec map[string]string) (*childDTO.CreateChildRequest, error) {
	form := map[string][]string{}
	for _, k := range []string{"name", "age", "classId", "parentIds", "health"} {
		if v, ok := rec[strings.ToLower(k)]; ok {
			form[k] = []string{v}
		}
	}
	var req childDTO.CreateChildRequest
	if err := req.FromForm(form); err != nil {
		_, msg := helper.FromFiberError(err)
		return nil, fmt.Errorf("%s", msg)
	}
	req.Normalize()
	return &req, nil
}

func firstFieldError(fields map[string][]string) string {
	for _, k := range []string{"name", "age", "classId"} {
		if msgs := fields[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	for _, msgs := range fields {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "invalid row"
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
