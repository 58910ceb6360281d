package controller

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindergarten_backend/internals/constants"
	childModel "kindergarten_backend/internals/features/school/children/model"
	reportDTO "kindergarten_backend/internals/features/school/reports/dto"
	reportModel "kindergarten_backend/internals/features/school/reports/model"
	reportRepo "kindergarten_backend/internals/features/school/reports/repository"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/dbtime"
	"kindergarten_backend/internals/helpers/export"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/realtime"
)

type ChildLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*childModel.ChildModel, error)
	IDsByParent(ctx context.Context, parentID string) ([]string, error)
}

type ReportController struct {
	Repo     reportRepo.ReportRepository
	Children ChildLookup
	Events   realtime.Publisher
}

func NewReportController(repo reportRepo.ReportRepository, children ChildLookup, events realtime.Publisher) *ReportController {
	if events == nil {
		events = realtime.Nop{}
	}
	return &ReportController{Repo: repo, Children: children, Events: events}
}

// publish: parent dari anak yang bersangkutan ikut menerima event.
func (rc *ReportController) publish(ctx context.Context, action string, m *reportModel.ReportModel) {
	ev := realtime.Event{Topic: constants.TopicReports, Action: action, ID: m.ReportID.String()}
	if child, err := rc.Children.FindByID(ctx, m.ReportChildID); err == nil {
		ev.Audience = child.ChildParentIDs
	} else {
		logger.FromContext(ctx).Warn("report event audience", zap.Error(err))
	}
	rc.Events.Publish(ev)
}

// child memastikan anak ada (404) dan, untuk parent, miliknya sendiri (403).
func (rc *ReportController) child(c *fiber.Ctx, raw string) (*childModel.ChildModel, error) {
	id, err := helper.ParseUUIDParam(raw, "childId")
	if err != nil {
		return nil, err
	}
	m, err := rc.Children.FindByID(c.UserContext(), id)
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
			return nil, fiber.NewError(fiber.StatusForbidden, "You may only view reports of your own children")
		}
	}
	return m, nil
}

func (rc *ReportController) listFor(c *fiber.Ctx, rawChild string) ([]reportModel.ReportModel, error) {
	child, err := rc.child(c, rawChild)
	if err != nil {
		return nil, err
	}
	f := reportRepo.ReportFilter{ChildID: &child.ChildID, Type: strings.ToLower(strings.TrimSpace(c.Query("type")))}
	list, err := rc.Repo.List(c.UserContext(), f)
	if err != nil {
		logger.FromCtx(c).Error("list reports", zap.Error(err))
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch reports")
	}
	return list, nil
}

// GET /api/reports?childId=
func (rc *ReportController) GetReports(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("childId"))
	if raw == "" {
		return fiber.NewError(fiber.StatusBadRequest, "childId is required")
	}
	list, err := rc.listFor(c, raw)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "ok", reportDTO.FromModels(list), nil)
}

// GET /api/reports/:childId
func (rc *ReportController) GetReportsByChild(c *fiber.Ctx) error {
	list, err := rc.listFor(c, c.Params("childId"))
	if err != nil {
		return err
	}
	return helper.JsonList(c, "ok", reportDTO.FromModels(list), nil)
}

// POST /api/reports
func (rc *ReportController) CreateReport(c *fiber.Ctx) error {
	var req reportDTO.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	if _, err := rc.child(c, req.ChildID); err != nil {
		return err
	}

	var author *uuid.UUID
	if uid, err := helper.GetUserIDFromToken(c); err == nil {
		author = &uid
	}
	m, err := req.ToModel(author)
	if err != nil {
		return err
	}
	if err := rc.Repo.Create(c.UserContext(), m); err != nil {
		logger.FromCtx(c).Error("create report", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create report")
	}
	rc.publish(c.UserContext(), realtime.ActionCreated, m)
	return helper.JsonCreated(c, "Report created", reportDTO.FromModel(m))
}

func (rc *ReportController) load(c *fiber.Ctx) (*reportModel.ReportModel, error) {
	id, err := helper.ParseUUIDParam(c.Params("id"), "report id")
	if err != nil {
		return nil, err
	}
	m, err := rc.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Report not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch report")
	}
	return m, nil
}

// PUT /api/reports/:id
func (rc *ReportController) UpdateReport(c *fiber.Ctx) error {
	m, err := rc.load(c)
	if err != nil {
		return err
	}
	var req reportDTO.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if req.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "No data to update")
	}
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	if err := req.Apply(m); err != nil {
		return err
	}
	if err := rc.Repo.Save(c.UserContext(), m); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update report")
	}
	rc.publish(c.UserContext(), realtime.ActionUpdated, m)
	return helper.JsonUpdated(c, "Report updated", reportDTO.FromModel(m))
}

// DELETE /api/reports/:id
func (rc *ReportController) DeleteReport(c *fiber.Ctx) error {
	m, err := rc.load(c)
	if err != nil {
		return err
	}
	if err := rc.Repo.Delete(c.UserContext(), m.ReportID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete report")
	}
	rc.publish(c.UserContext(), realtime.ActionDeleted, m)
	return helper.JsonDeleted(c, "Report deleted", fiber.Map{"id": m.ReportID})
}

// GET /api/reports/export?childId=&format=xlsx|pdf
// Tanpa childId: admin/staff/guru dapat semua, parent hanya anaknya.
func (rc *ReportController) ExportReports(c *fiber.Ctx) error {
	var f reportRepo.ReportFilter
	title := "Reports"
	if raw := strings.TrimSpace(c.Query("childId")); raw != "" {
		child, err := rc.child(c, raw)
		if err != nil {
			return err
		}
		f.ChildID = &child.ChildID
		title = "Reports - " + child.ChildName
	} else if helper.IsParentRequest(c) {
		uid, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return err
		}
		ids, err := rc.Children.IDsByParent(c.UserContext(), uid.String())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch children")
		}
		f.ChildIDs = ids
	}
	list, err := rc.Repo.List(c.UserContext(), f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch reports")
	}

	t := export.Table{
		Title: title,
		Columns: []export.Column{
			{Header: "Date", Width: 2}, {Header: "Type", Width: 1.5}, {Header: "Child", Width: 3}, {Header: "Content", Width: 6},
		},
	}
	for _, m := range list {
		t.Rows = append(t.Rows, []string{
			dbtime.FormatDate(m.ReportDate),
			m.ReportType,
			m.ReportChildID.String(),
			m.ReportContent,
		})
	}
	return export.Send(c, t, "reports")
}
