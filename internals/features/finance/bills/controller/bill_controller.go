package controller

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindergarten_backend/internals/constants"
	billDTO "kindergarten_backend/internals/features/finance/bills/dto"
	billModel "kindergarten_backend/internals/features/finance/bills/model"
	billRepo "kindergarten_backend/internals/features/finance/bills/repository"
	"kindergarten_backend/internals/features/finance/bills/service"
	childModel "kindergarten_backend/internals/features/school/children/model"
	uModel "kindergarten_backend/internals/features/users/user/model"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/dbtime"
	"kindergarten_backend/internals/helpers/export"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/realtime"
)

type ChildFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*childModel.ChildModel, error)
	FindByIDs(ctx context.Context, ids []string) ([]childModel.ChildModel, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*uModel.UserModel, error)
	FindByIDs(ctx context.Context, ids []string) ([]uModel.UserModel, error)
}

type BillController struct {
	Repo     billRepo.BillRepository
	Children ChildFinder
	Users    UserFinder
	Gateway  service.Gateway // nil = Midtrans tidak dikonfigurasi
	Events   realtime.Publisher
	Now      func() time.Time
}

func NewBillController(repo billRepo.BillRepository, children ChildFinder, users UserFinder, gateway service.Gateway, events realtime.Publisher) *BillController {
	if events == nil {
		events = realtime.Nop{}
	}
	return &BillController{Repo: repo, Children: children, Users: users, Gateway: gateway, Events: events, Now: time.Now}
}

func (bc *BillController) publish(action string, m *billModel.BillModel) {
	bc.Events.Publish(realtime.Event{
		Topic: constants.TopicBills, Action: action, ID: m.BillID.String(),
		Audience: []string{m.BillParentID.String()},
	})
}

func (bc *BillController) load(c *fiber.Ctx) (*billModel.BillModel, error) {
	id, err := helper.ParseUUIDParam(c.Params("id"), "bill id")
	if err != nil {
		return nil, err
	}
	m, err := bc.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Bill not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch bill")
	}
	if helper.IsParentRequest(c) {
		uid, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return nil, err
		}
		if m.BillParentID != uid {
			return nil, fiber.NewError(fiber.StatusForbidden, "You may only access your own bills")
		}
	}
	return m, nil
}

func (bc *BillController) filterFromQuery(c *fiber.Ctx) (billRepo.BillFilter, error) {
	var f billRepo.BillFilter
	if raw := strings.TrimSpace(c.Query("childId")); raw != "" {
		id, err := helper.ParseUUIDParam(raw, "childId")
		if err != nil {
			return f, err
		}
		f.ChildID = &id
	}
	if raw := strings.TrimSpace(c.Query("parentId")); raw != "" {
		id, err := helper.ParseUUIDParam(raw, "parentId")
		if err != nil {
			return f, err
		}
		f.ParentID = &id
	}
	if s := strings.ToLower(strings.TrimSpace(c.Query("status"))); s != "" {
		if !isBillStatus(s) {
			return f, fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		f.Status = s
	}
	if helper.IsParentRequest(c) {
		uid, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return f, err
		}
		f.ParentID = &uid
	}
	return f, nil
}

func isBillStatus(s string) bool {
	for _, x := range constants.BillStatuses {
		if x == s {
			return true
		}
	}
	return false
}

// GET /api/bills?childId=&parentId=&status=
func (bc *BillController) GetBills(c *fiber.Ctx) error {
	f, err := bc.filterFromQuery(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	f.Offset, f.Limit = p.Offset, p.Limit

	list, total, err := bc.Repo.List(c.UserContext(), f)
	if err != nil {
		logger.FromCtx(c).Error("list bills", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch bills")
	}
	pg := helper.BuildPagination(total, p)
	return helper.JsonList(c, "ok", billDTO.FromModels(list), &pg)
}

// GET /api/bills/:id
func (bc *BillController) GetBill(c *fiber.Ctx) error {
	m, err := bc.load(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "", billDTO.FromModel(m))
}

// POST /api/bills
func (bc *BillController) CreateBill(c *fiber.Ctx) error {
	var req billDTO.CreateBillRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	m, err := req.ToModel(bc.Now())
	if err != nil {
		return err
	}
	if _, err := bc.Children.FindByID(c.UserContext(), m.BillChildID); err != nil {
		if helper.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "Child not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch child")
	}
	if err := bc.Repo.Create(c.UserContext(), m); err != nil {
		logger.FromCtx(c).Error("create bill", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create bill")
	}
	bc.publish(realtime.ActionCreated, m)
	return helper.JsonCreated(c, "Bill created", billDTO.FromModel(m))
}

// PUT /api/bills/:id
func (bc *BillController) UpdateBill(c *fiber.Ctx) error {
	m, err := bc.load(c)
	if err != nil {
		return err
	}
	var req billDTO.UpdateBillRequest
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
	if err := req.Apply(m, bc.Now()); err != nil {
		return err
	}
	if err := bc.Repo.Save(c.UserContext(), m); err != nil {
		logger.FromCtx(c).Error("update bill", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update bill")
	}
	bc.publish(realtime.ActionUpdated, m)
	return helper.JsonUpdated(c, "Bill updated", billDTO.FromModel(m))
}

// DELETE /api/bills/:id
func (bc *BillController) DeleteBill(c *fiber.Ctx) error {
	m, err := bc.load(c)
	if err != nil {
		return err
	}
	if err := bc.Repo.Delete(c.UserContext(), m.BillID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete bill")
	}
	bc.publish(realtime.ActionDeleted, m)
	return helper.JsonDeleted(c, "Bill deleted", fiber.Map{"id": m.BillID})
}

// POST /api/bills/:id/pay → Midtrans Snap
func (bc *BillController) PayBill(c *fiber.Ctx) error {
	m, err := bc.load(c)
	if err != nil {
		return err
	}
	if m.BillStatus == constants.BillStatusPaid {
		return fiber.NewError(fiber.StatusBadRequest, "Bill already paid")
	}
	if bc.Gateway == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Payment gateway not configured")
	}
	ctx := c.UserContext()

	in := service.CheckoutInput{
		OrderID: service.OrderID(m.BillID, bc.Now()),
		Amount:  m.BillAmount,
	}
	if m.BillDescription != nil {
		in.Description = *m.BillDescription
	}
	if child, err := bc.Children.FindByID(ctx, m.BillChildID); err == nil {
		in.ChildName = child.ChildName
	}
	if parent, err := bc.Users.FindByID(ctx, m.BillParentID); err == nil {
		in.ParentName, in.ParentEmail = parent.Name, parent.Email
		if parent.Phone != nil {
			in.ParentPhone = *parent.Phone
		}
	}

	out, err := bc.Gateway.CreateCheckout(ctx, in)
	if err != nil {
		logger.FromCtx(c).Error("midtrans checkout", zap.String("order_id", in.OrderID), zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "Failed to create payment")
	}

	m.BillOrderID = &in.OrderID
	m.BillPaymentURL = &out.RedirectURL
	m.BillStatus = constants.BillStatusPending
	if err := bc.Repo.Save(ctx, m); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update bill")
	}
	bc.publish(realtime.ActionUpdated, m)
	return helper.JsonOK(c, "Payment created", out)
}

// GET /api/bills/export?format=xlsx|pdf
func (bc *BillController) ExportBills(c *fiber.Ctx) error {
	f, err := bc.filterFromQuery(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	list, _, err := bc.Repo.List(ctx, f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch bills")
	}

	childIDs, parentIDs := make([]string, 0, len(list)), make([]string, 0, len(list))
	for _, b := range list {
		childIDs = append(childIDs, b.BillChildID.String())
		parentIDs = append(parentIDs, b.BillParentID.String())
	}
	childNames := map[uuid.UUID]string{}
	if children, err := bc.Children.FindByIDs(ctx, helper.UniqueStrings(childIDs)); err == nil {
		for _, ch := range children {
			childNames[ch.ChildID] = ch.ChildName
		}
	}
	parentNames := map[uuid.UUID]string{}
	if users, err := bc.Users.FindByIDs(ctx, helper.UniqueStrings(parentIDs)); err == nil {
		for _, u := range users {
			parentNames[u.ID] = u.Name
		}
	}

	t := export.Table{
		Title: "Bills",
		Columns: []export.Column{
			{Header: "Child", Width: 3}, {Header: "Parent", Width: 3}, {Header: "Amount", Width: 2},
			{Header: "Due Date", Width: 2}, {Header: "Status", Width: 1.5}, {Header: "Paid At", Width: 2},
			{Header: "Description", Width: 4},
		},
	}
	for _, b := range list {
		desc := ""
		if b.BillDescription != nil {
			desc = *b.BillDescription
		}
		t.Rows = append(t.Rows, []string{
			orDefault(childNames[b.BillChildID], b.BillChildID.String()),
			orDefault(parentNames[b.BillParentID], b.BillParentID.String()),
			strconv.FormatFloat(b.BillAmount, 'f', 2, 64),
			dbtime.FormatDate(b.BillDueDate),
			b.BillStatus,
			dbtime.FormatDatePtr(b.BillPaidAt),
			desc,
		})
	}
	return export.Send(c, t, "bills")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
