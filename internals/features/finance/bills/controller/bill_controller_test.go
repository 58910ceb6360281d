package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindergarten_backend/internals/constants"
	billDTO "kindergarten_backend/internals/features/finance/bills/dto"
	billModel "kindergarten_backend/internals/features/finance/bills/model"
	billRepo "kindergarten_backend/internals/features/finance/bills/repository"
	"kindergarten_backend/internals/features/finance/bills/service"
	childModel "kindergarten_backend/internals/features/school/children/model"
	childRepo "kindergarten_backend/internals/features/school/children/repository"
	uModel "kindergarten_backend/internals/features/users/user/model"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	helper "kindergarten_backend/internals/helpers"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

const serverKey = "SB-Mid-server-test"

type fakeGateway struct {
	calls []service.CheckoutInput
	err   error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, in service.CheckoutInput) (*service.Checkout, error) {
	g.calls = append(g.calls, in)
	if g.err != nil {
		return nil, g.err
	}
	return &service.Checkout{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil
}

func (g *fakeGateway) ServerKey() string { return serverKey }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	app     *fiber.App
	repo    *billRepo.MemoryBillRepository
	gateway *fakeGateway
	ctrl    *BillController
	parent  uModel.UserModel
	child   uuid.UUID
	now     time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    billRepo.NewMemoryBillRepository(),
		gateway: &fakeGateway{},
		child:   uuid.New(),
		now:     time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	f.parent = uModel.UserModel{ID: uuid.New(), Name: "Pak Budi", Email: "budi@test.io", Role: constants.RoleParent, IsActive: true}
	children := childRepo.NewMemoryChildRepository(childModel.ChildModel{ChildID: f.child, ChildName: "Amina", ChildAge: 4, ChildParentIDs: pq.StringArray{f.parent.ID.String()}})
	users := userRepo.NewMemoryUserRepository(f.parent)

	f.ctrl = NewBillController(f.repo, children, users, f.gateway, nil)
	f.ctrl.Now = func() time.Time { return f.now }

	f.app = fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		code, msg := helper.FromFiberError(err)
		return helper.JsonError(c, code, msg)
	}})
	f.app.Post("/api/payments/midtrans/notification", f.ctrl.MidtransNotification)
	// header X-Test-Role mensimulasikan auth middleware
	f.app.Use(func(c *fiber.Ctx) error {
		role := c.Get("X-Test-Role", constants.RoleAdmin)
		uid := uuid.NewString()
		if role == constants.RoleParent {
			uid = c.Get("X-Test-User", f.parent.ID.String())
		}
		c.Locals(helper.LocUserID, uid)
		c.Locals(helper.LocUserRole, role)
		return c.Next()
	})
	staff := authMiddleware.OnlyRoles(constants.RoleErrorStaff("bills"), constants.StaffAndAbove...)
	f.app.Get("/api/bills", f.ctrl.GetBills)
	f.app.Get("/api/bills/export", f.ctrl.ExportBills)
	f.app.Get("/api/bills/:id", f.ctrl.GetBill)
	f.app.Post("/api/bills/:id/pay", f.ctrl.PayBill)
	f.app.Post("/api/bills", staff, f.ctrl.CreateBill)
	f.app.Put("/api/bills/:id", staff, f.ctrl.UpdateBill)
	f.app.Delete("/api/bills/:id", staff, f.ctrl.DeleteBill)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body, role string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func (f *fixture) createBill(t *testing.T, extra string) billDTO.BillResponse {
	t.Helper()
	body := `{"childId":"` + f.child.String() + `","parentId":"` + f.parent.ID.String() + `","amount":150000,"dueDate":"2024-06-10"` + extra + `}`
	code, env := f.do(t, "POST", "/api/bills", body, "")
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	var out billDTO.BillResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestCreateBillDefaults(t *testing.T) {
	f := setup(t)
	b := f.createBill(t, "")
	assert.Equal(t, constants.BillStatusUnpaid, b.Status)
	assert.Equal(t, "2024-06-10", b.DueDate)
	assert.Nil(t, b.PaidAt)

	paid := f.createBill(t, `,"status":"paid"`)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(f.now))
}

func TestCreateBillErrors(t *testing.T) {
	f := setup(t)
	child, parent := f.child.String(), f.parent.ID.String()
	tests := []struct {
		name string
		body string
		role string
		want int
	}{
		{"zero amount", `{"childId":"` + child + `","parentId":"` + parent + `","amount":0,"dueDate":"2024-06-10"}`, "", fiber.StatusUnprocessableEntity},
		{"negative amount", `{"childId":"` + child + `","parentId":"` + parent + `","amount":-5,"dueDate":"2024-06-10"}`, "", fiber.StatusUnprocessableEntity},
		{"bad status", `{"childId":"` + child + `","parentId":"` + parent + `","amount":5,"dueDate":"2024-06-10","status":"lunas"}`, "", fiber.StatusUnprocessableEntity},
		{"missing due date", `{"childId":"` + child + `","parentId":"` + parent + `","amount":5}`, "", fiber.StatusUnprocessableEntity},
		{"bad due date", `{"childId":"` + child + `","parentId":"` + parent + `","amount":5,"dueDate":"besok"}`, "", fiber.StatusBadRequest},
		{"unknown child", `{"childId":"` + uuid.NewString() + `","parentId":"` + parent + `","amount":5,"dueDate":"2024-06-10"}`, "", fiber.StatusNotFound},
		{"teacher forbidden", `{}`, constants.RoleTeacher, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := f.do(t, "POST", "/api/bills", tt.body, tt.role)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestParentSeesOwnBills(t *testing.T) {
	f := setup(t)
	mine := f.createBill(t, "")
	other := f.repo
	_ = other.Create(context.Background(), &billModel.BillModel{BillChildID: uuid.New(), BillParentID: uuid.New(), BillAmount: 1, BillStatus: constants.BillStatusUnpaid})

	code, env := f.do(t, "GET", "/api/bills?parentId="+uuid.NewString(), "", constants.RoleParent)
	require.Equal(t, fiber.StatusOK, code)
	var list []billDTO.BillResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	code, env = f.do(t, "GET", "/api/bills?status=unpaid", "", "")
	require.Equal(t, fiber.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	code, _ = f.do(t, "GET", "/api/bills?status=lunas", "", "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestUpdateToPaidStampsPaidAt(t *testing.T) {
	f := setup(t)
	b := f.createBill(t, "")
	path := "/api/bills/" + b.ID.String()

	code, env := f.do(t, "PUT", path, `{}`, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "No data to update", env.Message)

	code, env = f.do(t, "PUT", path, `{"status":"paid"}`, constants.RoleStaff)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var updated billDTO.BillResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, constants.BillStatusPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)
	assert.True(t, updated.PaidAt.Equal(f.now))

	code, _ = f.do(t, "DELETE", path, "", "")
	assert.Equal(t, fiber.StatusOK, code)
	code, env = f.do(t, "GET", path, "", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Bill not found", env.Message)
}

func TestPayAndWebhook(t *testing.T) {
	f := setup(t)
	b := f.createBill(t, `,"description":"SPP Juni"`)

	code, env := f.do(t, "POST", "/api/bills/"+b.ID.String()+"/pay", "", constants.RoleParent)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var out service.Checkout
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "snap-token", out.Token)

	require.Len(t, f.gateway.calls, 1)
	call := f.gateway.calls[0]
	assert.Equal(t, service.OrderID(b.ID, f.now), call.OrderID)
	assert.Equal(t, "Amina", call.ChildName)
	assert.Equal(t, "budi@test.io", call.ParentEmail)

	stored, err := f.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.BillStatusPending, stored.BillStatus)
	require.NotNil(t, stored.BillOrderID)

	notify := func(sig, status string) (int, string) {
		body, _ := json.Marshal(map[string]string{
			"order_id": call.OrderID, "status_code": "200", "gross_amount": "150000.00",
			"transaction_status": status, "signature_key": sig,
		})
		req := httptest.NewRequest("POST", "/api/payments/midtrans/notification", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(raw)
	}

	code, _ = notify("deadbeef", "settlement")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, raw := notify(service.Signature(call.OrderID, "200", "150000.00", serverKey), "settlement")
	require.Equal(t, fiber.StatusOK, code, raw)
	stored, err = f.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.BillStatusPaid, stored.BillStatus)
	require.NotNil(t, stored.BillPaidAt)

	code, env = f.do(t, "POST", "/api/bills/"+b.ID.String()+"/pay", "", constants.RoleParent)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Bill already paid", env.Message)
}

func TestLateNotificationKeepsPaidBill(t *testing.T) {
	f := setup(t)
	b := f.createBill(t, "")
	code, env := f.do(t, "POST", "/api/bills/"+b.ID.String()+"/pay", "", "")
	require.Equal(t, fiber.StatusOK, code, env.Message)
	orderID := f.gateway.calls[0].OrderID

	notify := func(status string) {
		body, _ := json.Marshal(map[string]string{
			"order_id": orderID, "status_code": "200", "gross_amount": "150000.00",
			"transaction_status": status, "signature_key": service.Signature(orderID, "200", "150000.00", serverKey),
		})
		req := httptest.NewRequest("POST", "/api/payments/midtrans/notification", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	notify("settlement")
	stored, err := f.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.BillPaidAt)
	paidAt := *stored.BillPaidAt

	for _, late := range []string{"pending", "expire", "cancel"} {
		f.now = f.now.Add(time.Hour)
		notify(late)
		stored, err = f.repo.FindByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.BillStatusPaid, stored.BillStatus, late)
		require.NotNil(t, stored.BillPaidAt)
		assert.True(t, paidAt.Equal(*stored.BillPaidAt), late)
	}
}

func TestPayErrors(t *testing.T) {
	f := setup(t)
	b := f.createBill(t, "")
	path := "/api/bills/" + b.ID.String() + "/pay"

	req := httptest.NewRequest("POST", path, nil)
	req.Header.Set("X-Test-Role", constants.RoleParent)
	req.Header.Set("X-Test-User", uuid.NewString())
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	f.gateway.err = errors.New("midtrans down")
	code, _ := f.do(t, "POST", path, "", "")
	assert.Equal(t, fiber.StatusBadGateway, code)

	f.ctrl.Gateway = nil
	code, env := f.do(t, "POST", path, "", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
	assert.Equal(t, "Payment gateway not configured", env.Message)
}

func TestExportBills(t *testing.T) {
	f := setup(t)
	f.createBill(t, "")
	resp, err := f.app.Test(httptest.NewRequest("GET", "/api/bills/export?format=xlsx", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "bills-")
}
