package dto

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kindergarten_backend/internals/constants"
	billModel "kindergarten_backend/internals/features/finance/bills/model"
	"kindergarten_backend/internals/helpers/dbtime"
)

type CreateBillRequest struct {
	ChildID     string  `json:"childId" validate:"required,uuid"`
	ParentID    string  `json:"parentId" validate:"required,uuid"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	DueDate     string  `json:"dueDate" validate:"required"`
	Status      string  `json:"status" validate:"omitempty,oneof=unpaid pending paid expired canceled"`
	PaidAt      *string `json:"paidAt,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func (r *CreateBillRequest) Normalize() {
	r.ChildID = strings.TrimSpace(r.ChildID)
	r.ParentID = strings.TrimSpace(r.ParentID)
	r.DueDate = strings.TrimSpace(r.DueDate)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = constants.BillStatusUnpaid
	}
	r.Description = trimPtr(r.Description)
}

func (r *CreateBillRequest) ToModel(now time.Time) (*billModel.BillModel, error) {
	due, err := dbtime.ParseDate(r.DueDate)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "dueDate: "+err.Error())
	}
	var paidAt *time.Time
	if r.PaidAt != nil {
		if paidAt, err = dbtime.ParseDatePtr(*r.PaidAt); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "paidAt: "+err.Error())
		}
	}
	m := &billModel.BillModel{
		BillID:          uuid.New(),
		BillChildID:     uuid.MustParse(r.ChildID),
		BillParentID:    uuid.MustParse(r.ParentID),
		BillAmount:      r.Amount,
		BillDueDate:     due,
		BillStatus:      r.Status,
		BillPaidAt:      paidAt,
		BillDescription: r.Description,
	}
	StampPaid(m, now)
	return m, nil
}

// StampPaid mengisi paidAt saat status paid tanpa tanggal bayar.
func StampPaid(m *billModel.BillModel, now time.Time) {
	if m.BillStatus == constants.BillStatusPaid && m.BillPaidAt == nil {
		t := now
		m.BillPaidAt = &t
	}
}

// UpdateBillRequest: nil = tidak diubah; paidAt "" = hapus.
type UpdateBillRequest struct {
	ChildID     *string  `json:"childId,omitempty" validate:"omitempty,uuid"`
	ParentID    *string  `json:"parentId,omitempty" validate:"omitempty,uuid"`
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	DueDate     *string  `json:"dueDate,omitempty"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=unpaid pending paid expired canceled"`
	PaidAt      *string  `json:"paidAt,omitempty"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func (r *UpdateBillRequest) Normalize() {
	r.ChildID = trimPtr(r.ChildID)
	r.ParentID = trimPtr(r.ParentID)
	r.DueDate = trimPtr(r.DueDate)
	r.PaidAt = trimPtr(r.PaidAt)
	r.Description = trimPtr(r.Description)
	if r.Status != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Status))
		r.Status = &v
	}
}

func (r *UpdateBillRequest) IsEmpty() bool {
	return r.ChildID == nil && r.ParentID == nil && r.Amount == nil && r.DueDate == nil &&
		r.Status == nil && r.PaidAt == nil && r.Description == nil
}

func (r *UpdateBillRequest) Apply(m *billModel.BillModel, now time.Time) error {
	if r.ChildID != nil {
		m.BillChildID = uuid.MustParse(*r.ChildID)
	}
	if r.ParentID != nil {
		m.BillParentID = uuid.MustParse(*r.ParentID)
	}
	if r.Amount != nil {
		m.BillAmount = *r.Amount
	}
	if r.DueDate != nil {
		d, err := dbtime.ParseDate(*r.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "dueDate: "+err.Error())
		}
		m.BillDueDate = d
	}
	if r.PaidAt != nil {
		p, err := dbtime.ParseDatePtr(*r.PaidAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "paidAt: "+err.Error())
		}
		m.BillPaidAt = p
	}
	if r.Description != nil {
		m.BillDescription = r.Description
	}
	if r.Status != nil {
		m.BillStatus = *r.Status
		StampPaid(m, now)
	}
	return nil
}

type BillResponse struct {
	ID          uuid.UUID  `json:"id"`
	ChildID     uuid.UUID  `json:"childId"`
	ParentID    uuid.UUID  `json:"parentId"`
	Amount      float64    `json:"amount"`
	DueDate     string     `json:"dueDate"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paidAt"`
	Description *string    `json:"description"`
	OrderID     *string    `json:"orderId,omitempty"`
	PaymentURL  *string    `json:"paymentUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func FromModel(m *billModel.BillModel) BillResponse {
	return BillResponse{
		ID:          m.BillID,
		ChildID:     m.BillChildID,
		ParentID:    m.BillParentID,
		Amount:      m.BillAmount,
		DueDate:     dbtime.FormatDate(m.BillDueDate),
		Status:      m.BillStatus,
		PaidAt:      m.BillPaidAt,
		Description: m.BillDescription,
		OrderID:     m.BillOrderID,
		PaymentURL:  m.BillPaymentURL,
		CreatedAt:   m.BillCreatedAt,
		UpdatedAt:   m.BillUpdatedAt,
	}
}

func FromModels(list []billModel.BillModel) []BillResponse {
	out := make([]BillResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
