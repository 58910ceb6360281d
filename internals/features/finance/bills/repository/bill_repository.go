package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kindergarten_backend/internals/constants"
	billModel "kindergarten_backend/internals/features/finance/bills/model"
)

type BillFilter struct {
	ChildID  *uuid.UUID
	ParentID *uuid.UUID
	Status   string
	Offset   int
	Limit    int // 0 = semua
}

// BillStats dipakai dashboard.
type BillStats struct {
	Paid         int64   `json:"billsPaid"`
	Unpaid       int64   `json:"billsUnpaid"`
	UnpaidAmount float64 `json:"unpaidAmount"`
}

type BillRepository interface {
	List(ctx context.Context, f BillFilter) ([]billModel.BillModel, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*billModel.BillModel, error)
	FindByOrderID(ctx context.Context, orderID string) (*billModel.BillModel, error)
	Create(ctx context.Context, m *billModel.BillModel) error
	Save(ctx context.Context, m *billModel.BillModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListOverdue: unpaid dengan due date sebelum `before`.
	ListOverdue(ctx context.Context, before time.Time) ([]billModel.BillModel, error)
	Stats(ctx context.Context) (BillStats, error)
}

type gormBillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &gormBillRepository{db: db}
}

func (r *gormBillRepository) List(ctx context.Context, f BillFilter) ([]billModel.BillModel, int64, error) {
	q := r.db.WithContext(ctx).Model(&billModel.BillModel{})
	if f.ChildID != nil {
		q = q.Where("bill_child_id = ?", *f.ChildID)
	}
	if f.ParentID != nil {
		q = q.Where("bill_parent_id = ?", *f.ParentID)
	}
	if f.Status != "" {
		q = q.Where("bill_status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("bill_due_date DESC").Order("bill_created_at DESC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []billModel.BillModel
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *gormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billModel.BillModel, error) {
	var m billModel.BillModel
	if err := r.db.WithContext(ctx).First(&m, "bill_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormBillRepository) FindByOrderID(ctx context.Context, orderID string) (*billModel.BillModel, error) {
	var m billModel.BillModel
	if err := r.db.WithContext(ctx).First(&m, "bill_order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormBillRepository) Create(ctx context.Context, m *billModel.BillModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormBillRepository) Save(ctx context.Context, m *billModel.BillModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&billModel.BillModel{}, "bill_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormBillRepository) ListOverdue(ctx context.Context, before time.Time) ([]billModel.BillModel, error) {
	var out []billModel.BillModel
	err := r.db.WithContext(ctx).
		Where("bill_status = ? AND bill_due_date < ?", constants.BillStatusUnpaid, before).
		Order("bill_due_date ASC").
		Find(&out).Error
	return out, err
}

func (r *gormBillRepository) Stats(ctx context.Context) (BillStats, error) {
	var s BillStats
	err := r.db.WithContext(ctx).Model(&billModel.BillModel{}).
		Select(`COUNT(*) FILTER (WHERE bill_status = ?) AS paid,
			COUNT(*) FILTER (WHERE bill_status = ?) AS unpaid,
			COALESCE(SUM(bill_amount) FILTER (WHERE bill_status = ?), 0) AS unpaid_amount`,
			constants.BillStatusPaid, constants.BillStatusUnpaid, constants.BillStatusUnpaid).
		Row().Scan(&s.Paid, &s.Unpaid, &s.UnpaidAmount)
	return s, err
}
