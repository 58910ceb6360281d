package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kindergarten_backend/internals/constants"
	billModel "kindergarten_backend/internals/features/finance/bills/model"
)

type MemoryBillRepository struct {
	mu    sync.Mutex
	bills map[uuid.UUID]billModel.BillModel
}

func NewMemoryBillRepository(seed ...billModel.BillModel) *MemoryBillRepository {
	r := &MemoryBillRepository{bills: map[uuid.UUID]billModel.BillModel{}}
	for _, m := range seed {
		m := m
		_ = r.Create(context.Background(), &m)
	}
	return r
}

func (r *MemoryBillRepository) List(_ context.Context, f BillFilter) ([]billModel.BillModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []billModel.BillModel{}
	for _, b := range r.bills {
		if f.ChildID != nil && b.BillChildID != *f.ChildID {
			continue
		}
		if f.ParentID != nil && b.BillParentID != *f.ParentID {
			continue
		}
		if f.Status != "" && b.BillStatus != f.Status {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BillDueDate.After(all[j].BillDueDate) })
	total := int64(len(all))
	if f.Offset >= len(all) {
		return []billModel.BillModel{}, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r *MemoryBillRepository) FindByID(_ context.Context, id uuid.UUID) (*billModel.BillModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *MemoryBillRepository) FindByOrderID(_ context.Context, orderID string) (*billModel.BillModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bills {
		if b.BillOrderID != nil && *b.BillOrderID == orderID {
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryBillRepository) Create(_ context.Context, m *billModel.BillModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.BillID == uuid.Nil {
		m.BillID = uuid.New()
	}
	now := time.Now()
	m.BillCreatedAt, m.BillUpdatedAt = now, now
	r.bills[m.BillID] = *m
	return nil
}

func (r *MemoryBillRepository) Save(_ context.Context, m *billModel.BillModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bills[m.BillID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.BillUpdatedAt = time.Now()
	r.bills[m.BillID] = *m
	return nil
}

func (r *MemoryBillRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bills[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.bills, id)
	return nil
}

func (r *MemoryBillRepository) ListOverdue(_ context.Context, before time.Time) ([]billModel.BillModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []billModel.BillModel{}
	for _, b := range r.bills {
		if b.BillStatus == constants.BillStatusUnpaid && b.BillDueDate.Before(before) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BillDueDate.Before(out[j].BillDueDate) })
	return out, nil
}

func (r *MemoryBillRepository) Stats(context.Context) (BillStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s BillStats
	for _, b := range r.bills {
		switch b.BillStatus {
		case constants.BillStatusPaid:
			s.Paid++
		case constants.BillStatusUnpaid:
			s.Unpaid++
			s.UnpaidAmount += b.BillAmount
		}
	}
	return s, nil
}
