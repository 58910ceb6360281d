package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	reportModel "kindergarten_backend/internals/features/school/reports/model"
)

type MemoryReportRepository struct {
	mu      sync.Mutex
	reports map[uuid.UUID]reportModel.ReportModel
}

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{reports: map[uuid.UUID]reportModel.ReportModel{}}
}

func (r *MemoryReportRepository) List(_ context.Context, f ReportFilter) ([]reportModel.ReportModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := map[string]bool{}
	for _, id := range f.ChildIDs {
		allowed[id] = true
	}
	out := []reportModel.ReportModel{}
	for _, m := range r.reports {
		if f.ChildID != nil && m.ReportChildID != *f.ChildID {
			continue
		}
		if f.ChildIDs != nil && !allowed[m.ReportChildID.String()] {
			continue
		}
		if f.Type != "" && m.ReportType != f.Type {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReportDate.Equal(out[j].ReportDate) {
			return out[i].ReportDate.After(out[j].ReportDate)
		}
		return out[i].ReportCreatedAt.After(out[j].ReportCreatedAt)
	})
	return out, nil
}

func (r *MemoryReportRepository) FindByID(_ context.Context, id uuid.UUID) (*reportModel.ReportModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *MemoryReportRepository) Create(_ context.Context, m *reportModel.ReportModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ReportID == uuid.Nil {
		m.ReportID = uuid.New()
	}
	now := time.Now()
	m.ReportCreatedAt, m.ReportUpdatedAt = now, now
	r.reports[m.ReportID] = *m
	return nil
}

func (r *MemoryReportRepository) Save(_ context.Context, m *reportModel.ReportModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[m.ReportID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.ReportUpdatedAt = time.Now()
	r.reports[m.ReportID] = *m
	return nil
}

func (r *MemoryReportRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.reports, id)
	return nil
}
