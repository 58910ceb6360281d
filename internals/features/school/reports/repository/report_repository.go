package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	reportModel "kindergarten_backend/internals/features/school/reports/model"
)

type ReportFilter struct {
	ChildID  *uuid.UUID
	ChildIDs []string // scoping parent; nil = tanpa batas
	Type     string
}

type ReportRepository interface {
	List(ctx context.Context, f ReportFilter) ([]reportModel.ReportModel, error)
	FindByID(ctx context.Context, id uuid.UUID) (*reportModel.ReportModel, error)
	Create(ctx context.Context, m *reportModel.ReportModel) error
	Save(ctx context.Context, m *reportModel.ReportModel) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &gormReportRepository{db: db}
}

// List: terbaru dulu.
func (r *gormReportRepository) List(ctx context.Context, f ReportFilter) ([]reportModel.ReportModel, error) {
	q := r.db.WithContext(ctx).Model(&reportModel.ReportModel{})
	if f.ChildID != nil {
		q = q.Where("report_child_id = ?", *f.ChildID)
	}
	if f.ChildIDs != nil {
		if len(f.ChildIDs) == 0 {
			return []reportModel.ReportModel{}, nil
		}
		q = q.Where("report_child_id::text IN ?", f.ChildIDs)
	}
	if f.Type != "" {
		q = q.Where("report_type = ?", f.Type)
	}
	var out []reportModel.ReportModel
	err := q.Order("report_date DESC").Order("report_created_at DESC").Find(&out).Error
	return out, err
}

func (r *gormReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*reportModel.ReportModel, error) {
	var m reportModel.ReportModel
	if err := r.db.WithContext(ctx).First(&m, "report_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormReportRepository) Create(ctx context.Context, m *reportModel.ReportModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormReportRepository) Save(ctx context.Context, m *reportModel.ReportModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&reportModel.ReportModel{}, "report_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
