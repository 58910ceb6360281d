package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	childModel "kindergarten_backend/internals/features/school/children/model"
)

type ChildFilter struct {
	Name     string
	ClassID  *uuid.UUID
	ParentID string // array-contains
	Offset   int
	Limit    int // 0 = semua
}

type ChildRepository interface {
	List(ctx context.Context, f ChildFilter) ([]childModel.ChildModel, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*childModel.ChildModel, error)
	FindByIDs(ctx context.Context, ids []string) ([]childModel.ChildModel, error)
	Create(ctx context.Context, m *childModel.ChildModel) error
	Save(ctx context.Context, m *childModel.ChildModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	// IDsByParent dipakai untuk scoping role parent (bills, reports).
	IDsByParent(ctx context.Context, parentID string) ([]string, error)
}

type gormChildRepository struct {
	db *gorm.DB
}

func NewChildRepository(db *gorm.DB) ChildRepository {
	return &gormChildRepository{db: db}
}

func (r *gormChildRepository) List(ctx context.Context, f ChildFilter) ([]childModel.ChildModel, int64, error) {
	q := r.db.WithContext(ctx).Model(&childModel.ChildModel{})
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("child_name ILIKE ?", "%"+name+"%")
	}
	if f.ClassID != nil {
		q = q.Where("child_class_id = ?", *f.ClassID)
	}
	if f.ParentID != "" {
		q = q.Where("? = ANY(child_parent_ids)", f.ParentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("child_name ASC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []childModel.ChildModel
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *gormChildRepository) FindByID(ctx context.Context, id uuid.UUID) (*childModel.ChildModel, error) {
	var m childModel.ChildModel
	if err := r.db.WithContext(ctx).First(&m, "child_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormChildRepository) FindByIDs(ctx context.Context, ids []string) ([]childModel.ChildModel, error) {
	var out []childModel.ChildModel
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("child_id::text IN ?", ids).Find(&out).Error
	return out, err
}

func (r *gormChildRepository) Create(ctx context.Context, m *childModel.ChildModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Save tidak menyentuh child_class_id; kolom itu milik sinkronisasi kelas.
func (r *gormChildRepository) Save(ctx context.Context, m *childModel.ChildModel) error {
	return r.db.WithContext(ctx).Model(m).Select("*").Omit("child_class_id", "child_created_at", "child_deleted_at").Updates(m).Error
}

func (r *gormChildRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&childModel.ChildModel{}, "child_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormChildRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&childModel.ChildModel{}).Count(&n).Error
	return n, err
}

func (r *gormChildRepository) IDsByParent(ctx context.Context, parentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&childModel.ChildModel{}).
		Where("? = ANY(child_parent_ids)", parentID).
		Pluck("child_id::text", &ids).Error
	return ids, err
}
