package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	childModel "kindergarten_backend/internals/features/school/children/model"
	classModel "kindergarten_backend/internals/features/school/classes/model"
)

// ClassRepository covers classes plus the children.class_id column the
// class sync writes. Transaction hands fn a repository bound to one tx.
type ClassRepository interface {
	Transaction(ctx context.Context, fn func(tx ClassRepository) error) error

	List(ctx context.Context) ([]classModel.ClassModel, error)
	FindByID(ctx context.Context, id uuid.UUID) (*classModel.ClassModel, error)
	Create(ctx context.Context, m *classModel.ClassModel) error
	Save(ctx context.Context, m *classModel.ClassModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	FindByChild(ctx context.Context, childID string) ([]classModel.ClassModel, error)
	FindByTeacher(ctx context.Context, teacherID string) ([]classModel.ClassModel, error)

	ChildIDsInClass(ctx context.Context, classID uuid.UUID) ([]string, error)
	SetChildClass(ctx context.Context, childIDs []string, classID *uuid.UUID) error
	ClearClass(ctx context.Context, classID uuid.UUID) error
}

type gormClassRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &gormClassRepository{db: db}
}

func (r *gormClassRepository) Transaction(ctx context.Context, fn func(tx ClassRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormClassRepository{db: tx})
	})
}

func (r *gormClassRepository) List(ctx context.Context) ([]classModel.ClassModel, error) {
	var out []classModel.ClassModel
	err := r.db.WithContext(ctx).Order("class_name ASC").Find(&out).Error
	return out, err
}

func (r *gormClassRepository) FindByID(ctx context.Context, id uuid.UUID) (*classModel.ClassModel, error) {
	var m classModel.ClassModel
	if err := r.db.WithContext(ctx).First(&m, "class_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormClassRepository) Create(ctx context.Context, m *classModel.ClassModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormClassRepository) Save(ctx context.Context, m *classModel.ClassModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&classModel.ClassModel{}, "class_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormClassRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&classModel.ClassModel{}).Count(&n).Error
	return n, err
}

func (r *gormClassRepository) FindByChild(ctx context.Context, childID string) ([]classModel.ClassModel, error) {
	var out []classModel.ClassModel
	err := r.db.WithContext(ctx).Where("? = ANY(class_children_ids)", childID).Find(&out).Error
	return out, err
}

func (r *gormClassRepository) FindByTeacher(ctx context.Context, teacherID string) ([]classModel.ClassModel, error) {
	var out []classModel.ClassModel
	err := r.db.WithContext(ctx).Where("? = ANY(class_teacher_ids)", teacherID).Find(&out).Error
	return out, err
}

func (r *gormClassRepository) ChildIDsInClass(ctx context.Context, classID uuid.UUID) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&childModel.ChildModel{}).
		Where("child_class_id = ?", classID).
		Pluck("child_id::text", &out).Error
	return out, err
}

func (r *gormClassRepository) SetChildClass(ctx context.Context, childIDs []string, classID *uuid.UUID) error {
	if len(childIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&childModel.ChildModel{}).
		Where("child_id::text IN ?", childIDs).
		Update("child_class_id", classID).Error
}

func (r *gormClassRepository) ClearClass(ctx context.Context, classID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&childModel.ChildModel{}).
		Where("child_class_id = ?", classID).
		Update("child_class_id", nil).Error
}
