package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	uModel "kindergarten_backend/internals/features/users/user/model"
)

type UserFilter struct {
	Role   string
	Name   string
	Email  string
	Active *bool
	Offset int
	Limit  int
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*uModel.UserModel, error)
	FindByEmail(ctx context.Context, email string) (*uModel.UserModel, error)
	FindByGoogleID(ctx context.Context, googleID string) (*uModel.UserModel, error)
	FindByIDs(ctx context.Context, ids []string) ([]uModel.UserModel, error)
	List(ctx context.Context, f UserFilter) ([]uModel.UserModel, int64, error)
	Create(ctx context.Context, u *uModel.UserModel) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	EmailTaken(ctx context.Context, email string, exceptID uuid.UUID) (bool, error)
	FCMTokensByRole(ctx context.Context, role string) ([]string, error)
	FCMTokensByIDs(ctx context.Context, ids []string) ([]string, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*uModel.UserModel, error) {
	var u uModel.UserModel
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*uModel.UserModel, error) {
	var u uModel.UserModel
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*uModel.UserModel, error) {
	var u uModel.UserModel
	if err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormUserRepository) FindByIDs(ctx context.Context, ids []string) ([]uModel.UserModel, error) {
	var out []uModel.UserModel
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id::text IN ?", ids).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *gormUserRepository) List(ctx context.Context, f UserFilter) ([]uModel.UserModel, int64, error) {
	q := r.db.WithContext(ctx).Model(&uModel.UserModel{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Name != "" {
		q = q.Where("name ILIKE ?", "%"+f.Name+"%")
	}
	if f.Email != "" {
		q = q.Where("email ILIKE ?", "%"+f.Email+"%")
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []uModel.UserModel
	err := q.Order("created_at DESC").Find(&out).Error
	return out, total, err
}

func (r *gormUserRepository) Create(ctx context.Context, u *uModel.UserModel) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *gormUserRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&uModel.UserModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&uModel.UserModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormUserRepository) EmailTaken(ctx context.Context, email string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&uModel.UserModel{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *gormUserRepository) FCMTokensByRole(ctx context.Context, role string) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&uModel.UserModel{}).
		Where("role = ? AND is_active = TRUE AND fcm_token IS NOT NULL AND fcm_token <> ''", role).
		Pluck("fcm_token", &out).Error
	return out, err
}

func (r *gormUserRepository) FCMTokensByIDs(ctx context.Context, ids []string) ([]string, error) {
	var out []string
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Model(&uModel.UserModel{}).
		Where("id::text IN ? AND fcm_token IS NOT NULL AND fcm_token <> ''", ids).
		Pluck("fcm_token", &out).Error
	return out, err
}

func (r *gormUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&uModel.UserModel{}).Where("role = ?", role).Count(&n).Error
	return n, err
}
