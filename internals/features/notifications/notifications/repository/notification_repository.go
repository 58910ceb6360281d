package repository

import (
	"context"

	"gorm.io/gorm"

	notifModel "kindergarten_backend/internals/features/notifications/notifications/model"
)

type NotificationRepository interface {
	// List: terbaru dulu; limit 0 = semua.
	List(ctx context.Context, offset, limit int) ([]notifModel.NotificationModel, int64, error)
	Create(ctx context.Context, m *notifModel.NotificationModel) error
	Count(ctx context.Context) (int64, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) List(ctx context.Context, offset, limit int) ([]notifModel.NotificationModel, int64, error) {
	q := r.db.WithContext(ctx).Model(&notifModel.NotificationModel{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("notification_sent_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []notifModel.NotificationModel
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *gormNotificationRepository) Create(ctx context.Context, m *notifModel.NotificationModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormNotificationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&notifModel.NotificationModel{}).Count(&n).Error
	return n, err
}
