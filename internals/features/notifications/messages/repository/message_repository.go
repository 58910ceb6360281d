package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kindergarten_backend/internals/constants"
	msgModel "kindergarten_backend/internals/features/notifications/messages/model"
)

// MessageFilter: Viewer nil = semua pesan (admin/staff).
type MessageFilter struct {
	Viewer *Viewer
	Offset int
	Limit  int
}

// Viewer melihat pesan yang ia kirim, yang ditujukan padanya, dan broadcast untuk role-nya.
type Viewer struct {
	UserID uuid.UUID
	Role   string
}

type MessageRepository interface {
	List(ctx context.Context, f MessageFilter) ([]msgModel.MessageModel, int64, error)
	Create(ctx context.Context, m *msgModel.MessageModel) error
	Count(ctx context.Context) (int64, error)
}

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) List(ctx context.Context, f MessageFilter) ([]msgModel.MessageModel, int64, error) {
	q := r.db.WithContext(ctx).Model(&msgModel.MessageModel{})
	if v := f.Viewer; v != nil {
		q = q.Where(
			"message_sender_id = ? OR message_recipient = ? OR (message_role = ? AND message_recipient = ?)",
			v.UserID, v.UserID.String(), v.Role, constants.RecipientAll,
		)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("message_created_at DESC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []msgModel.MessageModel
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *gormMessageRepository) Create(ctx context.Context, m *msgModel.MessageModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormMessageRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&msgModel.MessageModel{}).Count(&n).Error
	return n, err
}
