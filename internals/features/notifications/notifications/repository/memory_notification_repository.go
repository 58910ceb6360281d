package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	notifModel "kindergarten_backend/internals/features/notifications/notifications/model"
)

type MemoryNotificationRepository struct {
	mu   sync.Mutex
	list []notifModel.NotificationModel
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

func (r *MemoryNotificationRepository) List(_ context.Context, offset, limit int) ([]notifModel.NotificationModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append([]notifModel.NotificationModel(nil), r.list...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].NotificationSentAt.After(all[j].NotificationSentAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []notifModel.NotificationModel{}, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *MemoryNotificationRepository) Create(_ context.Context, m *notifModel.NotificationModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.NotificationID == uuid.Nil {
		m.NotificationID = uuid.New()
	}
	r.list = append(r.list, *m)
	return nil
}

func (r *MemoryNotificationRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.list)), nil
}
