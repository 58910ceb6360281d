package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"kindergarten_backend/internals/constants"
	msgModel "kindergarten_backend/internals/features/notifications/messages/model"
)

type MemoryMessageRepository struct {
	mu   sync.Mutex
	list []msgModel.MessageModel
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{}
}

func (r *MemoryMessageRepository) List(_ context.Context, f MessageFilter) ([]msgModel.MessageModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []msgModel.MessageModel{}
	for _, m := range r.list {
		if v := f.Viewer; v != nil {
			visible := m.MessageSenderID == v.UserID ||
				m.MessageRecipient == v.UserID.String() ||
				(m.MessageRole == v.Role && m.MessageRecipient == constants.RecipientAll)
			if !visible {
				continue
			}
		}
		all = append(all, m)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].MessageCreatedAt.After(all[j].MessageCreatedAt) })
	total := int64(len(all))
	if f.Offset >= len(all) {
		return []msgModel.MessageModel{}, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r *MemoryMessageRepository) Create(_ context.Context, m *msgModel.MessageModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.MessageID == uuid.Nil {
		m.MessageID = uuid.New()
	}
	if m.MessageCreatedAt.IsZero() {
		// urutan stabil untuk pesan yang dibuat beruntun
		m.MessageCreatedAt = time.Now().Add(time.Duration(len(r.list)) * time.Millisecond)
	}
	r.list = append(r.list, *m)
	return nil
}

func (r *MemoryMessageRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.list)), nil
}
