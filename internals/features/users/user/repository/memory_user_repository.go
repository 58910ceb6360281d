package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	uModel "kindergarten_backend/internals/features/users/user/model"
)

// MemoryUserRepository is an in-process UserRepository for tests and the
// admin CLI dry runs.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]uModel.UserModel
}

func NewMemoryUserRepository(seed ...uModel.UserModel) *MemoryUserRepository {
	r := &MemoryUserRepository{users: map[uuid.UUID]uModel.UserModel{}}
	for _, u := range seed {
		uu := u
		_ = r.Create(context.Background(), &uu)
	}
	return r
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*uModel.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*uModel.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryUserRepository) FindByGoogleID(_ context.Context, googleID string) (*uModel.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryUserRepository) FindByIDs(_ context.Context, ids []string) ([]uModel.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []uModel.UserModel{}
	for _, u := range r.users {
		for _, id := range ids {
			if u.ID.String() == id {
				out = append(out, u)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryUserRepository) List(_ context.Context, f UserFilter) ([]uModel.UserModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []uModel.UserModel{}
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Email != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(f.Email)) {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return []uModel.UserModel{}, total, nil
		}
		end := f.Offset + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[f.Offset:end]
	}
	return out, total, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u *uModel.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "role":
			u.Role = v.(string)
		case "password":
			u.Password = v.(string)
		case "phone":
			s := v.(string)
			u.Phone = &s
		case "id_image":
			s := v.(string)
			u.IDImage = &s
		case "fcm_token":
			s := v.(string)
			u.FCMToken = &s
		case "google_id":
			s := v.(string)
			u.GoogleID = &s
		case "is_active":
			u.IsActive = v.(bool)
		}
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) EmailTaken(_ context.Context, email string, exceptID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) FCMTokensByRole(_ context.Context, role string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, u := range r.users {
		if u.Role == role && u.IsActive && u.FCMToken != nil && *u.FCMToken != "" {
			out = append(out, *u.FCMToken)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryUserRepository) FCMTokensByIDs(_ context.Context, ids []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, id := range ids {
		uid, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		if u, ok := r.users[uid]; ok && u.FCMToken != nil && *u.FCMToken != "" {
			out = append(out, *u.FCMToken)
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) CountByRole(_ context.Context, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
