package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kindergarten_backend/internals/constants"
	uModel "kindergarten_backend/internals/features/users/user/model"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// CreateUserRequest: create by admin (password di-hash di controller)
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=120"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin teacher staff parent"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	IsActive *bool   `json:"active,omitempty"`
}

func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Role == "" {
		r.Role = constants.RoleParent
	}
	r.Phone = trimPtr(r.Phone)
}

func (r *CreateUserRequest) ToModel(passwordHash string) *uModel.UserModel {
	m := &uModel.UserModel{
		Name:     r.Name,
		Email:    r.Email,
		Password: passwordHash,
		Role:     r.Role,
		Phone:    r.Phone,
		IsActive: true,
	}
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
	return m
}

// UpdateUserRequest: partial update (nil = tidak diubah)
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Role  *string `json:"role,omitempty" validate:"omitempty,oneof=admin teacher staff parent"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

func (r *UpdateUserRequest) Normalize() {
	r.Name = trimPtr(r.Name)
	if r.Email != nil {
		v := NormalizeEmail(*r.Email)
		r.Email = &v
	}
	if r.Role != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Role))
		r.Role = &v
	}
	r.Phone = trimPtr(r.Phone)
}

// ToUpdates → map kolom untuk gorm Updates
func (r *UpdateUserRequest) ToUpdates() map[string]any {
	out := map[string]any{}
	if r.Name != nil {
		out["name"] = *r.Name
	}
	if r.Email != nil {
		out["email"] = *r.Email
	}
	if r.Role != nil {
		out["role"] = *r.Role
	}
	if r.Phone != nil {
		out["phone"] = *r.Phone
	}
	return out
}

type UpdateStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     *string   `json:"phone,omitempty"`
	IDImage   *string   `json:"idImage,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromModel(m *uModel.UserModel) UserResponse {
	return UserResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      m.Role,
		Phone:     m.Phone,
		IDImage:   m.IDImage,
		Active:    m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func FromModels(list []uModel.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

// AuthUser is the slim user embedded in login/signup responses.
type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
	Name  string    `json:"name"`
}

func ToAuthUser(m *uModel.UserModel) AuthUser {
	return AuthUser{ID: m.ID, Email: m.Email, Role: m.Role, Name: m.Name}
}

/* ===== util ===== */

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
