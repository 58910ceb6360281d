package dto

import (
	"strings"

	userDTO "kindergarten_backend/internals/features/users/user/dto"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = userDTO.NormalizeEmail(r.Email)
}

// SignupRequest dipakai untuk JSON maupun multipart (form tag).
type SignupRequest struct {
	Name             string  `json:"name" form:"name" validate:"required,min=2,max=120"`
	Email            string  `json:"email" form:"email" validate:"required,email,max=255"`
	Phone            *string `json:"phone,omitempty" form:"phone" validate:"omitempty,max=32"`
	Password         string  `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword  string  `json:"confirmPassword" form:"confirmPassword" validate:"required"`
	Role             string  `json:"role,omitempty" form:"role"`
	FromTeachersPage bool    `json:"fromTeachersPage,omitempty" form:"fromTeachersPage"`
	IDImage          *string `json:"idImage,omitempty" form:"idImage"`
}

func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = userDTO.NormalizeEmail(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Phone != nil {
		v := strings.TrimSpace(*r.Phone)
		if v == "" {
			r.Phone = nil
		} else {
			r.Phone = &v
		}
	}
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type FCMTokenRequest struct {
	FCMToken string `json:"fcmToken" validate:"required,max=4096"`
}

// AuthResponse is returned by login, signup and google login.
type AuthResponse struct {
	Token string           `json:"token"`
	User  userDTO.AuthUser `json:"user"`
}
