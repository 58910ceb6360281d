package users

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindergarten_backend/internals/constants"
	authService "kindergarten_backend/internals/features/users/auth/service"
	uModel "kindergarten_backend/internals/features/users/user/model"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/logger"
)

type UserSeed struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
}

type Store interface {
	FindByEmail(ctx context.Context, email string) (*uModel.UserModel, error)
	Create(ctx context.Context, u *uModel.UserModel) error
}

// LoadUsersJSON membaca daftar user seed dari file JSON.
func LoadUsersJSON(path string) ([]UserSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []UserSeed
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// SeedUsers inserts missing users; existing emails are skipped. Returns the number inserted.
func SeedUsers(ctx context.Context, store Store, seeds []UserSeed) (int, error) {
	log := logger.FromContext(ctx)
	inserted := 0
	for _, s := range seeds {
		email := strings.ToLower(strings.TrimSpace(s.Email))
		if email == "" || s.Password == "" {
			log.Warn("seed user skipped: email and password required", zap.String("name", s.Name))
			continue
		}
		if !constants.IsValidRole(s.Role) {
			return inserted, fmt.Errorf("seed %s: invalid role %q", email, s.Role)
		}

		if _, err := store.FindByEmail(ctx, email); err == nil {
			log.Info("seed user exists, skipped", zap.String("email", email))
			continue
		} else if !helper.IsNotFound(err) {
			return inserted, err
		}

		hash, err := authService.HashPassword(s.Password)
		if err != nil {
			return inserted, err
		}
		u := &uModel.UserModel{
			ID:       uuid.New(),
			Name:     strings.TrimSpace(s.Name),
			Email:    email,
			Password: hash,
			Role:     s.Role,
			IsActive: true,
		}
		if p := strings.TrimSpace(s.Phone); p != "" {
			u.Phone = &p
		}
		if err := store.Create(ctx, u); err != nil {
			return inserted, fmt.Errorf("seed %s: %w", email, err)
		}
		log.Info("seed user inserted", zap.String("email", email), zap.String("role", s.Role))
		inserted++
	}
	return inserted, nil
}
