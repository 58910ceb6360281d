package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/databases/dbtest"
	uModel "kindergarten_backend/internals/features/users/user/model"
)

func ptr(s string) *string { return &s }

func seeded(t *testing.T) (*MemoryUserRepository, map[string]uModel.UserModel) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []uModel.UserModel{
		{Name: "Admin", Email: "admin@kg.test", Role: constants.RoleAdmin, IsActive: true, CreatedAt: base},
		{Name: "Bu Sari", Email: "sari@kg.test", Role: constants.RoleTeacher, IsActive: true, FCMToken: ptr("tok-sari"), CreatedAt: base.Add(time.Hour)},
		{Name: "Pak Budi", Email: "budi@kg.test", Role: constants.RoleParent, IsActive: true, FCMToken: ptr("tok-budi"), CreatedAt: base.Add(2 * time.Hour)},
		{Name: "Bu Rina", Email: "rina@kg.test", Role: constants.RoleParent, IsActive: false, FCMToken: ptr("tok-rina"), CreatedAt: base.Add(3 * time.Hour)},
	}
	repo := NewMemoryUserRepository(users...)
	byName := map[string]uModel.UserModel{}
	for _, u := range users {
		got, err := repo.FindByEmail(context.Background(), u.Email)
		require.NoError(t, err)
		byName[u.Name] = *got
	}
	return repo, byName
}

func TestMemoryUserList(t *testing.T) {
	repo, _ := seeded(t)
	inactive := false

	tests := []struct {
		name   string
		filter UserFilter
		want   []string
		total  int64
	}{
		{"newest first", UserFilter{}, []string{"Bu Rina", "Pak Budi", "Bu Sari", "Admin"}, 4},
		{"role", UserFilter{Role: constants.RoleParent}, []string{"Bu Rina", "Pak Budi"}, 2},
		{"name", UserFilter{Name: "bu"}, []string{"Bu Rina", "Pak Budi", "Bu Sari"}, 3},
		{"email", UserFilter{Email: "SARI@"}, []string{"Bu Sari"}, 1},
		{"inactive", UserFilter{Active: &inactive}, []string{"Bu Rina"}, 1},
		{"page", UserFilter{Offset: 1, Limit: 2}, []string{"Pak Budi", "Bu Sari"}, 4},
		{"page past end", UserFilter{Offset: 10, Limit: 2}, []string{}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			names := []string{}
			for _, u := range got {
				names = append(names, u.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestMemoryUserEmailAndTokens(t *testing.T) {
	ctx := context.Background()
	repo, users := seeded(t)
	sari := users["Bu Sari"]

	err := repo.Create(ctx, &uModel.UserModel{Name: "Dup", Email: "SARI@kg.test"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	taken, err := repo.EmailTaken(ctx, "Sari@KG.test", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.EmailTaken(ctx, "sari@kg.test", sari.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own email is not taken")

	tokens, err := repo.FCMTokensByRole(ctx, constants.RoleParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-budi"}, tokens, "inactive parents are skipped")

	tokens, err = repo.FCMTokensByIDs(ctx, []string{sari.ID.String(), "junk", users["Admin"].ID.String()})
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-sari"}, tokens)

	n, err := repo.CountByRole(ctx, constants.RoleParent)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMemoryUserUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo, users := seeded(t)
	budi := users["Pak Budi"]

	require.NoError(t, repo.Update(ctx, budi.ID, map[string]any{"name": "Budi S", "phone": "0812", "is_active": false}))
	got, err := repo.FindByID(ctx, budi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi S", got.Name)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "0812", *got.Phone)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, repo.Update(ctx, uuid.New(), map[string]any{"name": "x"}), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, budi.ID))
	_, err = repo.FindByID(ctx, budi.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, budi.ID), gorm.ErrRecordNotFound)
}

func TestGormUserSQL(t *testing.T) {
	rec := dbtest.DryRun(t)
	repo := NewUserRepository(rec.DB)
	ctx := context.Background()
	self := uuid.New()
	active := true

	_, _ = repo.EmailTaken(ctx, "Sari@KG.test", self)
	sql := rec.Last()
	assert.Contains(t, sql, `SELECT count(*) FROM "users"`)
	assert.Contains(t, sql, "LOWER(email) = 'sari@kg.test'")
	assert.Contains(t, sql, "id <> '"+self.String()+"'")
	assert.Contains(t, sql, `"users"."deleted_at" IS NULL`)

	_, _ = repo.EmailTaken(ctx, "a@b.c", uuid.Nil)
	assert.NotContains(t, rec.Last(), "id <>")

	_, _, _ = repo.List(ctx, UserFilter{Role: constants.RoleTeacher, Name: "sar", Email: "kg", Active: &active, Limit: 5})
	sql = rec.Joined()
	assert.Contains(t, sql, "role = 'teacher'")
	assert.Contains(t, sql, "name ILIKE '%sar%'")
	assert.Contains(t, sql, "email ILIKE '%kg%'")
	assert.Contains(t, sql, "is_active = true")

	_, _ = repo.FCMTokensByRole(ctx, constants.RoleParent)
	sql = rec.Last()
	assert.Contains(t, sql, `SELECT "fcm_token" FROM "users"`)
	assert.Contains(t, sql, "role = 'parent' AND is_active = TRUE")

	rec.SQL()
	ids, err := repo.FCMTokensByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, rec.SQL(), "no query for an empty id list")

	_ = repo.Update(ctx, self, map[string]any{"name": "Sari"})
	sql = rec.Last()
	assert.Contains(t, sql, `UPDATE "users" SET "name"='Sari'`)
	assert.Contains(t, sql, "id = '"+self.String()+"'")
}
