package seeds

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userRepo "kindergarten_backend/internals/features/users/user/repository"
)

func TestSeedFromEnv(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name":"Admin","email":"admin@kg.test","password":"pw123456","role":"admin"},
		{"name":"Parent","email":"parent@kg.test","password":"pw123456","role":"parent","phone":" 0600 "}
	]`), 0o600))
	t.Setenv("SEED_USERS_FILE", path)

	repo := userRepo.NewMemoryUserRepository()
	n, err := SeedFromEnv(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := repo.FindByEmail(ctx, "parent@kg.test")
	require.NoError(t, err)
	require.NotNil(t, p.Phone)
	assert.Equal(t, "0600", *p.Phone)

	n, err = SeedFromEnv(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, n, "second run inserts nothing")
}

func TestSeedFromEnvMissingFile(t *testing.T) {
	t.Setenv("SEED_USERS_FILE", filepath.Join(t.TempDir(), "absent.json"))
	_, err := SeedFromEnv(context.Background(), userRepo.NewMemoryUserRepository())
	assert.Error(t, err)
}
