package seeds

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kindergarten_backend/internals/configs"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/seeds/users"
)

const defaultUsersFile = "internals/seeds/users/data_users.json"

// Run seeds demo accounts from SEED_USERS_FILE.
func Run(ctx context.Context, db *gorm.DB) error {
	_, err := SeedFromEnv(ctx, userRepo.NewUserRepository(db))
	return err
}

// SeedFromEnv loads SEED_USERS_FILE into store and returns how many users were inserted.
func SeedFromEnv(ctx context.Context, store users.Store) (int, error) {
	path := configs.GetEnv("SEED_USERS_FILE", defaultUsersFile)
	list, err := users.LoadUsersJSON(path)
	if err != nil {
		return 0, err
	}
	n, err := users.SeedUsers(ctx, store, list)
	if err != nil {
		return n, err
	}
	logger.GetLogger().Info("seed finished", zap.String("file", path), zap.Int("users_inserted", n))
	return n, nil
}
