package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	helperauth "kindergarten_backend/internals/helpers/auth"
	"kindergarten_backend/internals/logger"
)

const BlacklistCleanupSpec = "@daily"

// RunBlacklistCleanup menghapus token blacklist yang sudah lewat exp.
func RunBlacklistCleanup(ctx context.Context, store helperauth.BlacklistStore) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := store.PurgeExpired(ctx)
	if err != nil {
		logger.GetLogger().Error("[CLEANUP] token_blacklist purge failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		logger.GetLogger().Info("[CLEANUP] expired blacklisted tokens removed", zap.Int64("count", n))
	}
	return n, nil
}

// RegisterBlacklistCleanup schedules RunBlacklistCleanup on c.
func RegisterBlacklistCleanup(c *cron.Cron, store helperauth.BlacklistStore) (cron.EntryID, error) {
	return c.AddFunc(BlacklistCleanupSpec, func() {
		_, _ = RunBlacklistCleanup(context.Background(), store)
	})
}
