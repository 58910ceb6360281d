package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"kindergarten_backend/internals/configs"
	"kindergarten_backend/internals/logger"
)

// ConnectRedis returns nil when REDIS_URL is not configured; callers fall back
// to their Postgres or in-process implementations.
func ConnectRedis() *redis.Client {
	url := configs.GetEnv("REDIS_URL")
	if url == "" {
		logger.GetLogger().Info("REDIS_URL not set, redis disabled")
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.GetLogger().Error("invalid REDIS_URL", zap.Error(err))
		return nil
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().Error("redis ping failed, redis disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}
	logger.GetLogger().Info("redis connected", zap.String("addr", opt.Addr))
	return client
}
