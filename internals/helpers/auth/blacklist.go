package helperauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "kindergarten_backend/internals/features/users/auth/model"
)

// BlacklistStore menyimpan access token yang sudah logout sampai exp-nya lewat.
type BlacklistStore interface {
	Add(ctx context.Context, rawToken string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, rawToken string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// yang disimpan hanya HMAC(token), bukan token mentah
func hmacHex(msg, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

/* =========================================================
   POSTGRES (tabel token_blacklist)
   ========================================================= */

type GormBlacklist struct {
	db     *gorm.DB
	secret string
}

func NewGormBlacklist(db *gorm.DB, secret string) *GormBlacklist {
	return &GormBlacklist{db: db, secret: secret}
}

func (b *GormBlacklist) Add(ctx context.Context, rawToken string, expiresAt time.Time) error {
	if strings.TrimSpace(rawToken) == "" {
		return nil
	}
	row := authModel.TokenBlacklist{Token: hmacHex(rawToken, b.secret), ExpiredAt: expiresAt}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.Assignments(map[string]any{"expired_at": expiresAt, "deleted_at": nil}),
	}).Create(&row).Error
}

func (b *GormBlacklist) IsBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	if strings.TrimSpace(rawToken) == "" {
		return false, nil
	}
	var n int64
	err := b.db.WithContext(ctx).Model(&authModel.TokenBlacklist{}).
		Where("token = ? AND expired_at > ?", hmacHex(rawToken, b.secret), time.Now()).
		Count(&n).Error
	return n > 0, err
}

func (b *GormBlacklist) PurgeExpired(ctx context.Context) (int64, error) {
	res := b.db.WithContext(ctx).Unscoped().
		Where("expired_at <= ?", time.Now()).
		Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}

/* =========================================================
   REDIS (key per token, TTL = sisa umur token)
   ========================================================= */

const redisBlacklistPrefix = "bl:"

type RedisBlacklist struct {
	rdb    *redis.Client
	secret string
}

func NewRedisBlacklist(rdb *redis.Client, secret string) *RedisBlacklist {
	return &RedisBlacklist{rdb: rdb, secret: secret}
}

func (b *RedisBlacklist) key(raw string) string {
	return redisBlacklistPrefix + hmacHex(raw, b.secret)
}

func (b *RedisBlacklist) Add(ctx context.Context, rawToken string, expiresAt time.Time) error {
	if strings.TrimSpace(rawToken) == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, b.key(rawToken), 1, ttl).Err()
}

func (b *RedisBlacklist) IsBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	if strings.TrimSpace(rawToken) == "" {
		return false, nil
	}
	n, err := b.rdb.Exists(ctx, b.key(rawToken)).Result()
	return n > 0, err
}

// PurgeExpired: redis expire sendiri.
func (b *RedisBlacklist) PurgeExpired(context.Context) (int64, error) { return 0, nil }

// NewBlacklist memilih redis kalau tersedia, selain itu postgres.
func NewBlacklist(db *gorm.DB, rdb *redis.Client, secret string) BlacklistStore {
	if rdb != nil {
		return NewRedisBlacklist(rdb, secret)
	}
	return NewGormBlacklist(db, secret)
}

/* =========================================================
   IN-MEMORY (tests & dev tanpa DB)
   ========================================================= */

type MemoryBlacklist struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{items: map[string]time.Time{}}
}

func (b *MemoryBlacklist) Add(_ context.Context, rawToken string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[rawToken] = expiresAt
	return nil
}

func (b *MemoryBlacklist) IsBlacklisted(_ context.Context, rawToken string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.items[rawToken]
	return ok && time.Now().Before(exp), nil
}

func (b *MemoryBlacklist) PurgeExpired(context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for k, exp := range b.items {
		if !time.Now().Before(exp) {
			delete(b.items, k)
			n++
		}
	}
	return n, nil
}
