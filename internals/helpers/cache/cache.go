package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"
)

// Cache stores JSON-encoded values with a TTL.
type Cache interface {
	// Get decodes the value into dst; ok=false on miss.
	Get(ctx context.Context, key string, dst any) (ok bool, err error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// New: redis kalau ada, selain itu in-process.
func New(rdb *redis.Client, prefix string) Cache {
	if rdb != nil {
		return &Redis{rdb: rdb, prefix: prefix}
	}
	return NewMemory()
}

/* ============ Redis ============ */

type Redis struct {
	rdb    *redis.Client
	prefix string
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, sonic.Unmarshal(b, dst)
}

func (r *Redis) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := sonic.Marshal(val)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+key, b, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.rdb.Del(ctx, full...).Err()
}

/* ============ Memory ============ */

type entry struct {
	data []byte
	exp  time.Time
}

type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: map[string]entry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !e.exp.IsZero() && !m.now().Before(e.exp) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return false, nil
	}
	return true, sonic.Unmarshal(e.data, dst)
}

func (m *Memory) Set(_ context.Context, key string, val any, ttl time.Duration) error {
	b, err := sonic.Marshal(val)
	if err != nil {
		return err
	}
	e := entry{data: b}
	if ttl > 0 {
		e.exp = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}
