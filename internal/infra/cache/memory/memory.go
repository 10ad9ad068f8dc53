package memory

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

// Cache: процесс-локальный бэкенд кеша на ttlcache.
// Используется, когда REDIS_ADDR не задан (локальная разработка, тесты).
type Cache struct {
	c      *ttlcache.Cache[string, []byte]
	logger *zap.Logger
	mu     sync.Mutex // Incr/SetNX: чтение и запись одной операцией
}

func New(logger *zap.Logger) *Cache {
	c := ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go c.Start() // чистка просроченных записей
	return &Cache{c: c, logger: logger}
}

func (m *Cache) Ping(context.Context) error { return nil }

func (m *Cache) Close() error {
	m.c.Stop()
	m.logger.Info("memory cache stopped")
	return nil
}

func (m *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := m.c.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

func (m *Cache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.c.Set(key, val, ttl)
	return nil
}

func (m *Cache) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if m.c.Has(k) {
			n++
		}
		m.c.Delete(k)
	}
	return n, nil
}

func (m *Cache) Exists(_ context.Context, key string) (bool, error) {
	return m.c.Has(key), nil
}

// Expire переустанавливает значение с новым TTL.
func (m *Cache) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	item := m.c.Get(key)
	if item == nil || item.IsExpired() {
		return false, nil
	}
	m.c.Set(key, item.Value(), ttl)
	return true, nil
}

// Keys поддерживает тот же glob, что и Redis, в пределах path.Match.
func (m *Cache) Keys(_ context.Context, pattern string) ([]string, error) {
	var out []string
	for _, k := range m.c.Keys() {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, err
		}
		if ok && m.c.Has(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *Cache) Flush(context.Context) error {
	m.c.DeleteAll()
	return nil
}

// SetNX пишет значение, только если ключа нет.
func (m *Cache) SetNX(_ context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item := m.c.Get(key); item != nil && !item.IsExpired() {
		return false, nil
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.c.Set(key, val, ttl)
	return true, nil
}

// Incr как в Redis: отсутствующий ключ считается нулём, TTL существующего сохраняется.
func (m *Cache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		n   int64
		ttl = ttlcache.NoTTL
	)
	if item := m.c.Get(key); item != nil && !item.IsExpired() {
		v, err := strconv.ParseInt(string(item.Value()), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not an integer", key)
		}
		n = v
		if exp := item.ExpiresAt(); !exp.IsZero() {
			ttl = time.Until(exp)
			if ttl <= 0 {
				n, ttl = 0, ttlcache.NoTTL
			}
		}
	}
	n++
	m.c.Set(key, []byte(strconv.FormatInt(n, 10)), ttl)
	return n, nil
}

// IncrExpire: INCR и EXPIRE одной операцией (для ratelimit.FixedWindow).
func (m *Cache) IncrExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := m.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	_, err = m.Expire(ctx, key, ttl)
	return n, err
}
