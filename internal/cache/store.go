// Package cache is the TTL-bounded result cache in front of Postgres reads and AI calls.
//
// A Store never returns backend errors to its callers: an unreachable backend
// means every Get misses and every Set reports false. Only Ping surfaces errors.
package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/EgorLis/resume-builder/internal/metrics"
)

// Backend: то, что Store ожидает от Redis или in-memory реализации.
type Backend interface {
	Ping(ctx context.Context) error
	Close() error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Flush(ctx context.Context) error
}

type Category string

const (
	Generic    Category = "generic"
	UserData   Category = "user_data"
	AIResponse Category = "ai_response"
	Templates  Category = "templates"
)

// TTLs: время жизни записей по категориям.
type TTLs map[Category]time.Duration

func DefaultTTLs() TTLs {
	return TTLs{
		Generic:    time.Hour,
		UserData:   30 * time.Minute,
		AIResponse: 2 * time.Hour,
		Templates:  time.Hour,
	}
}

type Store struct {
	backend   Backend
	ttls      TTLs
	log       *zap.Logger
	metrics   *metrics.Collector
	connected atomic.Bool
	closed    atomic.Bool
	sf        singleflight.Group
}

// NewStore не ходит в бэкенд: до Connect стор работает как «всегда промах».
// Нулевые значения в ttls заменяются значениями по умолчанию.
func NewStore(b Backend, ttls TTLs, log *zap.Logger, m *metrics.Collector) *Store {
	merged := DefaultTTLs()
	for k, v := range ttls {
		if v > 0 {
			merged[k] = v
		}
	}
	return &Store{backend: b, ttls: merged, log: log, metrics: m}
}

// Connect пингует бэкенд. При ошибке стор остаётся отключённым, ошибка возвращается
// только для логирования на старте.
func (s *Store) Connect(ctx context.Context) error {
	if err := s.backend.Ping(ctx); err != nil {
		s.connected.Store(false)
		s.log.Error("cache backend unavailable, running without cache", zap.Error(err))
		return err
	}
	s.connected.Store(true)
	s.log.Info("cache connected")
	return nil
}

// Disconnect закрывает бэкенд, даже если Connect не удался: клиент Redis
// создаётся заранее и держит пул. Повторный вызов ничего не делает.
func (s *Store) Disconnect() error {
	s.connected.Store(false)
	if s.closed.Swap(true) {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) Connected() bool { return s != nil && s.connected.Load() }

func (s *Store) Ping(ctx context.Context) error { return s.backend.Ping(ctx) }

// TTL возвращает время жизни для категории (Generic для неизвестных).
func (s *Store) TTL(c Category) time.Duration {
	if d, ok := s.ttls[c]; ok {
		return d
	}
	return s.ttls[Generic]
}

// Get декодирует значение в dst. false: нет ключа, истёк, не декодируется или бэкенд недоступен.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	if !s.Connected() {
		return false
	}
	b, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.fail("get", key, err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.log.Warn("cached value does not decode", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set сериализует value через Encode и пишет с TTL (ttl <= 0: TTL категории generic).
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if !s.Connected() {
		return false
	}
	if ttl <= 0 {
		ttl = s.TTL(Generic)
	}
	if err := s.backend.Set(ctx, key, Encode(value), ttl); err != nil {
		s.fail("set", key, err)
		return false
	}
	return true
}

func (s *Store) Delete(ctx context.Context, key string) bool {
	if !s.Connected() {
		return false
	}
	n, err := s.backend.Del(ctx, key)
	if err != nil {
		s.fail("delete", key, err)
		return false
	}
	return n > 0
}

func (s *Store) Exists(ctx context.Context, key string) bool {
	if !s.Connected() {
		return false
	}
	ok, err := s.backend.Exists(ctx, key)
	if err != nil {
		s.fail("exists", key, err)
		return false
	}
	return ok
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	if !s.Connected() {
		return false
	}
	ok, err := s.backend.Expire(ctx, key, ttl)
	if err != nil {
		s.fail("expire", key, err)
		return false
	}
	return ok
}

// ClearUserCache удаляет всё под user:{userID}:*.
func (s *Store) ClearUserCache(ctx context.Context, userID string) int {
	return s.ClearPattern(ctx, "user:"+userID+":*")
}

// ClearPattern удаляет ключи по glob-шаблону и возвращает число удалённых.
func (s *Store) ClearPattern(ctx context.Context, pattern string) int {
	if !s.Connected() {
		return 0
	}
	keys, err := s.backend.Keys(ctx, pattern)
	if err != nil {
		s.fail("keys", pattern, err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	n, err := s.backend.Del(ctx, keys...)
	if err != nil {
		s.fail("delete", pattern, err)
		return 0
	}
	s.log.Debug("cache pattern cleared", zap.String("pattern", pattern), zap.Int64("deleted", n))
	return int(n)
}

func (s *Store) ClearAll(ctx context.Context) bool {
	if !s.Connected() {
		return false
	}
	if err := s.backend.Flush(ctx); err != nil {
		s.fail("flush", "*", err)
		return false
	}
	return true
}

func (s *Store) fail(op, key string, err error) {
	s.metrics.CacheError(op)
	s.log.Error("cache operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
}
