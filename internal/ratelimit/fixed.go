package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Counter: атомарный INCR с TTL во внешнем хранилище (Redis).
type Counter interface {
	IncrExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// FixedWindow считает запросы в бакете rate:{key}:{now/window}.
// Если хранилище недоступно, запрос пропускается (fail open).
type FixedWindow struct {
	store Counter
	log   *zap.Logger
	now   Clock
}

func NewFixedWindow(store Counter, log *zap.Logger, now Clock) *FixedWindow {
	if now == nil {
		now = time.Now
	}
	return &FixedWindow{store: store, log: log, now: now}
}

func (f *FixedWindow) IncrementAndCheck(ctx context.Context, key string, limit, windowSeconds int) bool {
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	bucket := f.now().Unix() / int64(windowSeconds)
	k := fmt.Sprintf("rate:%s:%d", key, bucket)

	n, err := f.store.IncrExpire(ctx, k, time.Duration(windowSeconds+1)*time.Second)
	if err != nil {
		f.log.Error("rate counter unavailable, allowing request", zap.String("key", k), zap.Error(err))
		return true
	}
	return n <= int64(limit)
}

func (f *FixedWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	return f.IncrementAndCheck(ctx, key, limit, int(window/time.Second))
}

// Backoff: пауза после n-й подряд неудачной попытки входа:
// min(300, 2^min(8, n)) секунд.
func Backoff(failures int) time.Duration {
	if failures < 0 {
		failures = 0
	}
	exp := math.Pow(2, float64(min(8, failures)))
	return time.Duration(min(300, exp)) * time.Second
}

// FailureStore: то, что AuthBackoff использует из Redis.
type FailureStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Del(ctx context.Context, keys ...string) (int64, error)
}

// AuthBackoff блокирует идентичность после Threshold неудачных входов подряд.
// Счётчик живёт Backoff(n) секунд после последней неудачи. Nil-значение ничего не блокирует.
type AuthBackoff struct {
	store     FailureStore
	log       *zap.Logger
	threshold int64
}

func NewAuthBackoff(store FailureStore, threshold int, log *zap.Logger) *AuthBackoff {
	if threshold < 1 {
		threshold = 5
	}
	return &AuthBackoff{store: store, log: log, threshold: int64(threshold)}
}

func failKey(identity string) string { return "authfail:" + identity }

// RecordFailure увеличивает счётчик и возвращает, сколько ждать до следующей попытки.
func (b *AuthBackoff) RecordFailure(ctx context.Context, identity string) time.Duration {
	if b == nil {
		return 0
	}
	n, err := b.store.Incr(ctx, failKey(identity))
	if err != nil {
		b.log.Error("auth backoff unavailable", zap.Error(err))
		return 0
	}
	wait := Backoff(int(n))
	if _, err := b.store.Expire(ctx, failKey(identity), wait); err != nil {
		b.log.Error("auth backoff expire failed", zap.Error(err))
	}
	if n < b.threshold {
		return 0
	}
	return wait
}

// Blocked: true, если неудач уже не меньше порога и счётчик ещё не истёк.
func (b *AuthBackoff) Blocked(ctx context.Context, identity string) bool {
	if b == nil {
		return false
	}
	raw, found, err := b.store.Get(ctx, failKey(identity))
	if err != nil {
		b.log.Error("auth backoff unavailable", zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return false
	}
	return n >= b.threshold
}

func (b *AuthBackoff) Reset(ctx context.Context, identity string) {
	if b == nil {
		return
	}
	if _, err := b.store.Del(ctx, failKey(identity)); err != nil {
		b.log.Error("auth backoff reset failed", zap.Error(err))
	}
}
