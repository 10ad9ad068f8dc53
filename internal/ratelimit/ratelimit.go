// Package ratelimit caps request rates per key.
//
// SlidingWindow keeps per-second buckets in process memory. FixedWindow keeps
// one counter per window in Redis so several API instances share a budget.
// Both count the request before checking it: a denied request still occupies
// a slot in the window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter: общий контракт для middleware.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

type Clock func() time.Time

// sweepEvery: раз в столько вызовов из памяти выкидываются ключи без живых бакетов.
const sweepEvery = 1024

type counter struct {
	buckets map[int64]int // unix-секунда -> число запросов
	window  int64
}

type SlidingWindow struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      Clock
	calls    int
}

func NewSlidingWindow(now Clock) *SlidingWindow {
	if now == nil {
		now = time.Now
	}
	return &SlidingWindow{counters: make(map[string]*counter), now: now}
}

// IncrementAndCheck учитывает запрос в бакете текущей секунды и возвращает
// sum(buckets in [now-window+1, now]) <= limit.
func (l *SlidingWindow) IncrementAndCheck(key string, limit, windowSeconds int) bool {
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	now := l.now().Unix()
	windowStart := now - int64(windowSeconds) + 1

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.counters[key]
	if !ok {
		c = &counter{buckets: make(map[int64]int)}
		l.counters[key] = c
	}
	c.window = int64(windowSeconds)

	for ts := range c.buckets {
		if ts < windowStart {
			delete(c.buckets, ts)
		}
	}
	c.buckets[now]++

	sum := 0
	for ts, n := range c.buckets {
		if ts >= windowStart && ts <= now {
			sum += n
		}
	}

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}
	return sum <= limit
}

func (l *SlidingWindow) Allow(_ context.Context, key string, limit int, window time.Duration) bool {
	return l.IncrementAndCheck(key, limit, int(window/time.Second))
}

// Reset забывает ключ целиком.
func (l *SlidingWindow) Reset(key string) {
	l.mu.Lock()
	delete(l.counters, key)
	l.mu.Unlock()
}

func (l *SlidingWindow) sweep(now int64) {
	for key, c := range l.counters {
		alive := false
		for ts := range c.buckets {
			if ts >= now-c.window+1 {
				alive = true
				break
			}
		}
		if !alive {
			delete(l.counters, key)
		}
	}
}

// Len: число отслеживаемых ключей.
func (l *SlidingWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}
