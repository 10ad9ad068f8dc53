package ratelimit

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	redisx "github.com/EgorLis/resume-builder/internal/infra/cache/redis"
)

func newRedis(t *testing.T) (*redisx.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisx.New(redisx.Config{Addr: mr.Addr()}, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestFixedWindow(t *testing.T) {
	rc, mr := newRedis(t)
	clk := newFakeClock()
	f := NewFixedWindow(rc, zap.NewNop(), clk.Now)
	ctx := context.Background()

	var got []bool
	for i := 0; i < 4; i++ {
		got = append(got, f.IncrementAndCheck(ctx, "ip:1.1.1.1:/api/auth/login", 3, 60))
	}
	assert.Equal(t, []bool{true, true, true, false}, got)

	bucket := clk.Now().Unix() / 60
	key := "rate:ip:1.1.1.1:/api/auth/login:" + itoa(bucket)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 61*time.Second, mr.TTL(key))

	clk.Advance(time.Minute)
	assert.True(t, f.IncrementAndCheck(ctx, "ip:1.1.1.1:/api/auth/login", 3, 60))
}

func TestFixedWindowFailsOpen(t *testing.T) {
	rc, mr := newRedis(t)
	f := NewFixedWindow(rc, zap.NewNop(), nil)
	mr.Close()

	for i := 0; i < 5; i++ {
		assert.True(t, f.Allow(context.Background(), "k", 1, time.Minute))
	}
}

func TestAuthBackoff(t *testing.T) {
	rc, mr := newRedis(t)
	b := NewAuthBackoff(rc, 3, zap.NewNop())
	ctx := context.Background()
	id := "jane@example.com"

	assert.Zero(t, b.RecordFailure(ctx, id))
	assert.Zero(t, b.RecordFailure(ctx, id))
	assert.False(t, b.Blocked(ctx, id))

	assert.Equal(t, 8*time.Second, b.RecordFailure(ctx, id))
	assert.True(t, b.Blocked(ctx, id))
	assert.Equal(t, 8*time.Second, mr.TTL("authfail:"+id))

	mr.FastForward(9 * time.Second)
	assert.False(t, b.Blocked(ctx, id))

	b.RecordFailure(ctx, id)
	b.Reset(ctx, id)
	assert.False(t, b.Blocked(ctx, id))
}

func TestAuthBackoffNilAndUnavailable(t *testing.T) {
	var nilB *AuthBackoff
	assert.False(t, nilB.Blocked(context.Background(), "x"))
	assert.Zero(t, nilB.RecordFailure(context.Background(), "x"))

	rc, mr := newRedis(t)
	b := NewAuthBackoff(rc, 1, zap.NewNop())
	mr.Close()
	assert.False(t, b.Blocked(context.Background(), "x"))
	assert.Zero(t, b.RecordFailure(context.Background(), "x"))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
