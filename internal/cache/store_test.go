package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/infra/cache/memory"
	redisx "github.com/EgorLis/resume-builder/internal/infra/cache/redis"
)

func newRedisStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewStore(redisx.New(redisx.Config{Addr: mr.Addr()}, zap.NewNop()), nil, zap.NewNop(), nil)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { _ = s.Disconnect() })
	return s, mr
}

type experience struct {
	Company string    `json:"company"`
	Start   time.Time `json:"start"`
}

func TestStoreGetMissing(t *testing.T) {
	s, _ := newRedisStore(t)

	var out map[string]any
	assert.False(t, s.Get(context.Background(), "never:written", &out))
}

func TestStoreRoundTrip(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	in := map[string]any{
		"title": "Backend",
		"experience": []experience{
			{Company: "Acme", Start: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
		"tags": []string{"go", "redis"},
	}
	require.True(t, s.Set(ctx, "user:1:resume:1", in, time.Minute))

	var out map[string]any
	require.True(t, s.Get(ctx, "user:1:resume:1", &out))
	assert.Equal(t, "Backend", out["title"])
	assert.Equal(t, []any{"go", "redis"}, out["tags"])

	exp := out["experience"].([]any)[0].(map[string]any)
	assert.Equal(t, "Acme", exp["company"])
	assert.Equal(t, "2020-01-02T00:00:00Z", exp["start"])
}

func TestStoreTTLExpiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "k", "v", 30*time.Second))
	var out string
	require.True(t, s.Get(ctx, "k", &out))

	mr.FastForward(31 * time.Second)
	assert.False(t, s.Get(ctx, "k", &out))
	assert.False(t, s.Exists(ctx, "k"))
}

func TestStoreDefaultTTLApplied(t *testing.T) {
	s, mr := newRedisStore(t)

	require.True(t, s.Set(context.Background(), "k", 1, 0))
	assert.Equal(t, time.Hour, mr.TTL("k"))
}

func TestStoreClearUserCache(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	for _, k := range []string{"user:u1:resumes:1:10", "user:u1:my_resume", "user:u2:my_resume", "user:u10:my_resume"} {
		require.True(t, s.Set(ctx, k, "x", time.Minute))
	}

	assert.Equal(t, 2, s.ClearUserCache(ctx, "u1"))
	assert.False(t, s.Exists(ctx, "user:u1:my_resume"))
	assert.True(t, s.Exists(ctx, "user:u2:my_resume"))
	assert.True(t, s.Exists(ctx, "user:u10:my_resume"))
}

func TestStoreClearPatternAndAll(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "templates:all:x", "a", time.Minute))
	require.True(t, s.Set(ctx, "templates:by_category:y", "b", time.Minute))
	require.True(t, s.Set(ctx, "ai_response:parse:z", "c", time.Minute))

	assert.Equal(t, 2, s.ClearPattern(ctx, "templates:*"))
	assert.True(t, s.Exists(ctx, "ai_response:parse:z"))

	assert.True(t, s.ClearAll(ctx))
	assert.False(t, s.Exists(ctx, "ai_response:parse:z"))
}

func TestStoreExpireAndDelete(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "k", "v", time.Minute))
	assert.True(t, s.Expire(ctx, "k", 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mr.TTL("k"))

	assert.True(t, s.Delete(ctx, "k"))
	assert.False(t, s.Delete(ctx, "k"))
	assert.False(t, s.Expire(ctx, "k", time.Minute))
}

func TestStoreFailSoftWhenBackendDown(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	mr.Close()

	var out string
	assert.False(t, s.Get(ctx, "k", &out))
	assert.False(t, s.Set(ctx, "k", "v", time.Minute))
	assert.False(t, s.Delete(ctx, "k"))
	assert.False(t, s.Exists(ctx, "k"))
	assert.False(t, s.Expire(ctx, "k", time.Minute))
	assert.Zero(t, s.ClearUserCache(ctx, "u1"))
	assert.False(t, s.ClearAll(ctx))
}

func TestStoreNotConnectedAlwaysMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := NewStore(redisx.New(redisx.Config{Addr: addr}, zap.NewNop()), nil, zap.NewNop(), nil)
	assert.Error(t, s.Connect(context.Background()))
	assert.False(t, s.Connected())

	var out string
	assert.False(t, s.Set(context.Background(), "k", "v", time.Minute))
	assert.False(t, s.Get(context.Background(), "k", &out))
}

type downBackend struct {
	Backend
	closes int
}

func (b *downBackend) Ping(context.Context) error { return errors.New("connection refused") }
func (b *downBackend) Close() error {
	b.closes++
	return nil
}

func TestStoreDisconnectClosesUnconnectedBackend(t *testing.T) {
	b := &downBackend{}
	s := NewStore(b, nil, zap.NewNop(), nil)
	require.Error(t, s.Connect(context.Background()))

	require.NoError(t, s.Disconnect())
	require.NoError(t, s.Disconnect())
	assert.Equal(t, 1, b.closes)
	assert.False(t, s.Connected())
}

func TestStoreMemoryBackend(t *testing.T) {
	s := NewStore(memory.New(zap.NewNop()), TTLs{UserData: time.Minute}, zap.NewNop(), nil)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { _ = s.Disconnect() })
	ctx := context.Background()

	assert.Equal(t, time.Minute, s.TTL(UserData))
	assert.Equal(t, 2*time.Hour, s.TTL(AIResponse))

	require.True(t, s.Set(ctx, "user:7:my_resume", []int{1, 2}, 0))
	var out []int
	require.True(t, s.Get(ctx, "user:7:my_resume", &out))
	assert.Equal(t, []int{1, 2}, out)
	assert.Equal(t, 1, s.ClearUserCache(ctx, "7"))
}
