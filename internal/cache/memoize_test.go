package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parseIn struct {
	Text  string
	Hints map[string]string
}

func TestWrapInvokesOnce(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	var calls atomic.Int32
	parse := Wrap(s, Op{Category: AIResponse, Name: "parse_resume"},
		func(in parseIn) string { return HashArgs([]any{in.Text, in.Hints}) },
		func(_ context.Context, in parseIn) ([]string, error) {
			calls.Add(1)
			return []string{in.Text}, nil
		})

	in := parseIn{Text: "Jane Doe", Hints: map[string]string{"email": "jane@example.com"}}
	first, err := parse(ctx, in)
	require.NoError(t, err)
	second, err := parse(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())

	// ключ в нужном пространстве и с TTL категории
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Regexp(t, `^ai_response:parse_resume:[0-9a-f]{64}$`, keys[0])
	assert.Equal(t, 2*time.Hour, mr.TTL(keys[0]))

	_, err = parse(ctx, parseIn{Text: "John"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestWrapDoesNotCacheErrors(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	var calls atomic.Int32
	boom := errors.New("provider down")
	op := Wrap(s, Op{Category: UserData, Name: "me"},
		func(id string) string { return id },
		func(context.Context, string) (string, error) {
			calls.Add(1)
			return "", boom
		})

	_, err := op(ctx, "u1")
	assert.ErrorIs(t, err, boom)
	_, err = op(ctx, "u1")
	assert.ErrorIs(t, err, boom)

	assert.EqualValues(t, 2, calls.Load())
	assert.Empty(t, mr.Keys())
}

func TestWrapTTLOverride(t *testing.T) {
	s, mr := newRedisStore(t)

	op := Wrap(s, Op{Category: Templates, Name: "all", TTL: 10 * time.Second},
		func(struct{}) string { return "list" },
		func(context.Context, struct{}) (int, error) { return 1, nil })

	_, err := op(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, mr.TTL("templates:all:list"))
}

func TestLoadCollapsesConcurrentMisses(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Load(ctx, s, Generic, "generic:slow:1", 0, fn)
			assert.NoError(t, err)
			assert.Equal(t, "value", v)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestLoadCancelledCallerDoesNotFailOthers(t *testing.T) {
	s, _ := newRedisStore(t)

	var calls atomic.Int32
	started := make(chan struct{})
	fn := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(100 * time.Millisecond):
			return "value", nil
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := Load(ctxA, s, AIResponse, "ai_response:slow:1", 0, fn)
		errA <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := Load(context.Background(), s, AIResponse, "ai_response:slow:1", 0, fn)
		resB <- result{v, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()

	assert.ErrorIs(t, <-errA, context.Canceled)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "value", b.v)
	assert.EqualValues(t, 1, calls.Load())

	var cached string
	assert.True(t, s.Get(context.Background(), "ai_response:slow:1", &cached))
	assert.Equal(t, "value", cached)
}

func TestLoadWithoutStore(t *testing.T) {
	v, err := Load(context.Background(), nil, Generic, "k", 0, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestHashArgsOrderIndependent(t *testing.T) {
	t.Parallel()

	a := HashArgs([]any{"resume text"}, Arg{"job", "Go developer"}, Arg{"tone", "formal"})
	b := HashArgs([]any{"resume text"}, Arg{"tone", "formal"}, Arg{"job", "Go developer"})
	assert.Equal(t, a, b)

	c := HashArgs([]any{"resume text"}, Arg{"tone", "casual"}, Arg{"job", "Go developer"})
	assert.NotEqual(t, a, c)

	assert.Equal(t,
		HashKwargs(map[string]any{"x": 1, "y": []int{2}}),
		HashKwargs(map[string]any{"y": []int{2}, "x": 1}))

	// позиционные аргументы порядок учитывают
	assert.NotEqual(t, HashArgs([]any{"a", "b"}), HashArgs([]any{"b", "a"}))
}

func TestWrapKwargsOrderHitsCache(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	var calls atomic.Int32
	score := Wrap(s, Op{Category: AIResponse, Name: "score"},
		func(args []Arg) string { return HashArgs(nil, args...) },
		func(context.Context, []Arg) (int, error) {
			calls.Add(1)
			return 80, nil
		})

	_, err := score(ctx, []Arg{{"resume", "r"}, {"job", "j"}})
	require.NoError(t, err)
	_, err = score(ctx, []Arg{{"job", "j"}, {"resume", "r"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
}
