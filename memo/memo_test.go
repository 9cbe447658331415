package memo_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/memo-cache"
	"github.com/krisalay/memo-cache/api"
	"github.com/krisalay/memo-cache/memo"
)

type workflow struct {
	ID   int
	Name string
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCache(t *testing.T, opts ...cache.Option) *cache.ShardedCache {
	t.Helper()
	c, err := cache.NewCache(100, 60, opts...)
	require.NoError(t, err)
	return c
}

func TestCallHitSuppressesRecomputation(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	var calls atomic.Int32
	get := memo.Wrap(c, "getWorkflow", func(_ context.Context, args memo.Args) (*workflow, error) {
		calls.Add(1)
		return &workflow{ID: args.Positional[0].(int), Name: "build"}, nil
	})

	first, err := get(ctx, memo.Args{Positional: []any{7}})
	require.NoError(t, err)
	second, err := get(ctx, memo.Args{Positional: []any{7}})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Size(ctx))
}

func TestCallDifferentArgsRecompute(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	var calls atomic.Int32
	get := memo.Wrap(c, "list", func(_ context.Context, args memo.Args) (int, error) {
		calls.Add(1)
		return args.Named["page"].(int) * 10, nil
	})

	v1, err := get(ctx, memo.Args{Named: map[string]any{"page": 1, "sort": "asc"}})
	require.NoError(t, err)
	v2, err := get(ctx, memo.Args{Named: map[string]any{"page": 2, "sort": "asc"}})
	require.NoError(t, err)
	v3, err := get(ctx, memo.Args{Named: map[string]any{"sort": "asc", "page": 1}})
	require.NoError(t, err)

	assert.Equal(t, 10, v1)
	assert.Equal(t, 20, v2)
	assert.Equal(t, 10, v3)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCallErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	errBoom := errors.New("boom")
	var calls atomic.Int32
	get := memo.Wrap1(c, "flaky", func(_ context.Context, id string) (string, error) {
		if calls.Add(1) == 1 {
			return "", errBoom
		}
		return "ok-" + id, nil
	})

	_, err := get(ctx, "a")
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, c.Size(ctx))

	v, err := get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "ok-a", v)
	assert.Equal(t, 1, c.Size(ctx))

	v, err = get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "ok-a", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCallRecomputesAfterTTL(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newCache(t, cache.WithClock(clk.Now))

	var calls atomic.Int32
	get := memo.Wrap1(c, "ttl", func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n * n, nil
	})

	_, _ = get(ctx, 3)
	clk.Advance(59 * time.Second)
	_, _ = get(ctx, 3)
	assert.Equal(t, int32(1), calls.Load())

	clk.Advance(2 * time.Second)
	v, err := get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFunctionIdentitySeparatesSharedCache(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	double := memo.Wrap1(c, "double", func(_ context.Context, n int) (int, error) { return n * 2, nil })
	triple := memo.Wrap1(c, "triple", func(_ context.Context, n int) (int, error) { return n * 3, nil })

	d, err := double(ctx, 5)
	require.NoError(t, err)
	tr, err := triple(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, 10, d)
	assert.Equal(t, 15, tr)
	assert.Equal(t, 2, c.Size(ctx))
}

func TestWrap2AndDerivedName(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	var calls atomic.Int32
	add := memo.Wrap2(c, "", func(_ context.Context, a, b int) (int, error) {
		calls.Add(1)
		return a + b, nil
	})

	v, err := add(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = add(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = add(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	assert.Equal(t, int32(2), calls.Load())
}

func TestNewDerivesNameFromFunction(t *testing.T) {
	c := newCache(t)
	m := memo.New(c, "", func(context.Context, memo.Args) (int, error) { return 0, nil })

	assert.Contains(t, m.Name(), "TestNewDerivesNameFromFunction")
	assert.Len(t, m.Key(memo.Args{}), 32)
}

func TestCallTreatsWrongTypeAsMiss(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	m := memo.New(c, "typed", func(context.Context, memo.Args) (int, error) { return 42, nil })
	key := m.Key(memo.Args{Positional: []any{"x"}})
	require.NoError(t, c.Set(ctx, key, "not an int"))

	v, err := m.Call(ctx, memo.Args{Positional: []any{"x"}})
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	stored, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 42, stored)
}

func TestCallCachesNilInterfaceResult(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	var calls atomic.Int32
	find := memo.Wrap1(c, "find", func(_ context.Context, id int) (any, error) {
		calls.Add(1)
		return nil, nil
	})

	for i := 0; i < 3; i++ {
		v, err := find(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, v)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestSingleFlightDeduplicatesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	slow := memo.Wrap1(c, "slow", func(_ context.Context, id int) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return id + 1, nil
	}, memo.WithSingleFlight())

	const callers = 20
	results := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := slow(ctx, 41)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestSingleFlightSurvivesCancelledCaller(t *testing.T) {
	c := newCache(t)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	slow := memo.Wrap1(c, "cancellable", func(ctx context.Context, id int) (int, error) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return id + 1, nil
	}, memo.WithSingleFlight())

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := slow(firstCtx, 41)
		firstErr <- err
	}()
	<-started

	type result struct {
		v   int
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := slow(context.Background(), 41)
		second <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 42, res.v)
	assert.Equal(t, int32(1), calls.Load())

	assert.Equal(t, 1, c.Size(context.Background()))
}

func TestConcurrentMissesWithoutSingleFlight(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	var calls atomic.Int32
	fn := memo.Wrap1(c, "plain", func(_ context.Context, id int) (int, error) {
		calls.Add(1)
		return id, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := fn(ctx, 5)
			assert.NoError(t, err)
			assert.Equal(t, 5, v)
		}()
	}
	wg.Wait()

	// Every miss may compute; at least one did, and one value is stored.
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Equal(t, 1, c.Size(ctx))
}

// failingCache is a backend whose every operation fails.
type failingCache struct{}

var errBackend = errors.New("backend down")

func (failingCache) Get(context.Context, string) (any, error) { return nil, errBackend }
func (failingCache) Set(context.Context, string, any) error   { return errBackend }
func (failingCache) Remove(context.Context, string) error     { return errBackend }
func (failingCache) Clear(context.Context) error              { return errBackend }
func (failingCache) Size(context.Context) int                 { return 0 }

var _ api.Cache = failingCache{}

func TestCallSurvivesBackendFailures(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	fn := memo.Wrap1[int, int](failingCache{}, "fallback", func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	for i := 0; i < 2; i++ {
		v, err := fn(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	}
	assert.Equal(t, int32(2), calls.Load())
}
