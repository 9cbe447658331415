// Package memo caches the results of computations keyed by their arguments.
//
// A wrapped computation derives a key from its function identity and arguments,
// returns the cached result on a hit, and otherwise runs the computation and
// stores its result. Failed computations are never cached.
//
// By default concurrent misses on the same key each run the computation and the
// last one to finish wins. WithSingleFlight collapses them into one call.
package memo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/krisalay/memo-cache/api"
	"github.com/krisalay/memo-cache/keycodec"
)

// Args are the arguments of one call.
type Args struct {
	Positional []any
	Named      map[string]any
}

// Func is a computation that can be memoized.
type Func[R any] func(ctx context.Context, args Args) (R, error)

type options struct {
	logger       *zap.Logger
	codec        keycodec.Codec
	singleFlight bool
}

type Option func(*options)

// WithSingleFlight makes concurrent misses on one key share a single call.
//
// The shared call runs with the first caller's context values but without its
// cancellation. A cancelled caller stops waiting and gets ctx.Err(); the call
// keeps running for the others and its result is still cached.
func WithSingleFlight() Option {
	return func(o *options) { o.singleFlight = true }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithCodec(c keycodec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// Memoizer binds a computation to a cache.
type Memoizer[R any] struct {
	cache api.Cache
	name  string
	fn    Func[R]
	opts  options

	// sf is only used when single-flight is enabled.
	sf singleflight.Group
}

/*
New wraps fn with cache c.

name identifies the computation inside keys, so several computations can share
one cache. When name is empty the runtime name of fn is used; closures created
from the same literal share that name, so pass an explicit name for closures
that capture state.
*/
func New[R any](c api.Cache, name string, fn Func[R], opts ...Option) *Memoizer[R] {
	o := options{
		logger: zap.NewNop(),
		codec:  keycodec.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		name = funcName(fn)
	}

	return &Memoizer[R]{
		cache: c,
		name:  name,
		fn:    fn,
		opts:  o,
	}
}

// Wrap returns fn memoized through c.
func Wrap[R any](c api.Cache, name string, fn Func[R], opts ...Option) Func[R] {
	return New(c, name, fn, opts...).Call
}

// Wrap1 memoizes a one-argument function. The argument becomes the only positional arg.
func Wrap1[A, R any](c api.Cache, name string, fn func(context.Context, A) (R, error), opts ...Option) func(context.Context, A) (R, error) {
	if name == "" {
		name = funcName(fn)
	}
	m := New[R](c, name, func(ctx context.Context, args Args) (R, error) {
		a, _ := args.Positional[0].(A)
		return fn(ctx, a)
	}, opts...)

	return func(ctx context.Context, a A) (R, error) {
		return m.Call(ctx, Args{Positional: []any{a}})
	}
}

// Wrap2 memoizes a two-argument function.
func Wrap2[A, B, R any](c api.Cache, name string, fn func(context.Context, A, B) (R, error), opts ...Option) func(context.Context, A, B) (R, error) {
	if name == "" {
		name = funcName(fn)
	}
	m := New[R](c, name, func(ctx context.Context, args Args) (R, error) {
		a, _ := args.Positional[0].(A)
		b, _ := args.Positional[1].(B)
		return fn(ctx, a, b)
	}, opts...)

	return func(ctx context.Context, a A, b B) (R, error) {
		return m.Call(ctx, Args{Positional: []any{a, b}})
	}
}

// Name returns the function identity used in keys.
func (m *Memoizer[R]) Name() string {
	return m.name
}

// Key returns the cache key for args.
func (m *Memoizer[R]) Key(args Args) string {
	return m.opts.codec.DeriveFor(m.name, args.Positional, args.Named)
}

/*
Call returns the cached result for args, computing and storing it on a miss.

BEHAVIOR:
---------
- Hit: the computation is not run
- Miss: the computation runs; a successful result is stored and returned
- Computation error: returned unchanged, nothing is stored
- Cache failures (other than a plain miss) are logged and never fail the call
*/
func (m *Memoizer[R]) Call(ctx context.Context, args Args) (R, error) {
	key := m.Key(args)

	if r, ok := m.lookup(ctx, key); ok {
		return r, nil
	}

	if !m.opts.singleFlight {
		return m.compute(ctx, key, args)
	}

	// The flight outlives any single caller, so it must not inherit one
	// caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := m.sf.DoChan(key, func() (any, error) {
		// A caller that missed just before the previous flight finished
		// would otherwise start a second one.
		if r, ok := m.lookup(flightCtx, key); ok {
			return r, nil
		}
		return m.compute(flightCtx, key, args)
	})

	select {
	case res := <-ch:
		if res.Shared {
			m.opts.logger.Debug("memo call shared", zap.String("fn", m.name), zap.String("key", key))
		}
		r, _ := res.Val.(R)
		return r, res.Err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

func (m *Memoizer[R]) lookup(ctx context.Context, key string) (R, bool) {
	var zero R

	v, err := m.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			m.opts.logger.Warn("memo cache get failed",
				zap.String("fn", m.name), zap.String("key", key), zap.Error(err))
		}
		m.opts.logger.Debug("memo miss", zap.String("fn", m.name), zap.String("key", key))
		return zero, false
	}

	// A nil result is a valid cached value when R is an interface type.
	if v == nil && any(zero) == nil {
		m.opts.logger.Debug("memo hit", zap.String("fn", m.name), zap.String("key", key))
		return zero, true
	}

	r, ok := v.(R)
	if !ok {
		m.opts.logger.Warn("memo cached value has unexpected type",
			zap.String("fn", m.name), zap.String("key", key), zap.String("type", fmt.Sprintf("%T", v)))
		return zero, false
	}

	m.opts.logger.Debug("memo hit", zap.String("fn", m.name), zap.String("key", key))
	return r, true
}

func (m *Memoizer[R]) compute(ctx context.Context, key string, args Args) (R, error) {
	r, err := m.fn(ctx, args)
	if err != nil {
		return r, err
	}

	if err := m.cache.Set(ctx, key, r); err != nil {
		m.opts.logger.Warn("memo cache set failed",
			zap.String("fn", m.name), zap.String("key", key), zap.Error(err))
	}
	return r, nil
}

func funcName(fn any) string {
	if f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()); f != nil {
		return f.Name()
	}
	return ""
}
