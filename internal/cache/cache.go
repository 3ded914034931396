// Package cache memoizes slow external lookups with a per-operation time-to-live.
// Entries are stored as JSON so the same cache can sit in process memory or in Redis.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Operation names. Each has its own TTL and can be invalidated on its own.
const (
	OpQuote    = "quote"
	OpFx       = "fx"
	OpIndices  = "indices"
	OpHistory  = "history"
	OpNews     = "news"
	OpProfile  = "profile"
	OpHoldings = "holdings"
	OpScraps   = "scraps"
)

// Operations lists every operation name.
var Operations = []string{OpQuote, OpFx, OpIndices, OpHistory, OpNews, OpProfile, OpHoldings, OpScraps}

const keySep = "|"

// Store persists encoded entries. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the entry and when it was fetched. ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, fetchedAt time.Time, ok bool, err error)
	// Set stores an entry. ttl is a hint for backends that expire keys themselves.
	Set(ctx context.Context, key string, value []byte, fetchedAt time.Time, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix. An empty prefix clears the store.
	DeletePrefix(ctx context.Context, prefix string) error
	// Name identifies the backend in status output.
	Name() string
}

// Cache decides freshness with its own clock so tests can move time forward
// without waiting.
type Cache struct {
	store Store
	ttls  map[string]time.Duration
	now   func() time.Time
	group singleflight.Group
	log   zerolog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for backend failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New creates a cache over store. Operations missing from ttls are never cached.
func New(store Store, ttls map[string]time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		ttls:  ttls,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the store key for an operation and its arguments. Each argument
// is length-prefixed so distinct argument lists never share a key.
func Key(op string, args ...string) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteString(keySep)
	for _, a := range args {
		b.WriteString(strconv.Itoa(len(a)))
		b.WriteByte(':')
		b.WriteString(a)
	}
	return b.String()
}

// Backend returns the store name, or "none" for a nil cache.
func (c *Cache) Backend() string {
	if c == nil {
		return "none"
	}
	return c.store.Name()
}

// Fetch returns the cached value for op and args when it is younger than the
// operation's TTL, otherwise calls fn and stores its result. Errors from fn are
// returned and never stored. Concurrent misses for the same key share one call.
// A nil cache always calls fn.
func Fetch[T any](ctx context.Context, c *Cache, op string, args []string, fn func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}
	ttl, ok := c.ttls[op]
	if !ok || ttl <= 0 {
		return fn(ctx)
	}

	key := Key(op, args...)
	if v, hit := lookup[T](ctx, c, key, ttl); hit {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		// another caller may have filled the entry while we waited
		if v, hit := lookup[T](ctx, c, key, ttl); hit {
			return v, nil
		}
		v, err := fn(ctx)
		if err != nil {
			return v, err
		}
		c.put(ctx, key, v, ttl)
		return v, nil
	})
	v, _ := res.(T)
	return v, err
}

func lookup[T any](ctx context.Context, c *Cache, key string, ttl time.Duration) (T, bool) {
	var v T
	raw, fetchedAt, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return v, false
	}
	if !ok || c.now().Sub(fetchedAt) >= ttl {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return v, false
	}
	return v, true
}

func (c *Cache) put(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry unencodable")
		return
	}
	if err := c.store.Set(ctx, key, raw, c.now(), ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Invalidate drops every entry of one operation.
func (c *Cache) Invalidate(ctx context.Context, op string) error {
	if c == nil {
		return nil
	}
	return c.store.DeletePrefix(ctx, op+keySep)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.store.DeletePrefix(ctx, "")
}
