package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(store Store) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	c := New(store, map[string]time.Duration{
		OpFx:       600 * time.Second,
		OpHoldings: 60 * time.Second,
	}, WithClock(clock.Now))
	return c, clock
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(rdb),
	}
}

func TestFetch_ServesFreshEntryUntilTTL(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			c, clock := newTestCache(store)
			ctx := context.Background()
			calls := 0
			fn := func(context.Context) (float64, error) {
				calls++
				return 1300 + float64(calls), nil
			}

			v, err := Fetch(ctx, c, OpFx, []string{"USDKRW"}, fn)
			require.NoError(t, err)
			assert.Equal(t, 1301.0, v)

			clock.Advance(599 * time.Second)
			v, err = Fetch(ctx, c, OpFx, []string{"USDKRW"}, fn)
			require.NoError(t, err)
			assert.Equal(t, 1301.0, v, "entry should still be fresh")

			clock.Advance(time.Second)
			v, err = Fetch(ctx, c, OpFx, []string{"USDKRW"}, fn)
			require.NoError(t, err)
			assert.Equal(t, 1302.0, v, "entry should expire at the TTL")
			assert.Equal(t, 2, calls)
		})
	}
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestCache(store)
			ctx := context.Background()
			boom := errors.New("boom")
			calls := 0

			_, err := Fetch(ctx, c, OpFx, []string{"USDKRW"}, func(context.Context) (float64, error) {
				calls++
				return 0, boom
			})
			require.ErrorIs(t, err, boom)

			v, err := Fetch(ctx, c, OpFx, []string{"USDKRW"}, func(context.Context) (float64, error) {
				calls++
				return 1350, nil
			})
			require.NoError(t, err)
			assert.Equal(t, 1350.0, v)
			assert.Equal(t, 2, calls)
		})
	}
}

func TestFetch_KeysIncludeArguments(t *testing.T) {
	c, _ := newTestCache(NewMemoryStore())
	ctx := context.Background()

	a, err := Fetch(ctx, c, OpFx, []string{"USDKRW"}, func(context.Context) (string, error) { return "usd", nil })
	require.NoError(t, err)
	b, err := Fetch(ctx, c, OpFx, []string{"JPYKRW"}, func(context.Context) (string, error) { return "jpy", nil })
	require.NoError(t, err)

	assert.Equal(t, "usd", a)
	assert.Equal(t, "jpy", b)
}

// TestFetch_SeparatorInArguments checks that argument boundaries are part of the key.
//
// WHY: A news query may contain the key separator. Without length prefixes
// ("x|y") and ("x", "y") would share an entry and return each other's result.
func TestFetch_SeparatorInArguments(t *testing.T) {
	c, _ := newTestCache(NewMemoryStore())
	ctx := context.Background()

	a, err := Fetch(ctx, c, OpFx, []string{"ko", "x|y"}, func(context.Context) (string, error) { return "A", nil })
	require.NoError(t, err)
	b, err := Fetch(ctx, c, OpFx, []string{"ko", "x", "y"}, func(context.Context) (string, error) { return "B", nil })
	require.NoError(t, err)

	assert.Equal(t, "A", a)
	assert.Equal(t, "B", b)
	assert.NotEqual(t, Key(OpNews, "a", ""), Key(OpNews, "", "a"))
	assert.True(t, strings.HasPrefix(Key(OpNews, "ko", "x"), OpNews+"|"))
}

func TestFetch_UnknownOperationBypassesCache(t *testing.T) {
	store := NewMemoryStore()
	c, _ := newTestCache(store)
	calls := 0
	for i := 0; i < 3; i++ {
		_, err := Fetch(context.Background(), c, "uncached", nil, func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, store.Len())
}

func TestFetch_NilCacheCallsThrough(t *testing.T) {
	var c *Cache
	v, err := Fetch(context.Background(), c, OpFx, nil, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "none", c.Backend())
	assert.NoError(t, c.InvalidateAll(context.Background()))
}

func TestFetch_CollapsesConcurrentMisses(t *testing.T) {
	c, _ := newTestCache(NewMemoryStore())
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Fetch(context.Background(), c, OpHoldings, nil, func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 1, nil
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestInvalidate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestCache(store)
			ctx := context.Background()
			calls := map[string]int{}
			get := func(op string) {
				_, err := Fetch(ctx, c, op, []string{"x"}, func(context.Context) (int, error) {
					calls[op]++
					return calls[op], nil
				})
				require.NoError(t, err)
			}

			get(OpFx)
			get(OpHoldings)

			require.NoError(t, c.Invalidate(ctx, OpHoldings))
			get(OpFx)
			get(OpHoldings)
			assert.Equal(t, 1, calls[OpFx], "fx should survive holdings invalidation")
			assert.Equal(t, 2, calls[OpHoldings])

			require.NoError(t, c.InvalidateAll(ctx))
			get(OpFx)
			assert.Equal(t, 2, calls[OpFx])
		})
	}
}

func TestBackend(t *testing.T) {
	assert.Equal(t, "memory", New(NewMemoryStore(), nil).Backend())
}
