package cache

import (
	"context"
	"testing"
	"time"

	"github.com/philipparndt/gomesh/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time {
	return f.t
}

func newTestClient(t *testing.T, maxSize int) (*MemoryClient, *fakeClock) {
	t.Helper()
	return newBudgetClient(t, maxSize, 0)
}

func newBudgetClient(t *testing.T, maxSize int, maxBytes int64) (*MemoryClient, *fakeClock) {
	t.Helper()
	c := NewMemoryClient(maxSize, maxBytes)
	t.Cleanup(func() { _ = c.Close() })

	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.now
	return c, clock
}

func TestMemoryClientGetSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, 10)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	value := []byte("solid")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'S'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("solid"), got, "stored value is a copy")

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestClient(t, 10)

	require.NoError(t, c.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("b"), time.Hour))

	clock.t = clock.t.Add(2 * time.Second)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "long")
	assert.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	c.removeExpired()
	assert.Equal(t, 1, c.Len())
}

func TestMemoryClientEviction(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, 2)

	require.NoError(t, c.Set(ctx, "first", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "second", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "third", []byte("3"), time.Hour))

	assert.Equal(t, 2, c.Len())
	_, err := c.Get(ctx, "first")
	assert.ErrorIs(t, err, ErrCacheMiss, "earliest expiry is evicted")

	// overwriting an existing key never evicts
	require.NoError(t, c.Set(ctx, "third", []byte("3b"), time.Hour))
	_, err = c.Get(ctx, "second")
	assert.NoError(t, err)
}

func TestMemoryClientByteBudget(t *testing.T) {
	ctx := context.Background()
	c, _ := newBudgetClient(t, 100, 10)

	require.NoError(t, c.Set(ctx, "a", []byte("aaaa"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("bbbb"), time.Hour))
	assert.Equal(t, int64(8), c.Bytes())

	require.NoError(t, c.Set(ctx, "c", []byte("cccc"), time.Hour))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(8), c.Bytes())
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss, "earliest expiry is evicted")

	// replacing a key releases its old size first
	require.NoError(t, c.Set(ctx, "c", []byte("cccccc"), time.Hour))
	assert.Equal(t, int64(10), c.Bytes())
	_, err = c.Get(ctx, "b")
	assert.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "b"))
	assert.Equal(t, int64(6), c.Bytes())

	err = c.Set(ctx, "huge", make([]byte, 11), time.Hour)
	assert.ErrorIs(t, err, ErrValueTooLarge)
	assert.Equal(t, 1, c.Len(), "a rejected value evicts nothing")
}

func TestMemoryClientByteBudgetAfterExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newBudgetClient(t, 100, 10)

	require.NoError(t, c.Set(ctx, "a", []byte("aaaaaaaa"), time.Second))
	clock.t = clock.t.Add(2 * time.Second)
	c.removeExpired()
	assert.Equal(t, int64(0), c.Bytes())

	require.NoError(t, c.Set(ctx, "b", []byte("bbbbbbbbbb"), time.Hour))
	assert.Equal(t, int64(10), c.Bytes())
}

func TestMemoryClientDefaults(t *testing.T) {
	c := NewMemoryClient(0, 0)
	defer c.Close()
	assert.Equal(t, DefaultMaxEntries, c.maxSize)
	assert.Equal(t, DefaultMaxBytes, c.maxBytes)
}

func TestMemoryClientCloseTwice(t *testing.T) {
	c := NewMemoryClient(0, 0)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Driver: "memory", MaxEntries: 4, MaxBytes: 1 << 10})
	require.NoError(t, err)
	defer c.Close()
	require.IsType(t, &MemoryClient{}, c)
	assert.Equal(t, int64(1<<10), c.(*MemoryClient).maxBytes)

	_, err = New(config.CacheConfig{Driver: "memcached"})
	assert.Error(t, err)
}

func TestContentKey(t *testing.T) {
	a := ContentKey("stl", []byte("data"))
	assert.Equal(t, a, ContentKey("stl", []byte("data")))
	assert.NotEqual(t, a, ContentKey("obj", []byte("data")))
	assert.NotEqual(t, a, ContentKey("stl", []byte("date")))
	assert.Regexp(t, `^content:[0-9a-f]{64}$`, a)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "mesh:abc:stl", Key("mesh", "abc", "stl"))
}
