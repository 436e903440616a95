package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time without sleeping
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

func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore(time.Hour)
	store.now = clock.Now
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryIdempotencyStore_Reserve(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	t.Run("first reservation wins", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Reserve(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok, "second reservation should lose")
	})

	t.Run("expired reservation can be claimed again", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "key-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		clock.Advance(2 * time.Minute)

		ok, err = store.Reserve(ctx, "key-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("released key can be claimed again", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "key-3", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, store.Release(ctx, "key-3"))

		ok, err = store.Reserve(ctx, "key-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_Lookup(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	record, err := store.Lookup(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, record)

	_, err = store.Reserve(ctx, "sale-1", time.Hour)
	require.NoError(t, err)

	record, err = store.Lookup(ctx, "sale-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.False(t, record.Completed, "reserved key is in flight")

	body := []byte(`{"success":true}`)
	require.NoError(t, store.Complete(ctx, "sale-1", shared.IdempotencyRecord{StatusCode: 201, Body: body}, time.Hour))
	body[0] = 'X'

	record, err = store.Lookup(ctx, "sale-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Completed)
	assert.Equal(t, 201, record.StatusCode)
	assert.Equal(t, `{"success":true}`, string(record.Body), "stored body is a copy")

	clock.Advance(2 * time.Hour)
	record, err = store.Lookup(ctx, "sale-1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, _ = store.Reserve(ctx, "short-1", time.Minute)
	_, _ = store.Reserve(ctx, "short-2", time.Minute)
	_, _ = store.Reserve(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	clock.Advance(5 * time.Minute)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
	record, err := store.Lookup(ctx, "long")
	require.NoError(t, err)
	assert.NotNil(t, record)
}

func TestInMemoryIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const workers = 100
	results := make(chan bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Reserve(ctx, "checkout", time.Hour)
			results <- err == nil && ok
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for ok := range results {
		if ok {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one caller should reserve the key")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore(0)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
