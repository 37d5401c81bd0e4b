package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(ttl time.Duration) (*Store[string], *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore[string](ttl)
	s.now = clock.Now
	return s, clock
}

func TestStore_GetSet(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	_, ok := s.Get(1)
	assert.False(t, ok)

	s.Set(1, 10, "a")
	got, ok := s.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestStore_Expiry(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	s.Set(1, 10, "a")

	clock.Advance(59 * time.Second)
	_, ok := s.Get(1)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = s.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len(), "expired entry evicted on read")
}

func TestStore_InvalidateProduct(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	s.Set(1, 10, "product 10")
	s.Set(2, 20, "product 20")
	s.Set(3, AnyProduct, "all products")

	s.InvalidateProduct(10)

	_, ok := s.Get(1)
	assert.False(t, ok, "entry for invalidated product dropped")
	_, ok = s.Get(2)
	assert.True(t, ok, "other product kept")
	_, ok = s.Get(3)
	assert.False(t, ok, "unscoped entry dropped")
}

func TestStore_Invalidate(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	s.Set(1, 10, "a")
	s.Set(2, 20, "b")

	s.Invalidate()

	assert.Equal(t, 0, s.Len())
}

func TestStore_Disabled(t *testing.T) {
	s, _ := newTestStore(0)
	s.Set(1, 10, "a")

	_, ok := s.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())

	var nilStore *Store[string]
	nilStore.Set(1, 10, "a")
	_, ok = nilStore.Get(1)
	assert.False(t, ok)
	nilStore.InvalidateProduct(10)
	nilStore.Invalidate()
	assert.Equal(t, 0, nilStore.Len())
}

func TestStore_Concurrent(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := uint64(i*100 + j)
				s.Set(key, int64(i), "v")
				s.Get(key)
				if j%10 == 0 {
					s.InvalidateProduct(int64(i))
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestStore_Purge(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	s.Set(1, 10, "a")
	clock.Advance(30 * time.Second)
	s.Set(2, 10, "b")

	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, s.Purge())
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get(2)
	assert.True(t, ok)
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	c := NewSkuCache(time.Millisecond)
	c.Counts.Set(1, 7, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunJanitor(ctx, c, 5*time.Millisecond, nil) }()

	assert.Eventually(t, func() bool { return c.Counts.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestStore_SetAtSkipsAfterInvalidation(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	gen := s.Generation()
	assert.True(t, s.SetAt(1, 10, "fresh", gen))

	gen = s.Generation()
	s.InvalidateProduct(10) // a write lands while the value is being loaded
	assert.False(t, s.SetAt(1, 10, "stale", gen))
	_, ok := s.Get(1)
	assert.False(t, ok)

	gen = s.Generation()
	s.Invalidate()
	assert.False(t, s.SetAt(2, 11, "stale", gen))
	assert.Equal(t, 0, s.Len())
}
