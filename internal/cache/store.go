// Package cache holds SKU lookup results between writes.
//
// Entries are keyed by a hash of the lookup's filter parameters and tagged
// with the product they were scoped to, so a write to one product only drops
// that product's entries plus any entries that were not product scoped.
package cache

import (
	"sync"
	"time"
)

// AnyProduct tags entries whose filter was not scoped to a single product.
const AnyProduct int64 = 0

type entry[V any] struct {
	value     V
	productID int64
	expires   time.Time
}

// Store is a TTL map from filter hash to value. The zero TTL disables it:
// Get always misses and Set is a no-op. A nil *Store behaves as disabled.
type Store[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uint64]entry[V]
	gen     uint64 // bumped by every invalidation
}

// NewStore creates a store whose entries live for ttl.
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uint64]entry[V]),
	}
}

func (s *Store[V]) enabled() bool {
	return s != nil && s.ttl > 0
}

// Get returns the live value stored under key.
func (s *Store[V]) Get(key uint64) (V, bool) {
	var zero V
	if !s.enabled() {
		return zero, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return zero, false
	}
	if !s.now().Before(e.expires) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, tagged with productID (AnyProduct when the
// lookup was not scoped to one product).
func (s *Store[V]) Set(key uint64, productID int64, value V) {
	if !s.enabled() {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry[V]{
		value:     value,
		productID: productID,
		expires:   s.now().Add(s.ttl),
	}
	s.mu.Unlock()
}

// Generation returns the invalidation counter. Capture it before loading a
// value and pass it to SetAt.
func (s *Store[V]) Generation() uint64 {
	if s == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// SetAt stores value like Set unless an invalidation happened since gen was
// read. It reports whether the value was stored.
func (s *Store[V]) SetAt(key uint64, productID int64, value V, gen uint64) bool {
	if !s.enabled() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.entries[key] = entry[V]{
		value:     value,
		productID: productID,
		expires:   s.now().Add(s.ttl),
	}
	return true
}

// InvalidateProduct drops entries tagged with productID and every entry
// tagged AnyProduct.
func (s *Store[V]) InvalidateProduct(productID int64) {
	if s == nil {
		return
	}

	s.mu.Lock()
	s.gen++
	for key, e := range s.entries {
		if e.productID == productID || e.productID == AnyProduct {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// Invalidate drops every entry.
func (s *Store[V]) Invalidate() {
	if s == nil {
		return
	}

	s.mu.Lock()
	s.gen++
	clear(s.entries)
	s.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (s *Store[V]) Len() int {
	if s == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Purge evicts expired entries and returns how many were removed.
func (s *Store[V]) Purge() int {
	if !s.enabled() {
		return 0
	}

	now := s.now()
	removed := 0
	s.mu.Lock()
	for key, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, key)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}
