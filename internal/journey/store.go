package journey

import (
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrNotFound is returned when no journey exists for a thread ID.
var ErrNotFound = errors.New("journey not found")

// Store is the keyed session store. Independent threads may be operated
// on in parallel; each entry carries its own lock so the background
// full-path replace is a single atomic swap as seen by readers.
//
// The caller controls the lifecycle: a TTL of 0 keeps journeys until
// explicitly removed, a positive TTL lets go-cache evict idle sessions.
type Store struct {
	cache *gocache.Cache
}

type entry struct {
	mu sync.RWMutex
	j  *Journey
}

// NewStore creates a Store. With ttl > 0, entries expire after ttl and
// the janitor purges them every cleanup interval.
func NewStore(ttl, cleanup time.Duration) *Store {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &Store{cache: gocache.New(ttl, cleanup)}
}

// Put inserts or replaces the journey for its thread ID.
func (s *Store) Put(j *Journey) {
	s.cache.Set(j.ThreadID, &entry{j: j}, gocache.DefaultExpiration)
}

// Snapshot returns a deep copy of the journey, or (nil, false).
func (s *Store) Snapshot(threadID string) (*Journey, bool) {
	e, ok := s.lookup(threadID)
	if !ok {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.j.Clone(), true
}

// Update runs fn on the live journey under the entry lock. Mutations by
// fn are visible to subsequent reads as one atomic change. Returns
// ErrNotFound for unknown threads; fn errors pass through and any
// mutations fn already made still stand.
func (s *Store) Update(threadID string, fn func(*Journey) error) error {
	e, ok := s.lookup(threadID)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.j)
}

// View runs fn on the live journey under a read lock. fn must not
// mutate or retain the journey.
func (s *Store) View(threadID string, fn func(*Journey)) error {
	e, ok := s.lookup(threadID)
	if !ok {
		return ErrNotFound
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.j)
	return nil
}

// Delete removes the journey for the thread ID, if present.
func (s *Store) Delete(threadID string) {
	s.cache.Delete(threadID)
}

// Len returns the number of stored journeys (including not-yet-purged
// expired entries, per go-cache semantics).
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

func (s *Store) lookup(threadID string) (*entry, bool) {
	v, ok := s.cache.Get(threadID)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}
