package storekit

import (
	"sync"
	"time"
)

// Entry is one keyed cache slot: the fetched sub-list plus fetch metadata.
type Entry[T any] struct {
	Records   []T       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
	HasMore   bool      `json:"has_more"`
	Offset    int       `json:"offset"`
	Origin    Origin    `json:"origin"`
}

// Keyed is a foreign-key cache with per-key monotonic request sequencing.
// Concurrent fetches for the same key race on the wire, but only the
// response belonging to the latest issued sequence number is applied;
// stale responses are dropped instead of overwriting fresher data.
type Keyed[T any] struct {
	mu      sync.Mutex
	entries map[string]Entry[T]
	seq     map[string]uint64
}

// NewKeyed builds an empty keyed cache.
func NewKeyed[T any]() *Keyed[T] {
	return &Keyed[T]{
		entries: make(map[string]Entry[T]),
		seq:     make(map[string]uint64),
	}
}

// Begin issues the next sequence number for a key. The caller passes it
// back to Commit once the fetch resolves.
func (k *Keyed[T]) Begin(key string) uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.seq[key]++
	return k.seq[key]
}

// Commit applies the entry only if seq is still the latest issued for the
// key. It reports whether the entry was applied.
func (k *Keyed[T]) Commit(key string, seq uint64, entry Entry[T]) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if seq != k.seq[key] {
		return false
	}
	k.entries[key] = entry
	return true
}

// Get returns the cached entry for a key.
func (k *Keyed[T]) Get(key string) (Entry[T], bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.entries[key]
	return entry, ok
}

// Clear drops one key, leaving other keys untouched. In-flight fetches
// for the key are also fenced out.
func (k *Keyed[T]) Clear(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, key)
	k.seq[key]++
}

// Reset drops every key.
func (k *Keyed[T]) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.entries = make(map[string]Entry[T])
	for key := range k.seq {
		k.seq[key]++
	}
}

// Keys returns the currently cached keys.
func (k *Keyed[T]) Keys() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	keys := make([]string, 0, len(k.entries))
	for key := range k.entries {
		keys = append(keys, key)
	}
	return keys
}
