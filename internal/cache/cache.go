package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache stores values under string keys with per-entry TTL. Implementations
// must be safe for concurrent use.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Flush(ctx context.Context)
}

// Key joins non-empty parts into a normalized cache key.
func Key(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, strings.ToLower(trimmed))
	}
	return strings.Join(values, "|")
}

type ttlEntry[V any] struct {
	expiresAt time.Time
	value     V
}

type ttlCache[V any] struct {
	mu    sync.RWMutex
	items map[string]ttlEntry[V]
}

// NewTTLCache returns an in-memory cache with expiry checked on read.
func NewTTLCache[V any]() Cache[V] {
	return &ttlCache[V]{items: make(map[string]ttlEntry[V])}
}

func (c *ttlCache[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !entry.expiresAt.IsZero() && time.Now().UTC().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return zero, false
	}
	return entry.value, true
}

func (c *ttlCache[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	if key == "" {
		return
	}
	entry := ttlEntry[V]{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().UTC().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = entry
	c.mu.Unlock()
}

func (c *ttlCache[V]) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *ttlCache[V]) Flush(_ context.Context) {
	c.mu.Lock()
	c.items = make(map[string]ttlEntry[V])
	c.mu.Unlock()
}
