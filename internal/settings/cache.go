package settings

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

// ErrNotFound is returned when no setting carries the requested key.
var ErrNotFound = errors.New("setting not found")

// Source provides the authoritative values behind the cache.
type Source interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// StaticSource is an in-memory Source for tests and local development.
type StaticSource struct {
	mu     sync.Mutex
	values map[string]string
}

// NewStaticSource copies the given values into a StaticSource.
func NewStaticSource(values map[string]string) *StaticSource {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &StaticSource{values: copied}
}

func (s *StaticSource) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *StaticSource) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache is a read-through cache over a settings Source with a fixed TTL per
// key and explicit invalidation on write. Misses and expirations hit the
// source; nothing is memoized beyond the TTL.
type Cache struct {
	source Source
	ttl    time.Duration

	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewCache constructs a Cache with the given TTL.
func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key, loading it from the source when the
// entry is absent or expired.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	value, err := c.source.Get(ctx, key)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return value, nil
}

// Set writes through to the source and replaces the cached entry, so readers
// never see a stale value after a write.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if err := c.source.Set(ctx, key, value); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return nil
}

// Invalidate drops the cached entry for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// GetInt reads an integer setting, falling back when the key is missing or
// not a number.
func (c *Cache) GetInt(ctx context.Context, key string, fallback int) int {
	value, err := c.Get(ctx, key)
	if err != nil {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
