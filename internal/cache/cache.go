package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kjstillabower/weatherify/internal/models"
)

// Cache stores autocomplete suggestion batches keyed by normalized query text.
// Get returns (batch, true, nil) on hit and (nil, false, nil) on miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.PlaceSuggestion, bool, error)
	Set(ctx context.Context, key string, value []models.PlaceSuggestion, ttl time.Duration) error
}

// Pinger is implemented by networked backends for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InMemoryCache implements Cache on top of go-cache. Safe for concurrent use;
// expired entries are purged by the janitor every cleanupInterval.
type InMemoryCache struct {
	store *gocache.Cache
}

// NewInMemoryCache creates an in-memory cache. ttl is the default expiration
// used when Set receives a non-positive ttl.
func NewInMemoryCache(ttl, cleanupInterval time.Duration) *InMemoryCache {
	return &InMemoryCache{
		store: gocache.New(ttl, cleanupInterval),
	}
}

// Get returns a copy of the cached batch so callers cannot mutate the stored one.
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]models.PlaceSuggestion, bool, error) {
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	batch, ok := v.([]models.PlaceSuggestion)
	if !ok {
		return nil, false, nil
	}
	return cloneSuggestions(batch), true, nil
}

// Set stores a copy of value with the given ttl.
func (c *InMemoryCache) Set(ctx context.Context, key string, value []models.PlaceSuggestion, ttl time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, cloneSuggestions(value), ttl)
	return nil
}

// ItemCount reports the number of entries, including expired ones not yet purged.
func (c *InMemoryCache) ItemCount() int {
	return c.store.ItemCount()
}

func cloneSuggestions(in []models.PlaceSuggestion) []models.PlaceSuggestion {
	out := make([]models.PlaceSuggestion, len(in))
	for i, s := range in {
		out[i] = s
		if s.Coordinates != nil {
			coords := *s.Coordinates
			out[i].Coordinates = &coords
		}
	}
	return out
}

// hashKey turns free query text into a fixed-length key that is safe for
// memcached (no whitespace, at most 250 bytes).
func hashKey(prefix, k string) string {
	sum := sha256.Sum256([]byte(k))
	return prefix + hex.EncodeToString(sum[:])
}
