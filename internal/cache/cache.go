// Package cache implements a generic TTL cache-aside wrapper for expensive
// external lookups. A fresh entry short-circuits the fetch; a miss triggers
// it; a stale entry is served as a last resort when the fetch fails. A cache
// problem never aborts the caller's run.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/kamilpajak/crankshaft/internal/database"
)

// Cache source tags and TTLs. Registry data moves slowly (recall campaigns);
// labor-time guides are close to static.
const (
	SourceRegistry  = "registry"
	SourceLaborTime = "labor_time"

	RegistryTTL  = 30 * 24 * time.Hour
	LaborTimeTTL = 90 * 24 * time.Hour
)

// Store defines the persistence operations needed by a Manager.
type Store interface {
	GetFreshCacheEntry(ctx context.Context, source, key string) (*database.CacheEntry, error)
	GetStaleCacheEntry(ctx context.Context, source, key string) (*database.CacheEntry, error)
	PutCacheEntry(ctx context.Context, source, key string, payload []byte, ttl time.Duration) error
}

// FetchFunc performs the live lookup on a cache miss.
type FetchFunc[T any] func(ctx context.Context, key string) (T, error)

// Result is the outcome of a cache-aside read. Stale is only set when an
// expired entry was served because the live fetch failed; callers that care
// about freshness must check it.
type Result[T any] struct {
	Value  T
	Cached bool
	Stale  bool
}

// Manager is a cache-aside helper for one external data source.
type Manager[T any] struct {
	store  Store
	source string
	ttl    time.Duration
	fetch  FetchFunc[T]
}

// New creates a Manager for the given source tag and TTL.
func New[T any](store Store, source string, ttl time.Duration, fetch FetchFunc[T]) *Manager[T] {
	return &Manager[T]{store: store, source: source, ttl: ttl, fetch: fetch}
}

// Get reads through the cache. It never returns an error: store failures are
// treated as misses, fetch failures fall back to a stale entry, and with
// neither available the zero value is returned.
func (m *Manager[T]) Get(ctx context.Context, key string) Result[T] {
	if entry, err := m.store.GetFreshCacheEntry(ctx, m.source, key); err != nil {
		log.Printf("cache %s: read failed for %q: %v", m.source, key, err)
	} else if entry != nil {
		var value T
		if err := json.Unmarshal(entry.Payload, &value); err != nil {
			log.Printf("cache %s: corrupt payload for %q: %v", m.source, key, err)
		} else {
			return Result[T]{Value: value, Cached: true}
		}
	}

	value, err := m.fetch(ctx, key)
	if err == nil {
		if payload, merr := json.Marshal(value); merr != nil {
			log.Printf("cache %s: marshal failed for %q: %v", m.source, key, merr)
		} else if perr := m.store.PutCacheEntry(ctx, m.source, key, payload, m.ttl); perr != nil {
			log.Printf("cache %s: write failed for %q: %v", m.source, key, perr)
		}
		return Result[T]{Value: value}
	}
	log.Printf("cache %s: fetch failed for %q: %v", m.source, key, err)

	if entry, serr := m.store.GetStaleCacheEntry(ctx, m.source, key); serr != nil {
		log.Printf("cache %s: stale read failed for %q: %v", m.source, key, serr)
	} else if entry != nil {
		var stale T
		if err := json.Unmarshal(entry.Payload, &stale); err == nil {
			return Result[T]{Value: stale, Cached: true, Stale: true}
		}
	}

	var zero T
	return Result[T]{Value: zero}
}

// Key builds a normalized lookup key from its parts: lowercased, trimmed,
// joined with "|".
func Key(parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(p)))
	}
	return strings.Join(normalized, "|")
}
