package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// CacheEntry is one row of the cache_entries table. Payload is opaque JSON
// owned by the cache manager.
type CacheEntry struct {
	Source    string
	Key       string
	Payload   []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}

// GetFreshCacheEntry reads a non-expired cache entry. Returns nil without
// error when no fresh entry exists.
func (db *DB) GetFreshCacheEntry(ctx context.Context, source, key string) (*CacheEntry, error) {
	return db.getCacheEntry(ctx,
		`SELECT source, cache_key, payload, fetched_at, expires_at
		 FROM cache_entries
		 WHERE source = $1 AND cache_key = $2 AND expires_at > now()`,
		source, key,
	)
}

// GetStaleCacheEntry reads a cache entry regardless of expiry. Only used as
// a last resort when a live fetch has failed.
func (db *DB) GetStaleCacheEntry(ctx context.Context, source, key string) (*CacheEntry, error) {
	return db.getCacheEntry(ctx,
		`SELECT source, cache_key, payload, fetched_at, expires_at
		 FROM cache_entries
		 WHERE source = $1 AND cache_key = $2`,
		source, key,
	)
}

func (db *DB) getCacheEntry(ctx context.Context, query, source, key string) (*CacheEntry, error) {
	var e CacheEntry
	err := db.pool.QueryRow(ctx, query, source, key).Scan(
		&e.Source, &e.Key, &e.Payload, &e.FetchedAt, &e.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// PutCacheEntry replaces any existing entry for the key with a fresh payload.
// Delete-then-insert rather than an upsert: concurrent writers at worst
// race-overwrite a single key, which self-heals on the next TTL cycle.
func (db *DB) PutCacheEntry(ctx context.Context, source, key string, payload []byte, ttl time.Duration) error {
	now := time.Now().UTC()

	if _, err := db.pool.Exec(ctx,
		`DELETE FROM cache_entries WHERE source = $1 AND cache_key = $2`,
		source, key,
	); err != nil {
		return err
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO cache_entries (source, cache_key, payload, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		source, key, payload, now, now.Add(ttl),
	)
	return err
}
