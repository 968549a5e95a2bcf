package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/crankshaft/internal/database"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// fakeStore keeps one fresh and one stale entry per source/key.
type fakeStore struct {
	fresh    map[string]*database.CacheEntry
	stale    map[string]*database.CacheEntry
	puts     []string
	freshErr error
	putErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		fresh: make(map[string]*database.CacheEntry),
		stale: make(map[string]*database.CacheEntry),
	}
}

func entryKey(source, key string) string { return source + "/" + key }

func (s *fakeStore) GetFreshCacheEntry(ctx context.Context, source, key string) (*database.CacheEntry, error) {
	if s.freshErr != nil {
		return nil, s.freshErr
	}
	return s.fresh[entryKey(source, key)], nil
}

func (s *fakeStore) GetStaleCacheEntry(ctx context.Context, source, key string) (*database.CacheEntry, error) {
	return s.stale[entryKey(source, key)], nil
}

func (s *fakeStore) PutCacheEntry(ctx context.Context, source, key string, data []byte, ttl time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts = append(s.puts, entryKey(source, key))
	s.fresh[entryKey(source, key)] = &database.CacheEntry{
		Source: source, Key: key, Payload: data,
		FetchedAt: time.Now(), ExpiresAt: time.Now().Add(ttl),
	}
	return nil
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestGet_FreshHitSkipsFetch(t *testing.T) {
	store := newFakeStore()
	store.fresh[entryKey("registry", "honda|civic")] = &database.CacheEntry{
		Payload: mustMarshal(t, payload{Name: "cached", Count: 1}),
	}

	fetchCalled := false
	m := New(store, "registry", time.Hour, func(ctx context.Context, key string) (payload, error) {
		fetchCalled = true
		return payload{Name: "live"}, nil
	})

	res := m.Get(context.Background(), "honda|civic")
	assert.True(t, res.Cached)
	assert.False(t, res.Stale)
	assert.Equal(t, "cached", res.Value.Name)
	assert.False(t, fetchCalled)
}

func TestGet_MissFetchesAndWrites(t *testing.T) {
	store := newFakeStore()
	m := New(store, "registry", time.Hour, func(ctx context.Context, key string) (payload, error) {
		return payload{Name: "live", Count: 7}, nil
	})

	res := m.Get(context.Background(), "honda|civic")
	assert.False(t, res.Cached)
	assert.False(t, res.Stale)
	assert.Equal(t, "live", res.Value.Name)
	assert.Equal(t, []string{"registry/honda|civic"}, store.puts)
}

func TestGet_FetchFailureServesStale(t *testing.T) {
	store := newFakeStore()
	store.stale[entryKey("registry", "honda|civic")] = &database.CacheEntry{
		Payload: mustMarshal(t, payload{Name: "expired", Count: 2}),
	}

	m := New(store, "registry", time.Hour, func(ctx context.Context, key string) (payload, error) {
		return payload{}, fmt.Errorf("upstream down")
	})

	res := m.Get(context.Background(), "honda|civic")
	assert.True(t, res.Cached)
	assert.True(t, res.Stale)
	assert.Equal(t, "expired", res.Value.Name)
}

func TestGet_FetchFailureNoStaleReturnsZero(t *testing.T) {
	store := newFakeStore()
	m := New(store, "registry", time.Hour, func(ctx context.Context, key string) (payload, error) {
		return payload{}, fmt.Errorf("upstream down")
	})

	res := m.Get(context.Background(), "honda|civic")
	assert.False(t, res.Cached)
	assert.False(t, res.Stale)
	assert.Equal(t, payload{}, res.Value)
}

func TestGet_StoreReadFailureTreatedAsMiss(t *testing.T) {
	store := newFakeStore()
	store.freshErr = fmt.Errorf("connection refused")

	m := New(store, "registry", time.Hour, func(ctx context.Context, key string) (payload, error) {
		return payload{Name: "live"}, nil
	})

	res := m.Get(context.Background(), "honda|civic")
	assert.False(t, res.Cached)
	assert.Equal(t, "live", res.Value.Name)
}

func TestGet_WriteFailureStillReturnsValue(t *testing.T) {
	store := newFakeStore()
	store.putErr = fmt.Errorf("disk full")

	m := New(store, "registry", time.Hour, func(ctx context.Context, key string) (payload, error) {
		return payload{Name: "live"}, nil
	})

	res := m.Get(context.Background(), "honda|civic")
	assert.Equal(t, "live", res.Value.Name)
}

func TestGet_CorruptFreshEntryRefetches(t *testing.T) {
	store := newFakeStore()
	store.fresh[entryKey("registry", "honda|civic")] = &database.CacheEntry{
		Payload: []byte("not json"),
	}

	m := New(store, "registry", time.Hour, func(ctx context.Context, key string) (payload, error) {
		return payload{Name: "live"}, nil
	})

	res := m.Get(context.Background(), "honda|civic")
	assert.False(t, res.Cached)
	assert.Equal(t, "live", res.Value.Name)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "honda|civic|2015", Key("Honda", "Civic", "2015"))
	assert.Equal(t, "honda|civic", Key(" Honda ", " CIVIC"))
	assert.Equal(t, "", Key())
}

func TestTTLConstants(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, RegistryTTL)
	assert.Equal(t, 90*24*time.Hour, LaborTimeTTL)
}
