package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEntry_PutAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	key := uuid.NewString()

	require.NoError(t, db.PutCacheEntry(ctx, "registry", key, []byte(`{"n":1}`), time.Hour))

	entry, err := db.GetFreshCacheEntry(ctx, "registry", key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "registry", entry.Source)
	assert.Equal(t, key, entry.Key)
	assert.JSONEq(t, `{"n":1}`, string(entry.Payload))
	assert.True(t, entry.ExpiresAt.After(entry.FetchedAt))
}

func TestCacheEntry_ExpiredIsStaleOnly(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	key := uuid.NewString()

	require.NoError(t, db.PutCacheEntry(ctx, "registry", key, []byte(`{"n":2}`), -time.Minute))

	fresh, err := db.GetFreshCacheEntry(ctx, "registry", key)
	require.NoError(t, err)
	assert.Nil(t, fresh)

	stale, err := db.GetStaleCacheEntry(ctx, "registry", key)
	require.NoError(t, err)
	require.NotNil(t, stale)
	assert.JSONEq(t, `{"n":2}`, string(stale.Payload))
}

func TestCacheEntry_PutReplaces(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	key := uuid.NewString()

	require.NoError(t, db.PutCacheEntry(ctx, "labortime", key, []byte(`{"n":1}`), time.Hour))
	require.NoError(t, db.PutCacheEntry(ctx, "labortime", key, []byte(`{"n":2}`), time.Hour))

	entry, err := db.GetFreshCacheEntry(ctx, "labortime", key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.JSONEq(t, `{"n":2}`, string(entry.Payload))
}

func TestCacheEntry_SourcesIsolated(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	key := uuid.NewString()

	require.NoError(t, db.PutCacheEntry(ctx, "registry", key, []byte(`{}`), time.Hour))

	entry, err := db.GetFreshCacheEntry(ctx, "labortime", key)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCacheEntry_Missing(t *testing.T) {
	db := testDB(t)

	entry, err := db.GetFreshCacheEntry(context.Background(), "registry", uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, entry)
}
