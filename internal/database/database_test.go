package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testDB returns a migrated database for integration tests. It prefers an
// externally provided DATABASE_URL; otherwise it starts a throwaway
// pgvector-enabled Postgres container.
func testDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		pgContainer, err := postgres.Run(ctx,
			"pgvector/pgvector:pg16",
			postgres.WithDatabase("crankshaft_test"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, pgContainer.Terminate(ctx)) })

		connStr, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	require.NoError(t, Migrate(connStr))

	db, err := New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser inserts a user with a unique auth ID.
func createTestUser(t *testing.T, db *DB) *User {
	t.Helper()
	authID := "auth|" + uuid.NewString()
	user, err := db.CreateUser(context.Background(), authID, authID+"@example.com")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteUser(context.Background(), user.ID) })
	return user
}

// createTestShop inserts a shop owned by a fresh user.
func createTestShop(t *testing.T, db *DB) *Shop {
	t.Helper()
	user := createTestUser(t, db)
	shop, err := db.CreateShop(context.Background(), "Test Garage", user.ID)
	require.NoError(t, err)
	return shop
}

// uniqueFaultCode avoids collisions between tests sharing a DATABASE_URL.
func uniqueFaultCode() string {
	return fmt.Sprintf("T%s", uuid.NewString()[:8])
}

// testEmbedding builds a 1536-dimension unit-ish vector dominated by one
// component, so cosine ordering in tests is predictable.
func testEmbedding(dominant int) []float32 {
	vec := make([]float32, 1536)
	for i := range vec {
		vec[i] = 0.001
	}
	vec[dominant] = 1
	return vec
}
