//go:build integration

package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/platinummonkey/axle/pkg/validation"
)

// setupPostgresStore starts a PostgreSQL container and opens a store on it.
func setupPostgresStore(t *testing.T) *DBStore {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("axle_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := postgresContainer.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestPostgresRoundTrip(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	violation := &validation.Violation{
		Kind:    validation.KindDuplicateServiceID,
		ID:      4097,
		Name:    "LegacyEngine",
		Origin:  "someip/legacy.json",
		Message: "dup service id",
	}
	report := sqliteReport("pg-run-1", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), violation)

	require.NoError(t, store.SaveRun(ctx, report))

	got, err := store.GetRun(ctx, "pg-run-1")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, got.RunID)
	require.Len(t, got.Violations, 1)
	assert.Equal(t, violation, got.Violations[0])

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pg-run-1", latest.RunID)
}

func TestPostgresListAndRetention(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, sqliteReport("pg-old", base.AddDate(0, -3, 0))))
	require.NoError(t, store.SaveRun(ctx, sqliteReport("pg-new", base)))

	summaries, err := store.ListRuns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "pg-new", summaries[0].ID)

	deleted, err := store.DeleteRunsBefore(ctx, base.AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	assert.NoError(t, store.HealthCheck(ctx))
}
