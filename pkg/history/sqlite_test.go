package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/axle/pkg/corpus"
	"github.com/platinummonkey/axle/pkg/validation"
)

func newSQLiteStore(t *testing.T) *DBStore {
	t.Helper()

	store, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sqliteReport(id string, started time.Time, violations ...*validation.Violation) *corpus.Report {
	return &corpus.Report{
		RunID:       id,
		Trigger:     "cli",
		Source:      "./someip + ./diag",
		StartedAt:   started,
		FinishedAt:  started.Add(time.Second),
		Documents:   4,
		Services:    3,
		Diagnostics: 1,
		JobIDs:      2,
		DTCIDs:      5,
		Violations:  violations,
		Passed:      len(violations) == 0,
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.ErrorContains(t, err, "unsupported history driver")
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	violation := &validation.Violation{
		Kind:           validation.KindDuplicateJobID,
		ID:             514,
		Name:           "ChassisDiag",
		Conflict:       "EngineDiag",
		Origin:         "diag/chassis.json",
		ConflictOrigin: "diag/engine.json",
		Message:        `diagnostic job id 514 claimed by "ChassisDiag" is already registered to "EngineDiag" (diag/engine.json)`,
	}
	report := sqliteReport("run-a", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), violation)

	require.NoError(t, store.SaveRun(ctx, report))

	got, err := store.GetRun(ctx, "run-a")
	require.NoError(t, err)

	assert.Equal(t, report.RunID, got.RunID)
	assert.Equal(t, report.Trigger, got.Trigger)
	assert.Equal(t, report.Documents, got.Documents)
	assert.Equal(t, report.DTCIDs, got.DTCIDs)
	assert.False(t, got.Passed)
	assert.True(t, report.StartedAt.Equal(got.StartedAt))
	require.Len(t, got.Violations, 1)
	assert.Equal(t, violation, got.Violations[0])
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.LatestRun(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteLatestAndList(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		report := sqliteReport(id, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.SaveRun(ctx, report))
	}

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-3", latest.RunID)

	summaries, err := store.ListRuns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "run-3", summaries[0].ID)
	assert.Equal(t, "run-2", summaries[1].ID)
	assert.Equal(t, "run-1", summaries[2].ID)

	page, err := store.ListRuns(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "run-2", page[0].ID)
}

func TestSQLiteDuplicateRunIDRejected(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	report := sqliteReport("run-a", time.Now().UTC())
	require.NoError(t, store.SaveRun(ctx, report))
	assert.Error(t, store.SaveRun(ctx, report), "primary key should reject a duplicate run id")
}

func TestSQLiteDeleteRunsBefore(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, sqliteReport("old-1", base.AddDate(0, -4, 0))))
	require.NoError(t, store.SaveRun(ctx, sqliteReport("old-2", base.AddDate(0, -2, 0))))
	require.NoError(t, store.SaveRun(ctx, sqliteReport("new-1", base)))

	deleted, err := store.DeleteRunsBefore(ctx, base.AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	summaries, err := store.ListRuns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "new-1", summaries[0].ID)
}

func TestSQLiteHealthCheck(t *testing.T) {
	store := newSQLiteStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}
