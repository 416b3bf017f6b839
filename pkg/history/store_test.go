package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/axle/pkg/corpus"
	"github.com/platinummonkey/axle/pkg/validation"
)

func newMockStore(t *testing.T) (*DBStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS check_runs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewDBStore(db)
	require.NoError(t, err)
	return store, mock
}

func testReport() *corpus.Report {
	started := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	return &corpus.Report{
		RunID:      "run-1",
		Trigger:    "schedule",
		Source:     "./someip + ./diag",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Documents:  3,
		Services:   2,
		Violations: []*validation.Violation{
			{
				Kind:    validation.KindDuplicateServiceID,
				ID:      4097,
				Origin:  "someip/b.json",
				Message: "dup",
			},
		},
		Passed: false,
	}
}

func TestNewDBStore(t *testing.T) {
	store, mock := newMockStore(t)

	assert.NotNil(t, store)
	assert.NotNil(t, store.DB())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDBStoreRequiresDB(t *testing.T) {
	_, err := NewDBStore(nil)
	assert.Error(t, err)
}

func TestDBStore_SaveRun(t *testing.T) {
	store, mock := newMockStore(t)
	report := testReport()

	mock.ExpectExec("INSERT INTO check_runs").
		WithArgs(
			report.RunID, report.Trigger, report.Source,
			report.StartedAt, report.FinishedAt,
			report.Documents, report.Services, report.Diagnostics, len(report.Violations),
			report.Passed, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveRun(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_SaveRunRequiresID(t *testing.T) {
	store, _ := newMockStore(t)

	report := testReport()
	report.RunID = ""

	assert.Error(t, store.SaveRun(context.Background(), report))
}

func TestDBStore_GetRunNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT report FROM check_runs WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"report"}))

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_GetRunCorruptPayload(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT report FROM check_runs WHERE id").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"report"}).AddRow("{not json"))

	_, err := store.GetRun(context.Background(), "run-1")
	assert.ErrorContains(t, err, "unmarshal")
}

func TestDBStore_LatestRunNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT report FROM check_runs ORDER BY started_at DESC LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"report"}))

	_, err := store.LatestRun(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDBStore_ListRuns(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "triggered_by", "source",
		"started_at", "finished_at",
		"documents", "services", "diagnostics", "violations", "passed",
	}).
		AddRow("run-2", "api", "memory:req", now, now.Add(time.Second), 5, 3, 1, 0, true).
		AddRow("run-1", "schedule", "./someip + ./diag", now.Add(-time.Hour), now.Add(-time.Hour+time.Second), 5, 3, 1, 2, false)

	mock.ExpectQuery("SELECT id, triggered_by, source").
		WithArgs(20, 0).
		WillReturnRows(rows)

	summaries, err := store.ListRuns(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "run-2", summaries[0].ID)
	assert.Equal(t, "api", summaries[0].Trigger)
	assert.True(t, summaries[0].Passed)
	assert.Equal(t, 2, summaries[1].Violations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_ListRunsDefaultsLimit(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, triggered_by, source").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "triggered_by", "source",
			"started_at", "finished_at",
			"documents", "services", "diagnostics", "violations", "passed",
		}))

	summaries, err := store.ListRuns(context.Background(), 0, -3)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_DeleteRunsBefore(t *testing.T) {
	store, mock := newMockStore(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM check_runs WHERE started_at").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := store.DeleteRunsBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestDBStore_SaveRunPropagatesDBError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO check_runs").
		WillReturnError(errors.New("disk full"))

	err := store.SaveRun(context.Background(), testReport())
	assert.ErrorContains(t, err, "disk full")
}
