package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/platinummonkey/axle/pkg/corpus"
)

// ErrNotFound is returned when no run matches the query.
var ErrNotFound = errors.New("run not found")

// RunSummary is the queryable slice of a stored run, without the full
// violation list.
type RunSummary struct {
	ID          string    `json:"id"`
	Trigger     string    `json:"trigger"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Documents   int       `json:"documents"`
	Services    int       `json:"services"`
	Diagnostics int       `json:"diagnostics"`
	Violations  int       `json:"violations"`
	Passed      bool      `json:"passed"`
}

// Store provides methods for persisting and querying check runs
type Store interface {
	// SaveRun persists a completed check run
	SaveRun(ctx context.Context, report *corpus.Report) error

	// GetRun retrieves a run's full report by ID
	GetRun(ctx context.Context, id string) (*corpus.Report, error)

	// LatestRun retrieves the most recently started run
	LatestRun(ctx context.Context) (*corpus.Report, error)

	// ListRuns retrieves run summaries, newest first
	ListRuns(ctx context.Context, limit, offset int) ([]*RunSummary, error)

	// DeleteRunsBefore removes runs started before the cutoff
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// HealthCheck verifies the store is reachable
	HealthCheck(ctx context.Context) error

	// Close releases the underlying connections
	Close() error
}

// DBStore implements Store on top of database/sql. The schema is portable
// between SQLite and PostgreSQL; placeholders use $N, which both drivers
// accept when the ordinals appear in order.
type DBStore struct {
	db *sql.DB
}

// NewDBStore wraps an open database handle and ensures the schema exists.
func NewDBStore(db *sql.DB) (*DBStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	store := &DBStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to ensure check_runs table: %w", err)
	}
	return store, nil
}

// ensureSchema creates the check_runs table if it doesn't exist. The trigger
// column is named triggered_by because TRIGGER is reserved in PostgreSQL.
func (s *DBStore) ensureSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS check_runs (
		id TEXT PRIMARY KEY,
		triggered_by TEXT NOT NULL,
		source TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		documents INTEGER NOT NULL,
		services INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL,
		violations INTEGER NOT NULL,
		passed BOOLEAN NOT NULL,
		report TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_check_runs_started_at ON check_runs(started_at DESC);
	`

	_, err := s.db.Exec(query)
	return err
}

// SaveRun persists a completed check run
func (s *DBStore) SaveRun(ctx context.Context, report *corpus.Report) error {
	if report.RunID == "" {
		return fmt.Errorf("report has no run id")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO check_runs (
			id, triggered_by, source,
			started_at, finished_at,
			documents, services, diagnostics, violations,
			passed, report
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.db.ExecContext(ctx, query,
		report.RunID, report.Trigger, report.Source,
		report.StartedAt.UTC(), report.FinishedAt.UTC(),
		report.Documents, report.Services, report.Diagnostics, len(report.Violations),
		report.Passed, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert check run: %w", err)
	}
	return nil
}

// GetRun retrieves a run's full report by ID
func (s *DBStore) GetRun(ctx context.Context, id string) (*corpus.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT report FROM check_runs WHERE id = $1", id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query check run: %w", err)
	}
	return unmarshalReport(payload)
}

// LatestRun retrieves the most recently started run
func (s *DBStore) LatestRun(ctx context.Context) (*corpus.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT report FROM check_runs ORDER BY started_at DESC LIMIT 1",
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return unmarshalReport(payload)
}

// ListRuns retrieves run summaries, newest first
func (s *DBStore) ListRuns(ctx context.Context, limit, offset int) ([]*RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, triggered_by, source,
		       started_at, finished_at,
		       documents, services, diagnostics, violations, passed
		FROM check_runs
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list check runs: %w", err)
	}
	defer rows.Close()

	var summaries []*RunSummary
	for rows.Next() {
		var summary RunSummary
		if err := rows.Scan(
			&summary.ID, &summary.Trigger, &summary.Source,
			&summary.StartedAt, &summary.FinishedAt,
			&summary.Documents, &summary.Services, &summary.Diagnostics,
			&summary.Violations, &summary.Passed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan check run: %w", err)
		}
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check runs: %w", err)
	}
	return summaries, nil
}

// DeleteRunsBefore removes runs started before the cutoff
func (s *DBStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM check_runs WHERE started_at < $1", cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete check runs: %w", err)
	}
	return result.RowsAffected()
}

// HealthCheck verifies the store is reachable
func (s *DBStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connections
func (s *DBStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for health checks.
func (s *DBStore) DB() *sql.DB {
	return s.db
}

func unmarshalReport(payload string) (*corpus.Report, error) {
	var report corpus.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored report: %w", err)
	}
	return &report, nil
}
