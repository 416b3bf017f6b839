// Package history persists corpus check runs so violations can be tracked over time.
//
// # Overview
//
// Every check run produces a corpus.Report. The daemon stores the full report
// plus a queryable summary row in a SQL database: SQLite for single-box
// deployments, PostgreSQL for shared ones. Both are served by the same
// DBStore because every statement sticks to portable SQL with $N
// placeholders.
//
// # Usage
//
// Open a store:
//
//	store, err := history.Open("sqlite3", "/var/lib/axle/history.db")
//	if err != nil { ... }
//	defer store.Close()
//
// Persist and query runs:
//
//	err = store.SaveRun(ctx, report)
//	latest, err := store.LatestRun(ctx)
//	runs, err := store.ListRuns(ctx, 20, 0)
//
// Retention:
//
//	deleted, err := store.DeleteRunsBefore(ctx, time.Now().AddDate(0, 0, -90))
//
// # Related Packages
//
//   - pkg/corpus: produces the reports stored here
//   - pkg/api: exposes run history over HTTP
package history
