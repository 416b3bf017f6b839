package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/platinummonkey/axle/pkg/corpus"
	"github.com/platinummonkey/axle/pkg/history"
)

// newHistoryCommand creates a new history command
func newHistoryCommand() *Command {
	fs := flag.NewFlagSet("history", flag.ExitOnError)

	var (
		driver = fs.String("driver", "sqlite3", "History database driver: sqlite3, postgres")
		dsn    = fs.String("db", "axle.db", "History database DSN (file path for sqlite3)")
		limit  = fs.Int("limit", 10, "Number of runs to list")
		runID  = fs.String("id", "", "Show one run in full; \"latest\" selects the newest")
		format = fs.String("format", "text", "Output format for -id: text, json, github")
	)

	return &Command{
		Name:        "history",
		Description: "Browse recorded check runs",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			return runHistory(*driver, *dsn, *runID, *format, *limit)
		},
	}
}

func runHistory(driver, dsn, runID, format string, limit int) error {
	store, err := history.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	if runID != "" {
		var report *corpus.Report
		if runID == "latest" {
			report, err = store.LatestRun(ctx)
		} else {
			report, err = store.GetRun(ctx, runID)
		}
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("no such run: %s", runID)
		}
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		return corpus.Render(os.Stdout, format, report)
	}

	runs, err := store.ListRuns(ctx, limit, 0)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-38s %-20s %-8s %6s %10s  %s\n",
		"RUN ID", "STARTED", "TRIGGER", "DOCS", "VIOLATIONS", "RESULT")
	for _, run := range runs {
		result := "passed"
		if !run.Passed {
			result = "FAILED"
		}
		fmt.Printf("%-38s %-20s %-8s %6d %10d  %s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Trigger,
			run.Documents,
			run.Violations,
			result,
		)
	}
	return nil
}
