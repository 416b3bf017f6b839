package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/platinummonkey/axle/pkg/validation"
)

// Report is the durable result of one corpus check run.
type Report struct {
	RunID       string                  `json:"run_id"`
	Trigger     string                  `json:"trigger"`
	Source      string                  `json:"source"`
	StartedAt   time.Time               `json:"started_at"`
	FinishedAt  time.Time               `json:"finished_at"`
	Documents   int                     `json:"documents"`
	Services    int                     `json:"services"`
	Diagnostics int                     `json:"diagnostics"`
	JobIDs      int                     `json:"job_ids"`
	DTCIDs      int                     `json:"dtc_ids"`
	Violations  []*validation.Violation `json:"violations,omitempty"`
	Passed      bool                    `json:"passed"`
}

// Duration is the wall time the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary counts violations by kind, in taxonomy order for stable output.
func (r *Report) Summary() map[validation.Kind]int {
	summary := make(map[validation.Kind]int)
	for _, v := range r.Violations {
		summary[v.Kind]++
	}
	return summary
}

// Render writes the report in the requested format: "text", "json" or
// "github".
func Render(w io.Writer, format string, report *Report) error {
	switch format {
	case "", "text":
		return RenderText(w, report)
	case "json":
		return RenderJSON(w, report)
	case "github":
		return RenderGitHub(w, report)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or github)", format)
	}
}

// RenderText writes the human-readable report.
func RenderText(w io.Writer, report *Report) error {
	fmt.Fprintf(w, "Checked %d documents from %s in %s\n",
		report.Documents, report.Source, report.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "Registered: %d services, %d diagnostic entities (%d job ids, %d trouble codes)\n",
		report.Services, report.Diagnostics, report.JobIDs, report.DTCIDs)

	if len(report.Violations) > 0 {
		fmt.Fprintf(w, "\nViolations (%d):\n", len(report.Violations))
		for _, v := range report.Violations {
			fmt.Fprintf(w, "  %s: [%s] %s\n", v.Origin, v.Kind, v.Message)
		}

		summary := report.Summary()
		fmt.Fprintf(w, "\nSummary:\n")
		for _, kind := range validation.Kinds() {
			if n := summary[kind]; n > 0 {
				fmt.Fprintf(w, "  %-22s %d\n", kind, n)
			}
		}
		fmt.Fprintf(w, "\n✗ Corpus check failed\n")
		return nil
	}

	fmt.Fprintf(w, "\n✓ Corpus is consistent\n")
	return nil
}

// RenderJSON writes the full report as indented JSON.
func RenderJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// RenderGitHub writes GitHub Actions annotations, one per violation:
// ::error file={name}::[KIND] {message}
func RenderGitHub(w io.Writer, report *Report) error {
	for _, v := range report.Violations {
		fmt.Fprintf(w, "::error file=%s::[%s] %s\n", v.Origin, v.Kind, v.Message)
	}
	return nil
}
