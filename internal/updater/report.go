package updater

import (
	"fmt"
	"strings"
	"time"
)

// Failure records one resource that could not be enriched during a run.
type Failure struct {
	URL    string
	Reason string
}

// Report summarizes one reconciliation pass.
type Report struct {
	Discovered int
	Updated    int // entities touched by enrichment
	Skipped    int // cache hits and out-of-scope resources reused as-is
	Failed     int
	Failures   []Failure
	Diff       string // structural diff summary against the previous state
	DryRun     bool
	Duration   time.Duration
}

// Render formats the report for terminal output.
func (r *Report) Render() string {
	var b strings.Builder
	if r.DryRun {
		b.WriteString("Dry run; no state written.\n")
	}
	fmt.Fprintf(&b, "Discovered %d resources, updated %d entities, skipped %d, failed %d in %s.\n",
		r.Discovered, r.Updated, r.Skipped, r.Failed, r.Duration.Round(time.Millisecond))
	if r.Diff != "" {
		b.WriteString(r.Diff)
		if !strings.HasSuffix(r.Diff, "\n") {
			b.WriteString("\n")
		}
	}
	for _, failure := range r.Failures {
		fmt.Fprintf(&b, "  failed %s: %s\n", failure.URL, failure.Reason)
	}
	return b.String()
}
