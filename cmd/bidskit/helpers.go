package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"bidskit/internal/entity"
	"bidskit/internal/renamer"
	"bidskit/internal/report"
)

// parsePairs parses repeated key=value flags into entity pairs, keeping
// flag order.
func parsePairs(values []string) ([]entity.Pair, error) {
	pairs := make([]entity.Pair, 0, len(values))
	for _, raw := range values {
		key, value, found := strings.Cut(raw, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid entity assignment %q, expected key=value", raw)
		}
		pairs = append(pairs, entity.Pair{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return pairs, nil
}

// parseReplacements parses repeated old=new flags.
func parseReplacements(values []string) ([]renamer.Replacement, error) {
	out := make([]renamer.Replacement, 0, len(values))
	for _, raw := range values {
		from, to, found := strings.Cut(raw, "=")
		if !found || from == "" {
			return nil, fmt.Errorf("invalid replacement %q, expected old=new", raw)
		}
		out = append(out, renamer.Replacement{Old: from, New: to})
	}
	return out, nil
}

// printSummary renders the acted/skipped/errored tally plus per-file reasons.
func printSummary(out io.Writer, summary report.Summary, dryRun bool) {
	rows := [][]string{
		{"processed", strconv.Itoa(summary.ActedCount())},
		{"skipped", strconv.Itoa(summary.SkippedCount())},
		{"errored", strconv.Itoa(summary.ErroredCount())},
	}
	fmt.Fprintln(out, renderTable([]string{"Result", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	if dryRun {
		fmt.Fprintln(out, "Dry run: no files were modified.")
	}

	if summary.SkippedCount() > 0 {
		fmt.Fprintln(out, renderTable([]string{"Skipped", "Reason"}, reasonRows(summary.Skipped), nil))
	}
	if summary.ErroredCount() > 0 {
		fmt.Fprintln(out, renderTable([]string{"Errored", "Reason"}, reasonRows(summary.Errored), nil))
	}
}

func reasonRows(reasons []report.Reason) [][]string {
	rows := make([][]string, 0, len(reasons))
	for _, r := range reasons {
		rows = append(rows, []string{r.Path, r.Reason})
	}
	return rows
}
