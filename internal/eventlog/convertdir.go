package eventlog

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"bidskit/internal/logging"
	"bidskit/internal/report"
)

// ConvertDir converts every .log file under logDir into
// <base>_events.tsv inside outDir and appends one summary row per log to
// summaryPath (tab-separated, header written first).
func ConvertDir(logDir, outDir, summaryPath string, opts Options, logger *slog.Logger) (report.Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var summary report.Summary
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return summary, fmt.Errorf("read log directory: %w", err)
	}
	var logs []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logs = append(logs, entry.Name())
		}
	}
	sort.Strings(logs)
	if len(logs) == 0 {
		return summary, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return summary, fmt.Errorf("create output directory: %w", err)
	}

	summaryFile, err := os.Create(summaryPath)
	if err != nil {
		return summary, fmt.Errorf("create summary file: %w", err)
	}
	defer summaryFile.Close()
	writer := csv.NewWriter(summaryFile)
	writer.Comma = '\t'

	header := []string{"scenario_name", "log_file_time", "subject_id", "task_label", "pulse_count"}
	header = append(header, opts.searchStrings()...)
	if err := writer.Write(header); err != nil {
		return summary, err
	}

	for _, name := range logs {
		base := strings.TrimSuffix(name, ".log")
		eventsPath := filepath.Join(outDir, base+"_events.tsv")
		result, convErr := ConvertFile(filepath.Join(logDir, name), eventsPath, opts, logger)
		if convErr != nil {
			summary.AddErrored(name, convErr.Error())
			continue
		}
		row := []string{
			result.Scenario,
			result.LogTime,
			result.Subject,
			result.TaskLabel,
			strconv.Itoa(result.PulseCount),
		}
		for _, tc := range result.TrialCounts {
			row = append(row, strconv.Itoa(tc.Count))
		}
		if err := writer.Write(row); err != nil {
			return summary, err
		}
		summary.AddActed(name)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return summary, err
	}
	return summary, nil
}
