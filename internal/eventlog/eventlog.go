package eventlog

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bidskit/internal/logging"
)

// Column layout of a Presentation event table.
const (
	colEventType = 2
	colCode      = 3
	colTime      = 4
	colDuration  = 7
)

// ticksPerSecond converts Presentation timestamps (0.1 ms units) to seconds.
const ticksPerSecond = 10000

// DefaultSearchStrings are the trial-type markers looked for in the code
// column when the caller configures none.
var DefaultSearchStrings = []string{"Fixation", "Rest", "Response"}

// Options controls one conversion.
type Options struct {
	// StartEventCode anchors time zero at the first event whose code
	// contains it. When empty or not found, the first Pulse event anchors.
	StartEventCode string
	// SearchStrings classify rows into trial types; the first match wins.
	SearchStrings []string
}

func (o Options) searchStrings() []string {
	if len(o.SearchStrings) == 0 {
		return DefaultSearchStrings
	}
	return o.SearchStrings
}

// TrialCount is the number of rows classified under one trial type.
type TrialCount struct {
	TrialType string
	Count     int
}

// Result summarizes one converted log.
type Result struct {
	Scenario    string
	LogTime     string
	Subject     string
	TaskLabel   string
	PulseCount  int
	TrialCounts []TrialCount
	Rows        int
}

// Event is one emitted events-table row.
type Event struct {
	Onset       float64
	Duration    float64
	TrialType   string
	Description string
}

// ConvertFile parses logPath and writes a BIDS events table to eventsPath.
func ConvertFile(logPath, eventsPath string, opts Options, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.WithComponent(logger, "eventlog")

	rows, err := readLog(logPath)
	if err != nil {
		return Result{}, err
	}
	result, events, err := convert(rows, opts)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", logPath, err)
	}
	if err := writeEvents(eventsPath, events); err != nil {
		return Result{}, err
	}
	log.Info("converted stimulus log",
		logging.String(logging.FieldSource, logPath),
		logging.String(logging.FieldDest, eventsPath),
		logging.Int(logging.FieldCount, len(events)))
	result.Rows = len(events)
	return result, nil
}

func readLog(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return rows, nil
}

func convert(rows [][]string, opts Options) (Result, []Event, error) {
	var result Result
	result.Scenario = bannerValue(rows, 0, "Scenario - ")
	result.LogTime = bannerValue(rows, 1, "Logfile written - ")
	result.TaskLabel = TaskLabel(result.Scenario)

	// Event rows: more than one column and not the column header.
	var eventRows [][]string
	for _, row := range rows {
		if len(row) > 0 && strings.HasPrefix(row[0], "Subject") {
			continue
		}
		if len(row) > 1 {
			eventRows = append(eventRows, row)
		}
	}
	if len(eventRows) == 0 {
		return result, nil, fmt.Errorf("log contains no event rows")
	}
	result.Subject = eventRows[0][0]

	start, err := findStart(eventRows, opts.StartEventCode)
	if err != nil {
		return result, nil, err
	}

	search := opts.searchStrings()
	counts := make(map[string]int, len(search))
	var events []Event
	for _, row := range eventRows {
		if len(row) <= colCode {
			continue
		}
		eventType := row[colEventType]
		if eventType == "Pulse" {
			result.PulseCount++
			continue
		}
		if eventType != "Picture" && eventType != "Response" {
			continue
		}
		code := row[colCode]
		for _, marker := range search {
			if !strings.Contains(code, marker) {
				continue
			}
			ticks, parseErr := strconv.Atoi(row[colTime])
			if parseErr != nil {
				return result, nil, fmt.Errorf("bad timestamp %q: %w", row[colTime], parseErr)
			}
			duration := 0.0
			if eventType == "Picture" && len(row) > colDuration {
				dticks, dErr := strconv.Atoi(row[colDuration])
				if dErr != nil {
					return result, nil, fmt.Errorf("bad duration %q: %w", row[colDuration], dErr)
				}
				duration = float64(dticks) / ticksPerSecond
			}
			events = append(events, Event{
				Onset:       float64(ticks-start) / ticksPerSecond,
				Duration:    duration,
				TrialType:   marker,
				Description: cleanDescription(code, marker),
			})
			counts[marker]++
			break
		}
	}

	for _, marker := range search {
		result.TrialCounts = append(result.TrialCounts, TrialCount{TrialType: marker, Count: counts[marker]})
	}
	return result, events, nil
}

// findStart locates the anchor timestamp: the first event whose code
// contains startCode, else the first Pulse event, else zero.
func findStart(rows [][]string, startCode string) (int, error) {
	if startCode != "" {
		for _, row := range rows {
			if len(row) > colTime && strings.Contains(row[colCode], startCode) {
				return strconv.Atoi(row[colTime])
			}
		}
	}
	for _, row := range rows {
		if len(row) > colTime && row[colEventType] == "Pulse" {
			return strconv.Atoi(row[colTime])
		}
	}
	return 0, nil
}

func bannerValue(rows [][]string, line int, prefix string) string {
	if len(rows) <= line || len(rows[line]) == 0 {
		return "Unknown"
	}
	if _, after, found := strings.Cut(rows[line][0], prefix); found {
		return after
	}
	return "Unknown"
}

// cleanDescription strips the trial-type marker and leftover separators from
// a code value.
func cleanDescription(code, marker string) string {
	out := strings.ReplaceAll(code, marker, "")
	out = strings.ReplaceAll(out, "__", "")
	return strings.Trim(out, "_")
}

func writeEvents(path string, events []Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(f)
	writer.Comma = '\t'

	if err := writer.Write([]string{"onset", "duration", "trial_type", "item_description"}); err != nil {
		f.Close()
		return err
	}
	for _, e := range events {
		record := []string{
			strconv.FormatFloat(e.Onset, 'f', 3, 64),
			strconv.FormatFloat(e.Duration, 'f', 3, 64),
			e.TrialType,
			e.Description,
		}
		if err := writer.Write(record); err != nil {
			f.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// TaskLabel derives an alphanumeric task entity value from a scenario name:
// each word is title-cased and joined, everything else dropped.
func TaskLabel(scenario string) string {
	if scenario == "" || scenario == "Unknown" {
		return ""
	}
	titler := cases.Title(language.Und)
	fields := strings.FieldsFunc(scenario, func(r rune) bool {
		return !isAlphanumeric(r)
	})
	var b strings.Builder
	for _, field := range fields {
		b.WriteString(titler.String(strings.ToLower(field)))
	}
	return b.String()
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
