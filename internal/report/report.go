// Package report accumulates per-file outcomes for batch commands. Commands
// collect every result instead of stopping at the first failure, then render
// one summary at the end.
package report

// Reason records why a file was skipped or failed.
type Reason struct {
	Path   string
	Reason string
}

// Summary is the outcome of one batch run.
type Summary struct {
	Acted   []string
	Skipped []Reason
	Errored []Reason
}

// AddActed records a successfully processed path.
func (s *Summary) AddActed(path string) {
	s.Acted = append(s.Acted, path)
}

// AddSkipped records a path that was deliberately left alone.
func (s *Summary) AddSkipped(path, reason string) {
	s.Skipped = append(s.Skipped, Reason{Path: path, Reason: reason})
}

// AddErrored records a path whose processing failed.
func (s *Summary) AddErrored(path, reason string) {
	s.Errored = append(s.Errored, Reason{Path: path, Reason: reason})
}

// ActedCount returns the number of processed paths.
func (s *Summary) ActedCount() int { return len(s.Acted) }

// SkippedCount returns the number of skipped paths.
func (s *Summary) SkippedCount() int { return len(s.Skipped) }

// ErroredCount returns the number of failed paths.
func (s *Summary) ErroredCount() int { return len(s.Errored) }

// HasErrors reports whether any path failed.
func (s *Summary) HasErrors() bool { return len(s.Errored) > 0 }

// Merge folds another summary into this one.
func (s *Summary) Merge(other Summary) {
	s.Acted = append(s.Acted, other.Acted...)
	s.Skipped = append(s.Skipped, other.Skipped...)
	s.Errored = append(s.Errored, other.Errored...)
}
