package match

import (
	"fmt"
	"log/slog"

	"bidskit/internal/entity"
	"bidskit/internal/logging"
	"bidskit/internal/refindex"
)

// Request names the scan a caller is looking for. Session and Run may be
// empty; Subject and Task are required.
type Request struct {
	Subject string
	Session string
	Task    string
	Run     string
}

// String renders the request in entity notation for error messages.
func (r Request) String() string {
	s := "sub-" + r.Subject
	if r.Session != "" {
		s += "_ses-" + r.Session
	}
	s += "_task-" + r.Task
	if r.Run != "" {
		s += "_run-" + r.Run
	}
	return s
}

// nonePlaceholder stands in for a run-less candidate in ambiguity reports.
const nonePlaceholder = "<none>"

// Resolve finds the reference scan for req. Run-bearing requests consult the
// exact index first; otherwise the task bucket decides: run-less requests
// succeed only against a unique candidate, run-bearing requests match on run
// and fall back to a unique run-less scan with a warning.
func Resolve(ix *refindex.Index, req Request, logger *slog.Logger) (refindex.Entry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.WithComponent(logger, "match")

	if req.Subject == "" || req.Task == "" {
		return refindex.Entry{}, fmt.Errorf("match: subject and task are required, got %q", req.String())
	}

	// The exact index only settles run-bearing requests. A run-less request
	// must go through the task bucket so that other runs of the same task
	// surface as an ambiguity instead of being shadowed by a run-less scan.
	if req.Run != "" {
		if entry, ok := ix.Lookup(refindex.NewKey(req.Subject, req.Session, req.Task, req.Run)); ok {
			return entry, nil
		}
	}

	candidates := ix.Candidates(refindex.NewTaskKey(req.Subject, req.Session, req.Task))
	if len(candidates) == 0 {
		return refindex.Entry{}, &NoReferenceFoundError{Request: req}
	}

	if req.Run == "" {
		if len(candidates) == 1 {
			return candidates[0].Entry, nil
		}
		runs := make([]string, 0, len(candidates))
		for _, c := range candidates {
			if c.Run == "" {
				runs = append(runs, nonePlaceholder)
			} else {
				runs = append(runs, c.Run)
			}
		}
		return refindex.Entry{}, &AmbiguousRunError{Request: req, Runs: runs}
	}

	want := entity.NormalizeNumeric(req.Run)
	var runless []refindex.Candidate
	for _, c := range candidates {
		if c.Run == "" {
			runless = append(runless, c)
			continue
		}
		if entity.NormalizeNumeric(c.Run) == want {
			return c.Entry, nil
		}
	}
	if len(runless) == 1 {
		log.Warn("requested run not found, falling back to the task's only run-less scan",
			logging.String(logging.FieldSubject, req.Subject),
			logging.String(logging.FieldSession, req.Session),
			logging.String(logging.FieldTask, req.Task),
			logging.String(logging.FieldRun, req.Run))
		return runless[0].Entry, nil
	}
	return refindex.Entry{}, &NoRunMatchError{Request: req}
}
