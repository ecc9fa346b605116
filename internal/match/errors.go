package match

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks against the typed failures below.
var (
	ErrNoReferenceFound = errors.New("no reference scan found")
	ErrAmbiguousRun     = errors.New("ambiguous run")
	ErrNoRunMatch       = errors.New("no matching run")
)

// NoReferenceFoundError reports that the task bucket for the request is
// empty: the dataset holds no reference scan for this subject, session and
// task at all.
type NoReferenceFoundError struct {
	Request Request
}

func (e *NoReferenceFoundError) Error() string {
	return fmt.Sprintf("no reference scan for %s", e.Request)
}

func (e *NoReferenceFoundError) Unwrap() error { return ErrNoReferenceFound }

// AmbiguousRunError reports that a run-less request matched several scans.
// Runs lists every candidate run label; run-less scans appear as "<none>".
type AmbiguousRunError struct {
	Request Request
	Runs    []string
}

func (e *AmbiguousRunError) Error() string {
	return fmt.Sprintf("%s matches several runs (%s); add a run entity to disambiguate",
		e.Request, strings.Join(e.Runs, ", "))
}

func (e *AmbiguousRunError) Unwrap() error { return ErrAmbiguousRun }

// NoRunMatchError reports that the requested run exists in no scan of the
// task and no unique run-less fallback was available.
type NoRunMatchError struct {
	Request Request
}

func (e *NoRunMatchError) Error() string {
	return fmt.Sprintf("no reference scan matches run %q for %s", e.Request.Run, e.Request)
}

func (e *NoRunMatchError) Unwrap() error { return ErrNoRunMatch }
