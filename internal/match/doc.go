// Package match resolves an importable file against the reference index
// using a tiered fallback policy: an exact subject/session/task/run lookup
// first, then task-bucket enumeration for run-less requests, then a single
// run-less scan as last resort for run-bearing requests. Failures are typed
// so callers can report why no reference matched.
package match
