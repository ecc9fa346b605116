// Package refindex walks a BIDS dataset and builds in-memory lookup tables
// over its reference scans. Two views are kept: an exact index keyed on
// subject, session, task and run, and a task-bucketed index that lists every
// run of a task so run-less queries can fall back to candidate enumeration.
//
// Indexes are rebuilt per invocation; nothing is persisted between runs.
package refindex
