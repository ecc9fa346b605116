// Package renamer plans entity-aware batch renames. A strictly ordered
// mutation pipeline transforms each base name: raw substring removals, raw
// replacements, re-parse, entity removals, entity insertions at canonical
// position, rebuild, normalize, end-to-end re-validation. Files sharing one
// base name (data file plus sidecars) are grouped and renamed as a unit, and
// unchanged names are excluded from the plan.
//
// Mutation lists are validated before any file is examined: a protected or
// blank mutation aborts the whole run, since it would invalidate every file.
package renamer
