// Package entity parses and rebuilds BIDS filenames.
//
// A BIDS base name is an ordered sequence of key-value entities followed by a
// suffix: `sub-01_ses-02_task-rest_run-1_bold`. The package owns the canonical
// entity ordering, the allowed character set for values and suffixes, and the
// normalization rules that keep rebuilt names re-parseable. Every other
// component that touches filenames (reference indexing, matching, renaming,
// importing) goes through this codec rather than splitting strings itself.
//
// The round-trip contract is Build(Parse(name)) == Normalize(name) for any
// name that parses successfully.
package entity
