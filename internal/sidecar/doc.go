// Package sidecar edits the JSON descriptor files accompanying imaging data.
// It is deliberately entity-unaware: a sidecar is a flat string-keyed value
// store, and this package only adds, removes, rewrites and inspects keys.
// BIDS knowledge is limited to scoping (session and modality directories)
// and to the template and compliance tables, which encode per-modality field
// expectations.
//
// Every write renames the previous file to a .json.bak sibling first, unless
// backups are disabled.
package sidecar
