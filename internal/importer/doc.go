// Package importer copies auxiliary acquisition files (behavioral events,
// physiological recordings) from a staging directory into the dataset,
// renamed after the reference scan each one matches. Every source file is
// classified independently: unmatched, undersized or already-imported files
// are recorded with a reason and never abort the batch.
package importer
