// Package logging assembles the structured slog loggers used across bidskit.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes typed attribute constructors so components emit data
// with the same shape. Dry-run previews log through the same pipeline as live
// runs, which is what guarantees identical ordering between the two modes.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
