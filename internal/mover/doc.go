// Package mover executes planned file moves against a dataset root. Every
// batch is collision-checked up front and either runs in full or not at all;
// live runs take a dataset-level lock and can snapshot sources into a
// per-invocation backup directory first. Dry runs walk the identical code
// path with the filesystem writes elided.
package mover
