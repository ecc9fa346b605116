package logging

import (
	"context"
	"log/slog"
)

// Shared attribute keys. Components use these so log output stays greppable.
const (
	FieldComponent = "component"
	FieldSubject   = "subject"
	FieldSession   = "session"
	FieldTask      = "task"
	FieldRun       = "run"
	FieldPath      = "path"
	FieldSource    = "source"
	FieldDest      = "dest"
	FieldRunID     = "run_id"
	FieldDryRun    = "dry_run"
	FieldCount     = "count"
	FieldError     = "error"
)

// String builds a string attribute.
func String(key, value string) slog.Attr { return slog.String(key, value) }

// Int builds an int attribute.
func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

// Bool builds a bool attribute.
func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

// Error builds the conventional error attribute.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "<nil>")
	}
	return slog.String(FieldError, err.Error())
}

// WithComponent tags a logger with a component name for console prefixes.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
