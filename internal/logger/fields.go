package logger

import "context"

// Fields is a shorthand for structured log fields.
type Fields map[string]interface{}

// Field keys shared across the service. Request-scoped keys travel with
// the context logger; metric keys are attached per log line and are meant
// for aggregation.
const (
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldComponent = "component"

	FieldStatus     = "status"
	FieldDurationMs = "duration_ms"
	FieldSize       = "size"
)

// Entry carries metric fields for a single log line.
type Entry struct {
	fields Fields
}

// With starts an Entry with the given metric fields.
// Example: logger.With(logger.Fields{"duration_ms": 12}).Info(ctx, "done")
func With(fields Fields) *Entry {
	return &Entry{fields: fields}
}

// Info logs at Info level with the entry's fields, using the context's logger.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(e.fields).Infof(format, args...)
}

// Warn logs at Warn level with the entry's fields.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(e.fields).Warnf(format, args...)
}

// Error logs at Error level with the entry's fields.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(e.fields).Errorf(format, args...)
}
