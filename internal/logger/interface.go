package logger

import "context"

// Logger defines the leveled logging interface used across the pipeline.
// Context is accepted so implementations can pick up request-scoped
// values later without changing call sites.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}
