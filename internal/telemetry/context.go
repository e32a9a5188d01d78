package telemetry

import "context"

type runIDKey struct{}

// WithRunID tags a context with the pipeline run identifier so sinks
// can correlate attempt records with one batch run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom returns the run identifier from ctx, or "".
func RunIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey{}).(string); ok {
		return v
	}
	return ""
}
