package core

import "context"

// Context keys for pipeline runs
type contextKey string

const runIDKey contextKey = "runID"

// withRunID attaches the run identifier to the context handed to collaborators
func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run identifier, or "" outside a run
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}
