package observability

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type runIDKey struct{}

// NewRunID returns a sortable id for one invocation.
func NewRunID() string {
	return ulid.Make().String()
}

// WithRunID stores the invocation id so every log line can carry it.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom returns the invocation id, or "" outside an invocation.
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
