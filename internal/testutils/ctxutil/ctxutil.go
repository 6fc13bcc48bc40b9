package ctxutil

import (
	"context"
	"testing"
	"time"
)

// WithTest bounds ctx by the deadline of t, leaving a second for clean-up.
func WithTest(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	if deadline, ok := t.Deadline(); ok {
		return context.WithDeadline(ctx, deadline.Add(-time.Second))
	}
	return context.WithCancel(ctx)
}
