package middleware

import (
	"context"
	"time"

	"github.com/hattiebot/toolrunner/internal/core"
)

// TimeoutExecutor bounds each tool execution with a deadline (0 = none).
type TimeoutExecutor struct {
	next    core.ToolExecutor
	timeout time.Duration
}

// NewTimeoutExecutor returns an executor that cancels next after timeout.
func NewTimeoutExecutor(next core.ToolExecutor, timeout time.Duration) *TimeoutExecutor {
	return &TimeoutExecutor{next: next, timeout: timeout}
}

func (t *TimeoutExecutor) Definitions() []core.ToolDefinition {
	return t.next.Definitions()
}

func (t *TimeoutExecutor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	if t.timeout <= 0 {
		return t.next.Execute(ctx, name, args)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Execute(ctx, name, args)
}
