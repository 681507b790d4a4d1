package middleware

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hattiebot/toolrunner/internal/core"
	"github.com/hattiebot/toolrunner/internal/store"
)

// Recorder persists tool executions. *store.DB implements it.
type Recorder interface {
	InsertToolRun(ctx context.Context, r store.ToolRun) (int64, error)
}

// AuditExecutor records every execution through a Recorder. Recording
// failures are logged and never change the tool result.
type AuditExecutor struct {
	next   core.ToolExecutor
	rec    Recorder
	runID  string
	logger *log.Logger
	now    func() time.Time
}

// NewAuditExecutor wraps next; logger may be nil.
func NewAuditExecutor(next core.ToolExecutor, rec Recorder, runID string, logger *log.Logger) *AuditExecutor {
	if logger == nil {
		logger = log.Default()
	}
	return &AuditExecutor{next: next, rec: rec, runID: runID, logger: logger, now: time.Now}
}

func (a *AuditExecutor) Definitions() []core.ToolDefinition {
	return a.next.Definitions()
}

func (a *AuditExecutor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	start := a.now()
	result, err := a.next.Execute(ctx, name, args)

	run := store.ToolRun{
		RunID:      a.runID,
		ToolCallID: core.ToolCallID(ctx),
		ToolName:   name,
		Result:     result,
		Duration:   a.now().Sub(start),
	}
	if raw, mErr := json.Marshal(args); mErr == nil {
		run.Arguments = string(raw)
	}
	if err != nil {
		run.IsError = true
		run.Result = err.Error()
	}
	// The tool already ran; a cancelled ctx must not lose its audit row.
	if _, recErr := a.rec.InsertToolRun(context.WithoutCancel(ctx), run); recErr != nil {
		a.logger.Printf("[AUDIT] failed to record %s: %v", name, recErr)
	}
	return result, err
}
