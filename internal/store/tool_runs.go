package store

import (
	"context"
	"fmt"
	"time"
)

// ToolRun is one audited tool execution.
type ToolRun struct {
	ID         int64
	RunID      string
	ToolCallID string
	ToolName   string
	Arguments  string
	Result     string
	IsError    bool
	Duration   time.Duration
	CreatedAt  time.Time
}

// InsertToolRun records a tool execution and returns its row id.
func (db *DB) InsertToolRun(ctx context.Context, r ToolRun) (int64, error) {
	isErr := 0
	if r.IsError {
		isErr = 1
	}
	args := r.Arguments
	if args == "" {
		args = "{}"
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO tool_runs (run_id, tool_call_id, tool_name, arguments, result, is_error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.ToolCallID, r.ToolName, args, r.Result, isErr, r.Duration.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("insert tool run: %w", err)
	}
	return res.LastInsertId()
}

// ListToolRuns returns the executions recorded for runID, oldest first.
func (db *DB) ListToolRuns(ctx context.Context, runID string) ([]ToolRun, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, run_id, tool_call_id, tool_name, arguments, result, is_error, duration_ms, created_at
		 FROM tool_runs WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ToolRun
	for rows.Next() {
		var r ToolRun
		var isErr int
		var ms int64
		var created string
		if err := rows.Scan(&r.ID, &r.RunID, &r.ToolCallID, &r.ToolName, &r.Arguments, &r.Result, &isErr, &ms, &created); err != nil {
			return nil, err
		}
		r.IsError = isErr != 0
		r.Duration = time.Duration(ms) * time.Millisecond
		r.CreatedAt = parseTimestamp(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountToolRuns returns the number of recorded executions across all runs.
func (db *DB) CountToolRuns(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tool_runs").Scan(&n)
	return n, err
}

// parseTimestamp accepts the layouts the sqlite driver hands back for DATETIME columns.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
