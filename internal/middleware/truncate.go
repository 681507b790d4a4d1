package middleware

import (
	"context"

	"github.com/hattiebot/toolrunner/internal/core"
	"github.com/hattiebot/toolrunner/internal/tools"
)

// TruncatingExecutor wraps a ToolExecutor and truncates tool output to maxRunes (0 = no truncation).
// Error text is capped the same way since it is also shown to the model.
type TruncatingExecutor struct {
	next     core.ToolExecutor
	maxRunes int
}

// NewTruncatingExecutor returns an executor that truncates results from next.
func NewTruncatingExecutor(next core.ToolExecutor, maxRunes int) *TruncatingExecutor {
	return &TruncatingExecutor{next: next, maxRunes: maxRunes}
}

func (t *TruncatingExecutor) Definitions() []core.ToolDefinition {
	return t.next.Definitions()
}

// Execute runs the inner executor and truncates the result before returning.
func (t *TruncatingExecutor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	result, err := t.next.Execute(ctx, name, args)
	if err != nil {
		msg := err.Error()
		if cut := tools.TruncateToolOutput(msg, t.maxRunes); cut != msg {
			return "", &truncatedError{msg: cut, err: err}
		}
		return "", err
	}
	return tools.TruncateToolOutput(result, t.maxRunes), nil
}

// truncatedError shortens the message of err while keeping it unwrappable.
type truncatedError struct {
	msg string
	err error
}

func (e *truncatedError) Error() string { return e.msg }
func (e *truncatedError) Unwrap() error { return e.err }
