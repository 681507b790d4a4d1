package core

import (
	"context"
)

// LLMClient abstracts the model transport (OpenRouter or any OpenAI-compatible endpoint).
type LLMClient interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ToolExecutor abstracts tool execution. Args is the decoded argument object.
// A returned error is a tool failure, reported to the model as tool output.
type ToolExecutor interface {
	Definitions() []ToolDefinition
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}
