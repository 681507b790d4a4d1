package core

import "encoding/json"

// Message roles used in the transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message (OpenRouter/OpenAI format).
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// MarshalJSON always writes content, which endpoints require on user and tool
// messages even when empty. Only an assistant message that carries tool calls
// and no text omits it.
func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	if m.Content == "" && len(m.ToolCalls) > 0 {
		return json.Marshal(plain(m))
	}
	return json.Marshal(struct {
		Role       string     `json:"role"`
		Content    string     `json:"content"`
		ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
		ToolCallID string     `json:"tool_call_id,omitempty"`
	}{m.Role, m.Content, m.ToolCalls, m.ToolCallID})
}

// ToolCall is a single tool invocation request.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the target tool. Arguments is a JSON-encoded object.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a tool available to the model.
type ToolDefinition struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec describes the function signature.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"` // JSON Schema
}

// ChatRequest is the body sent to the chat completions endpoint once per turn.
type ChatRequest struct {
	Messages []Message        `json:"messages"`
	Model    string           `json:"model"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// ChatResponse is the decoded top level of a completion. Messages stay raw so
// the loop can tell a malformed choice from a well-formed one.
type ChatResponse struct {
	Choices []Choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Choice is one candidate completion.
type Choice struct {
	Message      json.RawMessage `json:"message"`
	FinishReason string          `json:"finish_reason,omitempty"`
}
