package agent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hattiebot/toolrunner/internal/core"
)

// choiceMessage is an assistant message plus how it classified.
type choiceMessage struct {
	core.Message
	hasToolCalls bool
	hasContent   bool
}

// pendingCall is one entry of a message's tool_calls, decoded or not.
// args is set only when err is nil.
type pendingCall struct {
	call core.ToolCall
	args map[string]any
	err  error
}

// wireMessage is the loose shape of choices[i].message.
type wireMessage struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	ToolCalls json.RawMessage `json:"tool_calls"`
}

// wireToolCall keeps every field optional so missing ones can be reported.
type wireToolCall struct {
	ID       *string `json:"id"`
	Type     string  `json:"type"`
	Function *struct {
		Name      *string         `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// decodeChoice classifies one choice's message. ok is false when the message
// is absent or not a JSON object. The returned Message carries only the calls
// that decoded fully, arguments included, so every recorded call is answered.
func decodeChoice(raw json.RawMessage) (choiceMessage, []pendingCall, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return choiceMessage{}, nil, false
	}
	var wm wireMessage
	if err := json.Unmarshal(raw, &wm); err != nil {
		return choiceMessage{}, nil, false
	}

	out := choiceMessage{Message: core.Message{Role: wm.Role}}
	if out.Role == "" {
		out.Role = core.RoleAssistant
	}
	out.Content, out.hasContent = core.ParseContent(wm.Content)

	var rawCalls []json.RawMessage
	if err := json.Unmarshal(wm.ToolCalls, &rawCalls); err != nil || len(rawCalls) == 0 {
		return out, nil, true
	}
	out.hasToolCalls = true

	calls := make([]pendingCall, 0, len(rawCalls))
	for _, rc := range rawCalls {
		pc := pendingCall{}
		pc.call, pc.err = decodeToolCall(rc)
		if pc.err == nil {
			pc.args, pc.err = decodeArguments(pc.call.Function.Arguments)
			if pc.err != nil {
				pc.err = fmt.Errorf("failed to parse tool arguments for %s (%s): %w -- raw: %s",
					pc.call.Function.Name, pc.call.ID, pc.err, pc.call.Function.Arguments)
			}
		}
		if pc.err == nil {
			out.ToolCalls = append(out.ToolCalls, pc.call)
		}
		calls = append(calls, pc)
	}
	return out, calls, true
}

// decodeToolCall extracts id, function name and the arguments string. The
// arguments themselves are decoded by decodeArguments.
func decodeToolCall(raw json.RawMessage) (core.ToolCall, error) {
	var w wireToolCall
	if err := json.Unmarshal(raw, &w); err != nil {
		return core.ToolCall{}, fmt.Errorf("malformed tool_call %s: %w", compact(raw), err)
	}
	if w.ID == nil {
		return core.ToolCall{}, fmt.Errorf("tool_call missing 'id': %s", compact(raw))
	}
	if w.Function == nil {
		return core.ToolCall{}, fmt.Errorf("tool_call missing 'function' object: %s", compact(raw))
	}
	if w.Function.Name == nil {
		return core.ToolCall{}, fmt.Errorf("function object missing 'name': %s", compact(raw))
	}
	var args string
	if bytes.Equal(bytes.TrimSpace(w.Function.Arguments), []byte("null")) {
		return core.ToolCall{}, fmt.Errorf("function object missing 'arguments' string: %s", compact(raw))
	}
	if err := json.Unmarshal(w.Function.Arguments, &args); err != nil {
		return core.ToolCall{}, fmt.Errorf("function object missing 'arguments' string: %s", compact(raw))
	}
	typ := w.Type
	if typ == "" {
		typ = "function"
	}
	return core.ToolCall{
		ID:   *w.ID,
		Type: typ,
		Function: core.FunctionCall{
			Name:      *w.Function.Name,
			Arguments: args,
		},
	}, nil
}

// decodeArguments is the second decode of the double-encoded arguments. Only
// invalid JSON is an error. Valid JSON that is not an object yields empty
// arguments, leaving the tool to report whatever field it is missing.
func decodeArguments(s string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]any); ok {
		return obj, nil
	}
	return map[string]any{}, nil
}

// compact renders raw JSON on one line for logs.
func compact(raw json.RawMessage) string {
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return string(raw)
	}
	return b.String()
}
