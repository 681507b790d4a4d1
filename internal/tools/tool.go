package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/hattiebot/toolrunner/internal/core"
)

// ErrUnknownTool is returned by Registry.Execute when no tool has the requested name.
var ErrUnknownTool = errors.New("unknown tool")

// Args is a decoded tool argument object.
type Args map[string]any

// String returns the named argument if it is present and a string.
func (a Args) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Tool represents a modular tool implementation.
type Tool interface {
	Name() string
	Definition() core.ToolDefinition
	// Execute returns text for the model. A non-nil error is a tool failure
	// whose message is shown to the model; it is never fatal to the caller.
	Execute(ctx context.Context, args Args) (string, error)
}

// Registry holds a fixed, ordered set of tools. It is read-only after
// NewRegistry and safe for concurrent use.
type Registry struct {
	tools []Tool
}

// NewRegistry returns a registry over tools in the given order.
func NewRegistry(tools ...Tool) *Registry {
	return &Registry{tools: append([]Tool(nil), tools...)}
}

// Definitions returns every tool definition in registration order.
func (r *Registry) Definitions() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Names returns the registered tool names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name())
	}
	return names
}

// Execute runs the first tool whose name matches. The set is small and
// static, so a linear scan is all the lookup it needs.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	for _, t := range r.tools {
		if t.Name() == name {
			return t.Execute(ctx, Args(args))
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

// function builds the standard definition wrapper.
func function(name, description string, params map[string]any) core.ToolDefinition {
	return core.ToolDefinition{
		Type: "function",
		Function: core.FunctionSpec{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}
}

// stringProp describes a single string parameter.
func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}
