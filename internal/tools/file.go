package tools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hattiebot/toolrunner/internal/core"
)

// ReadTool returns a file's contents verbatim. Any path readable by the
// process is accepted.
type ReadTool struct{}

func (ReadTool) Name() string { return "Read" }

func (ReadTool) Definition() core.ToolDefinition {
	return function("Read", "Read and return the contents of a file", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": stringProp("The path to the file to read"),
		},
		"required": []string{"file_path"},
	})
}

func (ReadTool) Execute(ctx context.Context, args Args) (string, error) {
	path, ok := args.String("file_path")
	if !ok {
		return "", errors.New("Read called without file_path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("Error reading file: %w", err)
	}
	return string(data), nil
}

// WriteTool replaces a file's contents, creating the file if needed.
type WriteTool struct{}

// writeOK is returned after a successful write.
const writeOK = "File written successfully"

func (WriteTool) Name() string { return "Write" }

func (WriteTool) Definition() core.ToolDefinition {
	return function("Write", "Write content to a file", map[string]any{
		"type":     "object",
		"required": []string{"file_path", "content"},
		"properties": map[string]any{
			"file_path": stringProp("The path of the file to write to"),
			"content":   stringProp("The content to write to the file"),
		},
	})
}

func (WriteTool) Execute(ctx context.Context, args Args) (string, error) {
	path, ok := args.String("file_path")
	if !ok {
		return "", errors.New("Write called without file_path")
	}
	content, ok := args.String("content")
	if !ok {
		return "", errors.New("Write called without content")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("Error opening file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("Error writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("Error writing file: %w", err)
	}
	return writeOK, nil
}
