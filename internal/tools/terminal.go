package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/hattiebot/toolrunner/internal/core"
	"github.com/hattiebot/toolrunner/internal/policy"
)

// RunFunc runs one shell command in workDir. err is set only when the process
// could not be started or waited on; a non-zero exit is reported via exitCode.
type RunFunc func(ctx context.Context, workDir, command string) (stdout, stderr string, exitCode int, err error)

// RunTerminal runs a shell command in the given working directory and returns stdout, stderr, and exit code.
func RunTerminal(ctx context.Context, workDir, command string) (stdout, stderr string, exitCode int, err error) {
	var shell string
	var args []string
	if runtime.GOOS == "windows" {
		shell = "cmd"
		args = []string{"/C", command}
	} else {
		shell = "sh"
		args = []string{"-c", command}
	}
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Dir = workDir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()
	if runErr != nil {
		var exit *exec.ExitError
		if errors.As(runErr, &exit) && ctx.Err() == nil {
			return stdout, stderr, exit.ExitCode(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout, stderr, -1, ctxErr
		}
		return stdout, stderr, -1, runErr
	}
	return stdout, stderr, 0, nil
}

// BashTool runs shell commands that pass the allow-list in package policy.
// Each ';' or '&' separated segment is judged and executed on its own.
type BashTool struct {
	// WorkDir is the directory commands run in; empty means the process cwd.
	WorkDir string
	// Run executes one allowed segment; nil means RunTerminal.
	Run RunFunc
}

func (t *BashTool) Name() string { return "Bash" }

func (t *BashTool) Definition() core.ToolDefinition {
	return function("Bash", "Execute a shell command (only a small whitelist is allowed)", map[string]any{
		"type":     "object",
		"required": []string{"command"},
		"properties": map[string]any{
			"command": stringProp("The command to execute"),
		},
	})
}

func (t *BashTool) Execute(ctx context.Context, args Args) (string, error) {
	raw, _ := args.String("command")
	run := t.Run
	if run == nil {
		run = RunTerminal
	}

	var results []string
	executed := false
	for _, seg := range policy.Segments(raw) {
		if !policy.Allowed(seg) {
			results = append(results, fmt.Sprintf("Command suppressed: '%s'", seg))
			continue
		}
		stdout, stderr, code, err := run(ctx, t.WorkDir, seg)
		if err != nil {
			results = append(results, fmt.Sprintf("Failed to execute '%s': %v", seg, err))
			continue
		}
		executed = true
		results = append(results, segmentReport(seg, stdout, stderr, code))
	}

	if !executed {
		return "", fmt.Errorf("No allowed commands executed. Details:\n%s", strings.Join(results, "\n"))
	}
	return strings.Join(results, "\n---\n"), nil
}

func segmentReport(seg, stdout, stderr string, exitCode int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command: '%s'\n%s", seg, stdout)
	if stderr != "" {
		b.WriteString("\nSTDERR:\n")
		b.WriteString(stderr)
	}
	if exitCode != 0 {
		fmt.Fprintf(&b, "\nEXIT CODE: %d", exitCode)
	}
	return b.String()
}
