package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hattiebot/toolrunner/internal/core"
)

type mockExecutor struct {
	result  string
	err     error
	lastCtx context.Context
	calls   int
}

func (m *mockExecutor) Definitions() []core.ToolDefinition {
	return []core.ToolDefinition{{Type: "function", Function: core.FunctionSpec{Name: "Read"}}}
}

func (m *mockExecutor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	m.calls++
	m.lastCtx = ctx
	if m.err != nil {
		return "", m.err
	}
	return m.result, nil
}

func TestTruncatingExecutor_NoTruncationWhenMaxZero(t *testing.T) {
	long := strings.Repeat("x", 1000)
	inner := &mockExecutor{result: long}
	wrap := NewTruncatingExecutor(inner, 0)
	got, err := wrap.Execute(context.Background(), "Read", map[string]any{"file_path": "big.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if got != long {
		t.Errorf("maxRunes 0: expected full output, got len %d", len(got))
	}
}

func TestTruncatingExecutor_TruncatesWhenMaxSet(t *testing.T) {
	long := strings.Repeat("x", 500)
	inner := &mockExecutor{result: long}
	wrap := NewTruncatingExecutor(inner, 200)
	got, err := wrap.Execute(context.Background(), "Read", map[string]any{"file_path": "big.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "...[output truncated, total 500 runes]") {
		t.Errorf("expected truncation suffix: %q", got[len(got)-80:])
	}
	if len(got) >= len(long) {
		t.Errorf("expected truncated result, got len %d", len(got))
	}
}

var errToolFailed = errors.New("tool failed")

func TestTruncatingExecutor_PassesErrorThrough(t *testing.T) {
	inner := &mockExecutor{err: errToolFailed}
	wrap := NewTruncatingExecutor(inner, 100)
	_, err := wrap.Execute(context.Background(), "unknown", nil)
	if err != errToolFailed {
		t.Errorf("expected error passthrough, got %v", err)
	}
}

func TestTruncatingExecutor_TruncatesLongError(t *testing.T) {
	long := errors.New(strings.Repeat("e", 400))
	inner := &mockExecutor{err: long}
	wrap := NewTruncatingExecutor(inner, 100)
	_, err := wrap.Execute(context.Background(), "Bash", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, long) {
		t.Errorf("truncated error should unwrap to the original")
	}
	if !strings.Contains(err.Error(), "total 400 runes") {
		t.Errorf("expected truncation suffix, got %q", err.Error())
	}
}

func TestWrappersForwardDefinitions(t *testing.T) {
	inner := &mockExecutor{}
	for _, ex := range []core.ToolExecutor{
		NewTruncatingExecutor(inner, 10),
		NewTimeoutExecutor(inner, 0),
		NewAuditExecutor(inner, &memRecorder{}, "run", nil),
	} {
		defs := ex.Definitions()
		if len(defs) != 1 || defs[0].Function.Name != "Read" {
			t.Errorf("%T: definitions not forwarded: %+v", ex, defs)
		}
	}
}
