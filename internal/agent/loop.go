package agent

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hattiebot/toolrunner/internal/core"
)

// DefaultMaxTurns caps model round trips per prompt.
const DefaultMaxTurns = 50

// ErrBudgetExhausted is returned when the turn budget runs out before the
// model produces a final answer.
var ErrBudgetExhausted = errors.New("turn budget exhausted")

// Loop runs one prompt to completion: transcript -> model with tools ->
// execute tool_calls -> repeat until the model answers in text.
type Loop struct {
	Client   core.LLMClient
	Executor core.ToolExecutor
	Model    string
	// MaxTurns bounds model calls; 0 means no limit.
	MaxTurns int
	// Logger receives diagnostics; nil means log.Default().
	Logger *log.Logger
}

// Result is the outcome of one Run.
type Result struct {
	// Answer is the final assistant text; valid only when Answered is true.
	Answer   string
	Answered bool
	// Transcript is every message exchanged, starting with the user prompt.
	Transcript []core.Message
	Turns      int
}

// Run seeds a transcript with prompt and drives the model until it answers.
// A transport error is returned as is; protocol anomalies are logged and
// either skipped or end the run with Answered false and a nil error.
func (l *Loop) Run(ctx context.Context, prompt string) (Result, error) {
	res := Result{
		Transcript: []core.Message{{Role: core.RoleUser, Content: prompt}},
	}

	for {
		if l.MaxTurns > 0 && res.Turns >= l.MaxTurns {
			l.logf("[AGENT] Max turns (%d) reached without a final answer", l.MaxTurns)
			return res, fmt.Errorf("%w after %d turns", ErrBudgetExhausted, res.Turns)
		}
		res.Turns++

		req := core.ChatRequest{
			Messages: res.Transcript,
			Model:    l.Model,
			Tools:    l.Executor.Definitions(),
		}
		resp, err := l.Client.Complete(ctx, req)
		if err != nil {
			return res, fmt.Errorf("model request (turn %d): %w", res.Turns, err)
		}

		if len(resp.Choices) == 0 {
			l.logf("[AGENT] No choices in model response; stopping without an answer")
			return res, nil
		}

		for i, choice := range resp.Choices {
			msg, calls, ok := decodeChoice(choice.Message)
			if !ok {
				l.logf("[AGENT] Choice %d without message: %s", i, compact(choice.Message))
				continue
			}
			res.Transcript = append(res.Transcript, msg.Message)

			if msg.hasToolCalls {
				res.Transcript = l.dispatch(ctx, res.Transcript, calls)
				continue
			}
			if msg.hasContent {
				res.Answer = msg.Content
				res.Answered = true
				return res, nil
			}
			l.logf("[AGENT] Received message without content or tool_calls: %s", compact(choice.Message))
		}
	}
}

// dispatch executes calls in order and appends one tool message per
// executed call. Malformed calls are logged and dropped.
func (l *Loop) dispatch(ctx context.Context, transcript []core.Message, calls []pendingCall) []core.Message {
	for _, pc := range calls {
		if pc.err != nil {
			l.logf("[AGENT] Skipping tool call: %v", pc.err)
			continue
		}
		l.logf("[TOOL] %s (%s)", pc.call.Function.Name, pc.call.ID)
		result, execErr := l.Executor.Execute(core.WithToolCallID(ctx, pc.call.ID), pc.call.Function.Name, pc.args)
		if execErr != nil {
			l.logf("[TOOL] %s failed: %v", pc.call.Function.Name, execErr)
			result = execErr.Error()
		}
		transcript = append(transcript, core.Message{
			Role:       core.RoleTool,
			Content:    result,
			ToolCallID: pc.call.ID,
		})
	}
	return transcript
}

func (l *Loop) logf(format string, args ...any) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}
