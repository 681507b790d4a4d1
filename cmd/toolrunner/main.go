// Toolrunner sends one prompt to an OpenRouter model with Read, Write and Bash
// tools attached, executes the tool calls it asks for (Bash through an
// allow-list) and prints the model's final answer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/hattiebot/toolrunner/internal/agent"
	"github.com/hattiebot/toolrunner/internal/config"
	"github.com/hattiebot/toolrunner/internal/core"
	"github.com/hattiebot/toolrunner/internal/middleware"
	"github.com/hattiebot/toolrunner/internal/openrouter"
	"github.com/hattiebot/toolrunner/internal/store"
	"github.com/hattiebot/toolrunner/internal/tools"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without process globals; it returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("toolrunner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var prompt string
	fs.StringVar(&prompt, "p", "", "prompt to send to the model")
	fs.StringVar(&prompt, "prompt", "", "prompt to send to the model (same as -p)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if prompt == "" {
		fmt.Fprintln(stderr, "usage: toolrunner -p \"<prompt>\"")
		return 2
	}

	logger := log.New(stderr, "", log.LstdFlags)
	cwd, _ := os.Getwd()
	if err := config.LoadDotEnv(cwd); err != nil {
		logger.Printf("warning: %v", err)
	}
	cfg := config.New("")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	executor, cleanup, err := buildExecutor(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer cleanup()

	client := openrouter.NewClient(cfg.BaseURL, cfg.APIKey,
		openrouter.WithTimeout(cfg.ModelTimeout),
		openrouter.WithLogger(logger),
	)
	loop := &agent.Loop{
		Client:   client,
		Executor: executor,
		Model:    cfg.Model,
		MaxTurns: cfg.MaxTurns,
		Logger:   logger,
	}

	res, err := loop.Run(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "interrupted")
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	if res.Answered {
		fmt.Fprintln(stdout, res.Answer)
	}
	return 0
}

// buildExecutor wires the tool registry behind its middleware: audit (when
// configured) around timeout around truncation.
func buildExecutor(ctx context.Context, cfg *config.Config, logger *log.Logger) (core.ToolExecutor, func(), error) {
	registry := tools.NewRegistry(
		tools.ReadTool{},
		tools.WriteTool{},
		&tools.BashTool{WorkDir: cfg.WorkDir},
	)
	var exec core.ToolExecutor = middleware.NewTruncatingExecutor(registry, cfg.ToolOutputMaxRunes)
	exec = middleware.NewTimeoutExecutor(exec, cfg.ToolTimeout)

	if cfg.AuditDBPath == "" {
		return exec, func() {}, nil
	}
	db, err := store.Open(ctx, cfg.AuditDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit db: %w", err)
	}
	runID := uuid.NewString()
	logger.Printf("[AUDIT] recording tool runs to %s (run %s)", cfg.AuditDBPath, runID)
	exec = middleware.NewAuditExecutor(exec, db, runID, logger)
	return exec, func() {
		if err := db.Close(); err != nil {
			logger.Printf("[AUDIT] close: %v", err)
		}
	}, nil
}
