package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hattiebot/toolrunner/internal/core"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "sk-test", WithLogger(log.New(io.Discard, "", 0)))
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return c
}

func TestComplete_SendsPayload(t *testing.T) {
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL + "/")
	resp, err := c.Complete(context.Background(), core.ChatRequest{
		Model:    "test/model",
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
		Tools: []core.ToolDefinition{{
			Type:     "function",
			Function: core.FunctionSpec{Name: "Read", Description: "read", Parameters: map[string]any{"type": "object"}},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("choices: %d", len(resp.Choices))
	}
	if !strings.Contains(string(resp.Choices[0].Message), `"content":"hi"`) {
		t.Errorf("message: %s", resp.Choices[0].Message)
	}
	for _, key := range []string{"messages", "model", "tools"} {
		if _, ok := got[key]; !ok {
			t.Errorf("payload missing %q", key)
		}
	}
	if string(got["model"]) != `"test/model"` {
		t.Errorf("model: %s", got["model"])
	}
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Complete(context.Background(), core.ChatRequest{Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Choices) != 0 {
		t.Errorf("expected empty choices")
	}
	if hits != 3 {
		t.Errorf("expected 3 attempts, got %d", hits)
	}
}

func TestComplete_GivesUpAfterRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.MaxRetries = 2
	_, err := c.Complete(context.Background(), core.ChatRequest{Model: "m"})
	if err == nil || !strings.Contains(err.Error(), "failed after 2 retries") {
		t.Fatalf("got %v", err)
	}
	if hits != 3 {
		t.Errorf("expected 3 attempts, got %d", hits)
	}
}

func TestComplete_TransportFaults(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad"}}`, "HTTP 400"},
		{"not json", http.StatusOK, `<html>`, "decode"},
		{"error object", http.StatusOK, `{"error":{"message":"no credits"}}`, "no credits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()
			_, err := newTestClient(srv.URL).Complete(context.Background(), core.ChatRequest{Model: "m"})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestComplete_RequiresKeyAndModel(t *testing.T) {
	c := NewClient("", "")
	if _, err := c.Complete(context.Background(), core.ChatRequest{Model: "m"}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if c.BaseURL != BaseURL {
		t.Errorf("default base url: %s", c.BaseURL)
	}
	c.APIKey = "k"
	if _, err := c.Complete(context.Background(), core.ChatRequest{}); err == nil {
		t.Error("expected model error")
	}
}

func TestComplete_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithLogger(log.New(io.Discard, "", 0)), WithRetry(3, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}
	_, err := c.Complete(ctx, core.ChatRequest{Model: "m"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
