package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeCompleter records prompts and returns a canned reply
type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	panics  bool
	systems []string
	users   []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	if f.panics {
		panic("backend exploded")
	}
	return f.reply, f.err
}

func chatServer(t *testing.T, status int, content string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var mu sync.Mutex
	var bodies []map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate_limit"}}`))
			return
		}
		reply, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
		_, _ = w.Write(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func TestChatClient_Complete(t *testing.T) {
	srv, bodies := chatServer(t, http.StatusOK, "  Namaste  ")
	c := NewChatClient(LLMConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "test-model"})

	got, err := c.Complete(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Namaste" {
		t.Fatalf("got %q", got)
	}
	if len(*bodies) != 1 {
		t.Fatalf("expected one request, got %d", len(*bodies))
	}
	if (*bodies)[0]["model"] != "test-model" {
		t.Fatalf("model not sent: %v", (*bodies)[0]["model"])
	}
	msgs, _ := (*bodies)[0]["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(msgs))
	}
}

func TestChatClient_Errors(t *testing.T) {
	c := NewChatClient(LLMConfig{})
	if c.Configured() {
		t.Fatal("client without key reports configured")
	}
	if _, err := c.Complete(context.Background(), "s", "u"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	srv, _ := chatServer(t, http.StatusOK, "   ")
	c = NewChatClient(LLMConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "m"})
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error on empty reply")
	}

	bad, _ := chatServer(t, http.StatusBadRequest, "")
	c = NewChatClient(LLMConfig{APIKey: "k", BaseURL: bad.URL + "/", Model: "m"})
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error on backend failure")
	}
}

func TestBestEffort_RecoversPanic(t *testing.T) {
	got := bestEffort("boom", "fallback", func() (string, error) {
		panic("nil map")
	})
	if got != "fallback" {
		t.Fatalf("got %q", got)
	}
}
