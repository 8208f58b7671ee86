package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrNotConfigured is returned by optional integrations that are missing credentials
var ErrNotConfigured = errors.New("not configured")

// LLMConfig selects an OpenAI-compatible chat completions endpoint
type LLMConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	HTTPClient *http.Client
}

// ChatClient sends single-turn prompts to the reasoning backend
type ChatClient struct {
	client     openai.Client
	model      string
	configured bool
}

// NewChatClient creates a chat client; without an API key every call fails with ErrNotConfigured
func NewChatClient(cfg LLMConfig) *ChatClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return &ChatClient{
		client:     openai.NewClient(opts...),
		model:      strings.TrimSpace(cfg.Model),
		configured: strings.TrimSpace(cfg.APIKey) != "",
	}
}

// Configured reports whether the client has credentials
func (c *ChatClient) Configured() bool { return c != nil && c.configured }

// Complete runs one system+user exchange and returns the trimmed reply text
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("llm: %w", ErrNotConfigured)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("llm: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty choices")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("llm: empty reply")
	}
	return reply, nil
}

// bestEffort runs fn and returns fallback when it fails or panics; the failure is only logged
func bestEffort[T any](name string, fallback T, fn func() (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ %s panicked: %v", name, r)
			out = fallback
		}
	}()

	v, err := fn()
	if err != nil {
		log.Printf("⚠️  %s failed: %v", name, err)
		return fallback
	}
	return v
}
