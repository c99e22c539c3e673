// Package llm defines the text-generation capability consumed by the
// debate engine. Any completion-style endpoint satisfies Client; the
// engine treats every failure as recoverable and falls back to its
// deterministic generator.
package llm

import (
	"context"
	"os"
	"strings"
)

// Request carries one completion call. System fixes the agent's
// debate stance; Prompt carries the turn-specific instruction.
type Request struct {
	Model       string   `json:"model"`
	System      string   `json:"system,omitempty"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Client is the interface for text generation backends.
type Client interface {
	// Complete sends a request and returns the generated text.
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider identifies a generation backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClientForModel creates the client matching a model string.
//
// Environment variables used:
//
//	ANTHROPIC_API_KEY — Anthropic API key (read by the SDK)
//	OPENAI_API_KEY    — OpenAI API key
//	OPENAI_BASE_URL   — custom OpenAI-compatible base URL
func NewClientForModel(model string) Client {
	lower := strings.ToLower(model)
	if strings.HasPrefix(lower, "gpt-") || strings.HasPrefix(lower, "o1") || strings.HasPrefix(lower, "o3") || strings.HasPrefix(lower, "o4") {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
			return NewOpenAICompatibleClient(baseURL, apiKey)
		}
		return NewOpenAIClient(apiKey)
	}
	return NewAnthropicClient()
}
