package llm

import (
	"context"
	"errors"
)

// ErrNoChoices is returned when a provider answers without any content
var ErrNoChoices = errors.New("no completion returned")

// Provider defines the interface for completion backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one completion request and returns the raw text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is a single prompt sent to a provider
type CompletionRequest struct {
	// System is an optional system instruction
	System string

	// Prompt is the user message
	Prompt string

	// JSONMode asks the backend for a constrained JSON object response
	// where supported. Backends without such a mode ignore it.
	JSONMode bool

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// CompletionResponse is the raw provider output
type CompletionResponse struct {
	// Text is the untrimmed completion content
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling; fact-checking wants 0
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o",
		Timeout:   60,
		MaxTokens: 1000,
	}
}

func (c Config) maxTokens(override int) int {
	if override > 0 {
		return override
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1000
}

func (c Config) model(override, fallback string) string {
	if override != "" {
		return override
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}
