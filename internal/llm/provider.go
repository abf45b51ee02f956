package llm

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMissingCredential means a hosted provider was selected without an API key
	ErrMissingCredential = errors.New("missing API credential")

	// ErrUnknownProvider means the configured provider name is not supported
	ErrUnknownProvider = errors.New("unknown LLM provider")

	// ErrEmptyResponse means the provider answered without any text
	ErrEmptyResponse = errors.New("empty response")
)

// Backend defines the interface for text-understanding providers.
// Callers never see provider-specific request or response shapes.
type Backend interface {
	// Name returns the provider name
	Name() string

	// Complete sends instructions plus content to model and returns its text
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is one completion call
type Request struct {
	Model        string
	Instructions string // system / developer prompt
	Content      string // user turn
	MaxTokens    int
}

// Response is the provider's answer
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Config holds per-provider connection settings
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout per request
	Timeout time.Duration

	// MaxTokens is used when a Request does not set its own
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultMaxTokens matches the longest extraction responses seen in practice
const DefaultMaxTokens = 8000

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func (c Config) maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return DefaultMaxTokens
}
