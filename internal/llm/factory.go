package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// Provider names
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// NewBackend creates a backend based on configuration
func NewBackend(config Config) (Backend, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case ProviderOpenAI:
		return NewOpenAIBackend(config)

	case ProviderAnthropic, "claude":
		return NewAnthropicBackend(config)

	case ProviderOllama:
		return NewOllamaBackend(config)

	default:
		return nil, fmt.Errorf("%w: %q (supported: openai, anthropic, ollama)", ErrUnknownProvider, config.Provider)
	}
}

// ConfigsFromModel builds one connection config per provider from the
// application config. Credentials come from the environment-populated
// key fields and are never read from the config file.
func ConfigsFromModel(cfg model.LLMConfig) map[string]Config {
	base := Config{
		Timeout:    cfg.Timeout,
		MaxTokens:  cfg.MaxTokens,
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
		NoProxy:    cfg.NoProxy,
	}

	openaiCfg := base
	openaiCfg.Provider = ProviderOpenAI
	openaiCfg.APIKey = cfg.OpenAIAPIKey
	openaiCfg.BaseURL = cfg.OpenAIBaseURL

	anthropicCfg := base
	anthropicCfg.Provider = ProviderAnthropic
	anthropicCfg.APIKey = cfg.AnthropicAPIKey
	anthropicCfg.BaseURL = cfg.AnthropicBaseURL

	ollamaCfg := base
	ollamaCfg.Provider = ProviderOllama
	ollamaCfg.BaseURL = cfg.OllamaBaseURL

	return map[string]Config{
		ProviderOpenAI:    openaiCfg,
		ProviderAnthropic: anthropicCfg,
		ProviderOllama:    ollamaCfg,
	}
}
