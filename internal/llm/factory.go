package llm

import (
	"context"
	"fmt"
	"strings"
)

type ProviderConfig struct {
	// Provider selects the backend: "openai" (any OpenAI compatible API,
	// DeepSeek by default) or "gemini".
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewProvider creates a Provider from configuration.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai", "deepseek":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}), nil
	case "gemini":
		p, err := NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model})
		if err != nil {
			return nil, fmt.Errorf("initializing gemini provider: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
