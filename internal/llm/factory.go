package llm

import (
	"context"
	"fmt"

	"synthara-assistant-go/internal/config"

	"go.uber.org/zap"
)

// NewGenerator builds the client for the configured provider.
// It returns nil without error when no usable credential is configured,
// which callers treat as "AI unavailable".
func NewGenerator(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (Generator, error) {
	if !cfg.HasCredential() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model, logger)
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, logger)
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
