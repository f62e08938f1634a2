package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient creates a Gemini client for the given key and model.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger.Named("llm").With(zap.String("provider", "gemini")),
	}, nil
}

// Generate sends prompt as a single user turn.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	start := time.Now()

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Float32("temperature", cfg.Temperature))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "text/plain",
		Temperature:      genai.Ptr(cfg.Temperature),
		TopP:             genai.Ptr(cfg.TopP),
		TopK:             genai.Ptr(float32(cfg.TopK)),
		MaxOutputTokens:  int32(cfg.MaxOutputTokens),
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err, c.Provider())
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &Error{
			Type:     ErrorTypeBlocked,
			Message:  fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
			Provider: c.Provider(),
		}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		if len(resp.Candidates) > 0 {
			switch resp.Candidates[0].FinishReason {
			case genai.FinishReasonSafety, genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent:
				return "", &Error{
					Type:     ErrorTypeBlocked,
					Message:  fmt.Sprintf("response blocked: %s", resp.Candidates[0].FinishReason),
					Provider: c.Provider(),
				}
			case genai.FinishReasonMaxTokens:
				return "", &Error{
					Type:     ErrorTypeStopped,
					Message:  "generation stopped before any text: MAX_TOKENS",
					Provider: c.Provider(),
				}
			}
		}
		return "", &Error{Type: ErrorTypeEmpty, Message: "empty response", Provider: c.Provider()}
	}

	c.logger.Info("LLM request completed",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// Provider returns "gemini".
func (c *GeminiClient) Provider() string {
	return "gemini"
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}
