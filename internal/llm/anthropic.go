package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient calls the Anthropic messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates a client for the given key and model.
func NewAnthropicClient(apiKey, model string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		model:  model,
		logger: logger.Named("llm").With(zap.String("provider", "anthropic")),
	}, nil
}

// Generate sends prompt as a single user message.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	start := time.Now()

	temperature := cfg.Temperature
	topP := cfg.TopP
	topK := cfg.TopK

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: &temperature,
		TopP:        &topP,
		TopK:        &topK,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err, c.Provider())
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		if resp.StopReason == "max_tokens" {
			return "", &Error{Type: ErrorTypeStopped, Message: "generation stopped before any text: max_tokens", Provider: c.Provider()}
		}
		return "", &Error{Type: ErrorTypeEmpty, Message: "empty response", Provider: c.Provider()}
	}

	c.logger.Info("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

func extractText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}

// Provider returns "anthropic".
func (c *AnthropicClient) Provider() string {
	return "anthropic"
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}
