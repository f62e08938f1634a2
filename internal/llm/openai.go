package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client   *openai.Client
	endpoint string
	model    string
	logger   *zap.Logger
}

// NewOpenAIClient creates a client for endpoint (e.g. "https://api.openai.com/v1").
func NewOpenAIClient(apiKey, endpoint, model string, logger *zap.Logger) (*OpenAIClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimSuffix(endpoint, "/")

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: endpoint,
		model:    model,
		logger:   logger.Named("llm").With(zap.String("provider", "openai")),
	}, nil
}

// Generate sends prompt as a single user message. Chat completions have no top-k.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxOutputTokens,
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err, c.Provider())
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Type: ErrorTypeEmpty, Message: "no choices in response", Provider: c.Provider()}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", &Error{Type: ErrorTypeBlocked, Message: "response blocked by content filter", Provider: c.Provider()}
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		if choice.FinishReason == openai.FinishReasonLength {
			return "", &Error{Type: ErrorTypeStopped, Message: "generation stopped before any text: length", Provider: c.Provider()}
		}
		return "", &Error{Type: ErrorTypeEmpty, Message: "empty response", Provider: c.Provider()}
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return choice.Message.Content, nil
}

// Provider returns "openai".
func (c *OpenAIClient) Provider() string {
	return "openai"
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}
