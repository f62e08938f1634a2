// Package llm wraps the text generation providers behind a single interface.
package llm

import (
	"context"
)

// GenerationConfig holds the sampling parameters for one request.
// Providers that have no notion of a parameter ignore it.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// Generator produces text for a single user prompt.
// Use this interface for dependency injection to enable fakes in tests.
type Generator interface {
	// Generate returns the model text or a classified *Error.
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)

	// Provider returns the provider name, e.g. "gemini".
	Provider() string

	// Model returns the configured model name.
	Model() string
}

// Ensure clients implement Generator at compile time.
var (
	_ Generator = (*GeminiClient)(nil)
	_ Generator = (*OpenAIClient)(nil)
	_ Generator = (*AnthropicClient)(nil)
)
