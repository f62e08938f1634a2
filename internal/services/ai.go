package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"synthara-assistant-go/internal/config"
	"synthara-assistant-go/internal/llm"
	"synthara-assistant-go/internal/models"

	"go.uber.org/zap"
)

const (
	// Files above this size are described to the model by metadata only
	maxAIContentKB = 100
	// Content preview sent to the model, in characters
	aiPreviewChars = 1000
)

var (
	fileAnalysisGeneration = llm.GenerationConfig{
		Temperature:     0.2,
		TopP:            0.85,
		TopK:            20,
		MaxOutputTokens: 150,
	}
	chatGeneration = llm.GenerationConfig{
		Temperature:     0.4,
		TopP:            0.85,
		TopK:            20,
		MaxOutputTokens: 100,
	}
)

// FileAugmenter produces the optional model commentary for an uploaded file
type FileAugmenter interface {
	AnalyzeFile(ctx context.Context, path string, category models.Category, filename, content string) string
}

// AIService wraps the configured generator with the prompts and limits used
// for file analysis and chat.
type AIService struct {
	cfg       *config.Config
	generator llm.Generator
	log       *zap.Logger
}

// NewAIService creates a new AI service. generator may be nil when no
// provider credential is configured.
func NewAIService(cfg *config.Config, generator llm.Generator, log *zap.Logger) *AIService {
	return &AIService{
		cfg:       cfg,
		generator: generator,
		log:       log,
	}
}

// Available reports whether a model can be called at all
func (s *AIService) Available() bool {
	return s.generator != nil && s.cfg.AI.HasCredential()
}

// FileAnalysisEnabled reports whether uploads are sent to the model
func (s *AIService) FileAnalysisEnabled() bool {
	return s.generator != nil && s.cfg.AI.FileAnalysisEnabled()
}

// Provider returns the name of the configured provider, or "" when unavailable
func (s *AIService) Provider() string {
	if s.generator == nil {
		return ""
	}
	return s.generator.Provider()
}

// AnalyzeFile asks the model to describe a file. It returns "" whenever AI
// analysis is disabled or the call fails for any reason.
func (s *AIService) AnalyzeFile(ctx context.Context, path string, category models.Category, filename, content string) string {
	if !s.FileAnalysisEnabled() {
		s.log.Debug("AI analysis disabled", zap.String("filename", filename))
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		s.log.Error("Failed to stat file for AI analysis", zap.String("filename", filename), zap.Error(err))
		return ""
	}

	prompt := buildFilePrompt(filename, category, info.Size(), content)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AI.RequestTimeout)
	defer cancel()

	s.log.Info("Calling model for file analysis",
		zap.String("filename", filename),
		zap.String("provider", s.generator.Provider()),
		zap.String("model", s.generator.Model()))

	text, err := s.generator.Generate(ctx, prompt, fileAnalysisGeneration)
	if err != nil {
		s.log.Error("AI file analysis failed", zap.String("filename", filename), zap.Error(err))
		return ""
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.log.Error("Empty model response for file analysis", zap.String("filename", filename))
	}
	return text
}

// Chat sends a prompt with the chat generation settings under the configured deadline
func (s *AIService) Chat(ctx context.Context, prompt string) (string, error) {
	if !s.Available() {
		return "", llm.NewError(llm.ErrorTypeAuth, "no model credential configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AI.RequestTimeout)
	defer cancel()

	s.log.Info("Calling model for chat",
		zap.String("provider", s.generator.Provider()),
		zap.String("model", s.generator.Model()))

	text, err := s.generator.Generate(ctx, prompt, chatGeneration)
	if err != nil {
		return "", llm.ClassifyError(err, s.generator.Provider())
	}
	return text, nil
}

func buildFilePrompt(filename string, category models.Category, size int64, content string) string {
	sizeKB := float64(size) / 1024

	if sizeKB > maxAIContentKB {
		return fmt.Sprintf(`Analyze this file based on its metadata:
Filename: %s
File type: %s
File size: %.2f KB
(Content too large to include)

Your task:
1. Determine the likely purpose and content of this file based on its name and extension
2. Identify any domain-specific information (e.g., medical, scientific, programming, business)
3. Explain what information this file might contain and how it might be used
4. Note any specific formats, standards, or conventions this file likely follows

Be specific and detailed in your analysis. Avoid generic descriptions.
If the filename contains technical terms or abbreviations, explain what they mean.
If you can't determine something with confidence, acknowledge the limitations of analyzing without content.
`, filename, category, sizeKB)
	}

	snippet := ""
	if content != "" {
		snippet = "\nContent preview:\n" + truncateRunes(content, aiPreviewChars)
		if utf8.RuneCountInString(content) > aiPreviewChars {
			snippet += "...(truncated)"
		}
	}

	return fmt.Sprintf(`Analyze this file based on its metadata and content:
Filename: %s
File type: %s
File size: %.2f KB%s

Your task:
1. Provide a detailed summary of what this file contains based on the content preview
2. Identify the main purpose, topic, or function of this file
3. For code files: identify the programming language, key functions, classes, or algorithms
4. For data files: describe the data structure, key fields, and what the data represents
5. For text documents: summarize the main topics, key points, and document type
6. Identify any domain-specific terminology or concepts (e.g., medical, scientific, business)

Be specific and detailed in your analysis. Focus on the actual content rather than making generic statements.
Highlight any patterns, structures, or important elements in the file.
If the file appears to be part of a larger system or project, explain its likely role.
`, filename, category, sizeKB, snippet)
}
