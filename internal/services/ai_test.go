package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"synthara-assistant-go/internal/config"
	"synthara-assistant-go/internal/llm"
	"synthara-assistant-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func aiTestConfig(key string) *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:        config.ProviderGemini,
			GeminiAPIKey:    key,
			AnalysisEnabled: true,
			RequestTimeout:  time.Second,
		},
	}
}

func TestAIServiceAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	file := writeTestFile(t, dir, "notes.txt", "hello world")
	gen := &fakeGenerator{text: "  A greeting.  \n"}
	s := NewAIService(aiTestConfig("key"), gen, zap.NewNop())

	text := s.AnalyzeFile(context.Background(), file.Path, file.Category, file.Filename, "hello world")

	assert.Equal(t, "A greeting.", text)
	require.Equal(t, 1, gen.calls())
	assert.Equal(t, float32(0.2), gen.configs[0].Temperature)
	assert.Equal(t, 150, gen.configs[0].MaxOutputTokens)

	prompt := gen.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Analyze this file based on its metadata and content:\nFilename: notes.txt\nFile type: document\nFile size: 0.01 KB\nContent preview:\nhello world\n"))
	assert.NotContains(t, prompt, "(truncated)")
}

func TestBuildFilePromptTruncatesPreview(t *testing.T) {
	content := strings.Repeat("x", 1200)
	prompt := buildFilePrompt("long.txt", models.CategoryDocument, 1200, content)

	assert.Contains(t, prompt, "Content preview:\n"+strings.Repeat("x", 1000)+"...(truncated)\n")
}

func TestBuildFilePromptLargeFileMetadataOnly(t *testing.T) {
	prompt := buildFilePrompt("dump.csv", models.CategoryData, 200*1024, "id,name")

	assert.True(t, strings.HasPrefix(prompt, "Analyze this file based on its metadata:\n"))
	assert.Contains(t, prompt, "File size: 200.00 KB\n(Content too large to include)")
	assert.NotContains(t, prompt, "id,name")
}

func TestBuildFilePromptWithoutContent(t *testing.T) {
	prompt := buildFilePrompt("photo.png", models.CategoryImage, 2048, "")
	assert.Contains(t, prompt, "File size: 2.00 KB\n\nYour task:")
	assert.NotContains(t, prompt, "Content preview")
}

func TestAIServiceAnalyzeFileDisabled(t *testing.T) {
	dir := t.TempDir()
	file := writeTestFile(t, dir, "notes.txt", "hello")

	tests := []struct {
		name string
		cfg  *config.Config
		gen  *fakeGenerator
	}{
		{"no key", aiTestConfig(""), &fakeGenerator{text: "x"}},
		{"placeholder key", aiTestConfig("your_api_key_here"), &fakeGenerator{text: "x"}},
		{"analysis switched off", func() *config.Config {
			c := aiTestConfig("key")
			c.AI.AnalysisEnabled = false
			return c
		}(), &fakeGenerator{text: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAIService(tt.cfg, tt.gen, zap.NewNop())
			assert.Equal(t, "", s.AnalyzeFile(context.Background(), file.Path, file.Category, file.Filename, "hello"))
			assert.Equal(t, 0, tt.gen.calls())
		})
	}

	s := NewAIService(aiTestConfig("key"), nil, zap.NewNop())
	assert.False(t, s.Available())
	assert.Equal(t, "", s.Provider())
	assert.Equal(t, "", s.AnalyzeFile(context.Background(), file.Path, file.Category, file.Filename, "hello"))
}

func TestAIServiceAnalyzeFileFailures(t *testing.T) {
	dir := t.TempDir()
	file := writeTestFile(t, dir, "notes.txt", "hello")

	gen := &fakeGenerator{err: errors.New("upstream exploded")}
	s := NewAIService(aiTestConfig("key"), gen, zap.NewNop())
	assert.Equal(t, "", s.AnalyzeFile(context.Background(), file.Path, file.Category, file.Filename, "hello"))
	assert.Equal(t, 1, gen.calls())

	cfg := aiTestConfig("key")
	cfg.AI.RequestTimeout = 50 * time.Millisecond
	slow := &fakeGenerator{block: true}
	s = NewAIService(cfg, slow, zap.NewNop())

	start := time.Now()
	assert.Equal(t, "", s.AnalyzeFile(context.Background(), file.Path, file.Category, file.Filename, "hello"))
	assert.Less(t, time.Since(start), 5*time.Second)

	// A missing file never reaches the model
	fresh := &fakeGenerator{text: "x"}
	s = NewAIService(aiTestConfig("key"), fresh, zap.NewNop())
	assert.Equal(t, "", s.AnalyzeFile(context.Background(), dir+"/missing.txt", models.CategoryDocument, "missing.txt", ""))
	assert.Equal(t, 0, fresh.calls())
}

func TestAIServiceChat(t *testing.T) {
	gen := &fakeGenerator{text: "Sure."}
	s := NewAIService(aiTestConfig("key"), gen, zap.NewNop())

	text, err := s.Chat(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Sure.", text)
	assert.Equal(t, float32(0.4), gen.configs[0].Temperature)
	assert.Equal(t, 100, gen.configs[0].MaxOutputTokens)
	assert.Equal(t, "fake", s.Provider())
}

func TestAIServiceChatTimeout(t *testing.T) {
	cfg := aiTestConfig("key")
	cfg.AI.RequestTimeout = 50 * time.Millisecond
	s := NewAIService(cfg, &fakeGenerator{block: true}, zap.NewNop())

	_, err := s.Chat(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, llm.IsTimeout(err))
}

func TestAIServiceChatUnavailable(t *testing.T) {
	s := NewAIService(aiTestConfig(""), &fakeGenerator{}, zap.NewNop())

	_, err := s.Chat(context.Background(), "prompt")
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrorTypeAuth, llmErr.Type)
}
