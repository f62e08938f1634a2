package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"synthara-assistant-go/internal/llm"
	"synthara-assistant-go/internal/models"

	"github.com/stretchr/testify/require"
)

// fakeAugmenter records the content handed to the AI adapter
type fakeAugmenter struct {
	mu       sync.Mutex
	reply    string
	contents []string
}

func (f *fakeAugmenter) AnalyzeFile(_ context.Context, _ string, _ models.Category, _ string, content string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = append(f.contents, content)
	return f.reply
}

func (f *fakeAugmenter) lastContent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.contents) == 0 {
		return ""
	}
	return f.contents[len(f.contents)-1]
}

// fakeGenerator is a scripted llm.Generator
type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	block   bool
	prompts []string
	configs []llm.GenerationConfig
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, cfg llm.GenerationConfig) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.configs = append(g.configs, cfg)
	g.mu.Unlock()

	if g.block {
		<-ctx.Done()
		return "", llm.ClassifyError(ctx.Err(), g.Provider())
	}
	return g.text, g.err
}

func (g *fakeGenerator) Provider() string { return "fake" }

func (g *fakeGenerator) Model() string { return "fake-model" }

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// writeTestFile writes content into dir and describes it as an upload
func writeTestFile(t *testing.T, dir, name, content string) models.UploadedFile {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return models.UploadedFile{
		Filename: name,
		Path:     path,
		Size:     int64(len(content)),
		Category: Classify(name),
	}
}
