package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"synthara-assistant-go/internal/models"

	"go.uber.org/zap"
)

// Analyzer builds the structural profile of one file category
type Analyzer interface {
	Analyze(ctx context.Context, file models.UploadedFile) (*models.AnalysisResult, error)
}

const analyzerFailureText = "An error occurred while analyzing this file."

// FileAnalyzer dispatches files to the analyzer for their category. It never
// fails: errors and panics from an analyzer become an error envelope.
type FileAnalyzer struct {
	analyzers map[models.Category]Analyzer
	ai        FileAugmenter
	log       *zap.Logger
}

// NewFileAnalyzer creates the analyzer set used for uploads
func NewFileAnalyzer(ai FileAugmenter, log *zap.Logger) *FileAnalyzer {
	return &FileAnalyzer{
		analyzers: map[models.Category]Analyzer{
			models.CategoryImage:    &ImageAnalyzer{ai: ai, log: log},
			models.CategoryDocument: &DocumentAnalyzer{ai: ai},
			models.CategoryData:     &DataAnalyzer{ai: ai},
			models.CategoryCode:     &CodeAnalyzer{ai: ai},
		},
		ai:  ai,
		log: log,
	}
}

// Analyze runs the analyzer for file.Category
func (a *FileAnalyzer) Analyze(ctx context.Context, file models.UploadedFile) (result *models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Analyzer panicked",
				zap.String("filename", file.Filename),
				zap.Any("panic", r))
			result = errorEnvelope(file.Filename, fmt.Errorf("%v", r))
		}
	}()

	analyzer, ok := a.analyzers[file.Category]
	if !ok {
		return a.analyzeUnknown(ctx, file)
	}

	result, err := analyzer.Analyze(ctx, file)
	if err != nil {
		a.log.Error("Error analyzing file",
			zap.String("filename", file.Filename),
			zap.String("category", string(file.Category)),
			zap.Error(err))
		return errorEnvelope(file.Filename, err)
	}
	return result
}

func (a *FileAnalyzer) analyzeUnknown(ctx context.Context, file models.UploadedFile) *models.AnalysisResult {
	return &models.AnalysisResult{
		Type:       models.ResultTypeUnknown,
		Filename:   file.Filename,
		Size:       formatSize(file.Size),
		Analysis:   "This file type is not supported for detailed analysis.",
		AIAnalysis: aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, "")),
	}
}

func errorEnvelope(filename string, err error) *models.AnalysisResult {
	return &models.AnalysisResult{
		Type:     models.ResultTypeError,
		Filename: filename,
		Error:    err.Error(),
		Analysis: analyzerFailureText,
	}
}

// aiText maps the adapter's "" (no analysis) to a JSON null
func aiText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatSize(size int64) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

func lowerExt(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// readPrefix returns the first n characters of the file decoded as UTF-8.
// Invalid byte sequences are dropped.
func readPrefix(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(n*utf8.UTFMax)))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return truncateRunes(strings.ToValidUTF8(string(data), ""), n), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// splitLines splits on \n, \r\n and \r without producing a trailing empty line
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
