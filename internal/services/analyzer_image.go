package services

import (
	"context"

	"synthara-assistant-go/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ImageAnalyzer reports image metadata. Pixels are never decoded.
type ImageAnalyzer struct {
	ai  FileAugmenter
	log *zap.Logger
}

func (a *ImageAnalyzer) Analyze(ctx context.Context, file models.UploadedFile) (*models.AnalysisResult, error) {
	result := &models.AnalysisResult{
		Type:     models.ResultTypeImage,
		Filename: file.Filename,
		Size:     formatSize(file.Size),
		Analysis: "This is an image file. With proper image processing libraries, I could analyze the content, detect objects, or extract text.",
	}

	// mimetype only reads the header bytes
	if mtype, err := mimetype.DetectFile(file.Path); err != nil {
		a.log.Warn("Failed to detect image type", zap.String("filename", file.Filename), zap.Error(err))
	} else {
		result.ImageDetails = &models.ImageDetails{MimeType: mtype.String()}
	}

	result.AIAnalysis = aiText(a.ai.AnalyzeFile(ctx, file.Path, file.Category, file.Filename, ""))
	return result, nil
}
