package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"synthara-assistant-go/internal/config"
	"synthara-assistant-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const analysisDisclaimer = "This analysis is based on file structure and metadata. For a more comprehensive analysis, specialized tools would be required."

// Upload rejections. Nothing is written to disk when one of these is returned.
var (
	ErrNoSelectedFile     = errors.New("no selected file")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrUploadNotFound     = errors.New("upload not found")
)

// UploadService validates, stores and analyzes uploaded files
type UploadService struct {
	cfg      *config.Config
	db       *gorm.DB
	analyzer *FileAnalyzer
	provider string
	log      *zap.Logger
}

// NewUploadService creates a new upload service. db may be nil, in which
// case uploads are analyzed but not recorded. provider names the model
// backend recorded alongside AI enhanced analyses.
func NewUploadService(cfg *config.Config, db *gorm.DB, analyzer *FileAnalyzer, provider string, log *zap.Logger) *UploadService {
	return &UploadService{
		cfg:      cfg,
		db:       db,
		analyzer: analyzer,
		provider: provider,
		log:      log,
	}
}

// HandleUpload stores the file under its sanitized name and returns its analysis.
// size is the length announced by the client; the stream is also capped while copying.
func (s *UploadService) HandleUpload(ctx context.Context, originalFilename string, r io.Reader, size int64) (*models.AnalysisResult, error) {
	if originalFilename == "" {
		return nil, ErrNoSelectedFile
	}
	if !IsAllowed(originalFilename) {
		return nil, ErrFileTypeNotAllowed
	}
	if size > s.cfg.Upload.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	// The sanitized name must still carry an allowed extension
	filename := SanitizeFilename(originalFilename)
	if filename == "" || !IsAllowed(filename) {
		return nil, ErrFileTypeNotAllowed
	}

	storedPath, err := sanitizePath(filename, s.cfg.Directories.UploadsDir)
	if err != nil {
		return nil, ErrFileTypeNotAllowed
	}

	written, fileHash, err := s.persist(r, storedPath)
	if err != nil {
		return nil, err
	}

	file := models.UploadedFile{
		Filename: filename,
		Path:     storedPath,
		Size:     written,
		Category: Classify(filename),
	}

	result := s.analyzer.Analyze(ctx, file)
	result.FileTypeDescription = DescribeFileType(filename)
	result.Disclaimer = analysisDisclaimer

	if result.HasAIAnalysis() {
		s.log.Info("File analysis used AI capabilities", zap.String("filename", filename))
	} else {
		s.log.Info("File analysis used basic analysis only", zap.String("filename", filename))
	}

	s.record(originalFilename, file, fileHash, result)

	return result, nil
}

// persist writes r to a temp file in the upload area and renames it into place
func (s *UploadService) persist(r io.Reader, storedPath string) (int64, string, error) {
	dir := filepath.Dir(storedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	tempPath := filepath.Join(dir, "."+uuid.New().String()+".tmp")
	tempFile, err := os.Create(tempPath)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tempFile.Close()
	defer os.Remove(tempPath) // Clean up temp file on error

	// Copy file content and calculate hash
	hash := sha256.New()
	multiWriter := io.MultiWriter(tempFile, hash)

	limit := s.cfg.Upload.MaxFileSize
	written, err := io.Copy(multiWriter, io.LimitReader(r, limit+1))
	if err != nil {
		return 0, "", fmt.Errorf("failed to write file: %w", err)
	}
	if written > limit {
		return 0, "", ErrFileTooLarge
	}

	// Close temp file before rename
	if err := tempFile.Close(); err != nil {
		return 0, "", fmt.Errorf("failed to close temp file: %w", err)
	}

	// Atomic rename: temp file → final file
	if err := os.Rename(tempPath, storedPath); err != nil {
		return 0, "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	return written, hex.EncodeToString(hash.Sum(nil)), nil
}

// record stores the upload and its analysis. Failures are logged only.
func (s *UploadService) record(originalFilename string, file models.UploadedFile, fileHash string, result *models.AnalysisResult) {
	if s.db == nil {
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("Failed to encode analysis for storage", zap.String("filename", file.Filename), zap.Error(err))
		return
	}

	upload := models.Upload{
		UUID:             uuid.New().String(),
		OriginalFilename: originalFilename,
		Filename:         file.Filename,
		StoredPath:       file.Path,
		FileSize:         file.Size,
		FileHash:         fileHash,
		Category:         string(file.Category),
		UploadedAt:       time.Now().UTC(),
		Status:           "analyzed",
	}
	if result.Type == models.ResultTypeError {
		upload.Status = "failed"
		upload.ErrorMessage = &result.Error
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&upload).Error; err != nil {
			return fmt.Errorf("failed to create upload record: %w", err)
		}

		analysis := models.Analysis{
			UploadID:     upload.ID,
			ResultType:   result.Type,
			ResultData:   string(body),
			IsAIEnhanced: result.HasAIAnalysis(),
		}
		if analysis.IsAIEnhanced && s.provider != "" {
			provider := s.provider
			analysis.AIProvider = &provider
		}

		if err := tx.Create(&analysis).Error; err != nil {
			return fmt.Errorf("failed to create analysis record: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("Failed to record upload", zap.String("filename", file.Filename), zap.Error(err))
		return
	}

	s.log.Info("Upload recorded",
		zap.Uint("upload_id", upload.ID),
		zap.String("uuid", upload.UUID),
		zap.String("hash", fileHash),
		zap.Int64("size", file.Size),
	)
}

// GetUpload retrieves an upload with its stored analyses
func (s *UploadService) GetUpload(id uint) (*models.Upload, error) {
	if s.db == nil {
		return nil, ErrUploadNotFound
	}

	var upload models.Upload
	if err := s.db.Preload("Analyses").First(&upload, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrUploadNotFound, id)
		}
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return &upload, nil
}

// ListUploads lists uploads with pagination, newest first
func (s *UploadService) ListUploads(page, limit int) ([]models.Upload, int64, error) {
	if s.db == nil {
		return []models.Upload{}, 0, nil
	}

	var uploads []models.Upload
	var total int64

	offset := (page - 1) * limit

	// Get total count
	if err := s.db.Model(&models.Upload{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count uploads: %w", err)
	}

	// Get paginated results
	if err := s.db.
		Order("uploaded_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&uploads).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list uploads: %w", err)
	}

	return uploads, total, nil
}
