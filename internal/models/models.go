package models

import (
	"time"

	"gorm.io/gorm"
)

// Upload tracks files accepted by the upload endpoint
type Upload struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UUID             string         `gorm:"uniqueIndex;not null" json:"uuid"`
	OriginalFilename string         `gorm:"type:varchar(255);not null" json:"original_filename"`
	Filename         string         `gorm:"type:varchar(255);not null;index" json:"filename"` // sanitized, identity of the stored file
	StoredPath       string         `gorm:"not null" json:"stored_path"`
	FileSize         int64          `json:"file_size"`
	FileHash         string         `gorm:"index;not null" json:"file_hash"` // SHA256 hex digest
	Category         string         `gorm:"type:varchar(20);not null;index" json:"category"`
	UploadedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"uploaded_at"`
	Status           string         `gorm:"type:varchar(50);not null;index" json:"status"` // stored, analyzed, failed
	ErrorMessage     *string        `json:"error_message,omitempty"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Analyses []Analysis `gorm:"constraint:OnDelete:CASCADE" json:"analyses,omitempty"`
}

// Analysis stores the result envelope produced for an upload
type Analysis struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UploadID     uint      `gorm:"not null;index" json:"upload_id"`
	ResultType   string    `gorm:"type:varchar(100);not null;index" json:"result_type"` // "text document", "CSV data", "error", ...
	ResultData   string    `gorm:"type:text;not null" json:"result_data"`                // JSON envelope
	IsAIEnhanced bool      `gorm:"default:false" json:"is_ai_enhanced"`
	AIProvider   *string   `gorm:"type:varchar(50)" json:"ai_provider,omitempty"` // gemini, openai, anthropic
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}
