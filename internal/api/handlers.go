package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"synthara-assistant-go/internal/config"
	"synthara-assistant-go/internal/database"
	"synthara-assistant-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds all handlers and dependencies
type Handler struct {
	cfg           *config.Config
	db            *gorm.DB
	uploadService *services.UploadService
	chatService   *services.ChatService
	log           *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	cfg *config.Config,
	db *gorm.DB,
	uploadService *services.UploadService,
	chatService *services.ChatService,
	log *zap.Logger,
) *Handler {
	return &Handler{
		cfg:           cfg,
		db:            db,
		uploadService: uploadService,
		chatService:   chatService,
		log:           log,
	}
}

// HealthCheck handles health check endpoint
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyCheck handles readiness check endpoint
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "database_not_configured",
		})
		return
	}

	if err := database.Ping(h.db); err != nil {
		h.log.Warn("Database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "database_ping_failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// UploadFile accepts one multipart file in the "file" field and returns its analysis
func (h *Handler) UploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Upload.MaxFileSize)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File too large", err)
			return
		}
		h.errorResponse(c, http.StatusBadRequest, "NO_FILE_PART", "No file part", err)
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		// An empty file input arrives as a plain value without a filename
		if _, ok := form.Value["file"]; ok {
			h.errorResponse(c, http.StatusBadRequest, "NO_SELECTED_FILE", "No selected file", nil)
			return
		}
		h.errorResponse(c, http.StatusBadRequest, "NO_FILE_PART", "No file part", nil)
		return
	}
	header := files[0]

	src, err := header.Open()
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", "Failed to open file", err)
		return
	}
	defer src.Close()

	result, err := h.uploadService.HandleUpload(c.Request.Context(), header.Filename, src, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSelectedFile):
			h.errorResponse(c, http.StatusBadRequest, "NO_SELECTED_FILE", "No selected file", nil)
		case errors.Is(err, services.ErrFileTypeNotAllowed):
			h.errorResponse(c, http.StatusBadRequest, "FILE_TYPE_NOT_ALLOWED", "File type not allowed", nil)
		case errors.Is(err, services.ErrFileTooLarge):
			h.errorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File too large", nil)
		default:
			h.errorResponse(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Internal server error", err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListUploads lists recorded uploads
func (h *Handler) ListUploads(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	uploads, total, err := h.uploadService.ListUploads(page, limit)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "LIST_ERROR", "Failed to list uploads", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploads": uploads,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetUpload gets one upload with its stored analysis
func (h *Handler) GetUpload(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "INVALID_ID", "Invalid upload ID", err)
		return
	}

	upload, err := h.uploadService.GetUpload(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUploadNotFound) {
			h.errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Upload not found", nil)
			return
		}
		h.errorResponse(c, http.StatusInternalServerError, "GET_ERROR", "Failed to get upload", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload": upload,
	})
}

// ChatStatus describes the chat endpoint
func (h *Handler) ChatStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"message": "SyntharaAI chat API is running. Send a POST request with a 'message' field to interact with the chatbot.",
		"example": gin.H{
			"message": "Tell me about SyntharaAI",
		},
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat answers one chat message
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// A missing or malformed body is treated as an empty message
		h.log.Debug("Invalid chat request body", zap.Error(err))
		req.Message = ""
	}

	reply := h.chatService.Respond(c.Request.Context(), req.Message)
	c.JSON(reply.Status, gin.H{
		"response": reply.Text,
	})
}

// errorResponse sends {"error": message} and logs the cause
func (h *Handler) errorResponse(c *gin.Context, status int, code, message string, err error) {
	requestID := requestIDOf(c)

	if err != nil {
		h.log.Error("Request error",
			zap.String("code", code),
			zap.String("message", message),
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	} else {
		h.log.Info("Request rejected",
			zap.String("code", code),
			zap.String("message", message),
			zap.String("request_id", requestID),
		)
	}

	c.JSON(status, gin.H{
		"error": message,
	})
}
