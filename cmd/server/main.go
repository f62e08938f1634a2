package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"synthara-assistant-go/internal/api"
	"synthara-assistant-go/internal/config"
	"synthara-assistant-go/internal/database"
	"synthara-assistant-go/internal/llm"
	"synthara-assistant-go/internal/services"
	"synthara-assistant-go/internal/services/replies"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Synthara assistant server",
		zap.String("environment", cfg.Server.Environment))

	// Initialize database
	db, err := database.Initialize(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)

	// Initialize model client
	generator, err := llm.NewGenerator(context.Background(), &cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}
	if generator == nil {
		logger.Info("Using fallback mode - no valid API key found for provider",
			zap.String("provider", cfg.AI.Provider))
	}
	logger.Info("AI file analysis status",
		zap.Bool("enabled", cfg.AI.FileAnalysisEnabled()),
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.Model))

	replyTable, err := replies.Default()
	if err != nil {
		logger.Fatal("Failed to load chat replies", zap.Error(err))
	}

	// Initialize services
	aiService := services.NewAIService(cfg, generator, logger)
	githubService := services.NewGitHubService(cfg, logger)
	analyzer := services.NewFileAnalyzer(aiService, logger)
	uploadService := services.NewUploadService(cfg, db, analyzer, aiService.Provider(), logger)
	chatService := services.NewChatService(aiService, githubService, replyTable, logger)

	// Initialize handlers
	handler := api.NewHandler(cfg, db, uploadService, chatService, logger)

	// Setup Gin router
	if cfg.Logging.Level == "debug" && cfg.Server.Environment != "production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxFileSize

	// Setup middleware and routes
	api.SetupMiddleware(router, cfg, logger)
	api.SetupRoutes(router, handler, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting",
			zap.String("address", srv.Addr),
			zap.String("chat_api", fmt.Sprintf("http://localhost:%d/api/chat", cfg.Server.Port)),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initLogger builds the logger from the logging configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths = []string{cfg.Output}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	return zapConfig.Build()
}
