package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"synthara-assistant-go/internal/config"
	"synthara-assistant-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the database, runs migrations and prepares the upload area
func Initialize(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.Database.Path, log)
	if err != nil {
		return nil, err
	}

	// Get underlying SQLite connection to configure
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Initialize data directories
	if err := initializeDirectories(cfg, log); err != nil {
		return nil, fmt.Errorf("failed to initialize directories: %w", err)
	}

	log.Info("Database initialized successfully", zap.String("path", cfg.Database.Path))
	return db, nil
}

// Open connects to the SQLite file at path and migrates the schema
func Open(path string, log *zap.Logger) (*gorm.DB, error) {
	// Ensure database directory exists
	dbDir := filepath.Dir(path)
	if dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // We'll use zap for logging
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Enable foreign key constraints
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *gorm.DB, log *zap.Logger) error {
	models := []interface{}{
		&models.Upload{},
		&models.Analysis{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Info("Database migrations completed")
	return nil
}

// createIndexes creates composite indexes that GORM doesn't create automatically
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_uploads_category_uploaded ON uploads(category, uploaded_at)",
		"CREATE INDEX IF NOT EXISTS idx_analyses_upload_created ON analyses(upload_id, created_at)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// initializeDirectories creates all required data directories
func initializeDirectories(cfg *config.Config, log *zap.Logger) error {
	dirs := []string{
		cfg.Directories.UploadsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		// Verify write permissions
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			return fmt.Errorf("directory %s is not writable: %w", dir, err)
		}
		os.Remove(testFile)

		log.Info("Directory initialized", zap.String("path", dir))
	}

	return nil
}

// Ping checks that the connection is usable
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Ping()
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
