package database

import (
	"path/filepath"
	"testing"

	"synthara-assistant-go/internal/config"
	"synthara-assistant-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenMigratesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Ping(db))
	assert.True(t, db.Migrator().HasTable(&models.Upload{}))
	assert.True(t, db.Migrator().HasTable(&models.Analysis{}))

	upload := models.Upload{
		UUID:             "u-1",
		OriginalFilename: "notes.txt",
		Filename:         "notes.txt",
		StoredPath:       "/tmp/notes.txt",
		FileHash:         "abc",
		Category:         "document",
		Status:           "analyzed",
	}
	require.NoError(t, db.Create(&upload).Error)
	require.NoError(t, db.Create(&models.Analysis{UploadID: upload.ID, ResultType: "text document", ResultData: "{}"}).Error)

	var loaded models.Upload
	require.NoError(t, db.Preload("Analyses").First(&loaded, upload.ID).Error)
	assert.Len(t, loaded.Analyses, 1)
}

func TestInitializeCreatesUploadDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Path:         filepath.Join(dir, "app.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Directories: config.DirectoriesConfig{UploadsDir: filepath.Join(dir, "uploads")},
	}

	db, err := Initialize(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.DirExists(t, cfg.Directories.UploadsDir)
	assert.NoFileExists(t, filepath.Join(cfg.Directories.UploadsDir, ".write_test"))
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
