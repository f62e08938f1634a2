package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"synthara-assistant-go/internal/config"
	"synthara-assistant-go/internal/database"
	"synthara-assistant-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestUploadService(t *testing.T, withDB bool) (*UploadService, string) {
	t.Helper()
	root := t.TempDir()
	uploads := filepath.Join(root, "uploads")
	require.NoError(t, os.MkdirAll(uploads, 0755))

	cfg := &config.Config{
		Upload:      config.UploadConfig{MaxFileSize: 1024},
		Directories: config.DirectoriesConfig{UploadsDir: uploads},
	}

	var db *gorm.DB
	if withDB {
		var err error
		db, err = database.Open(filepath.Join(root, "test.db"), zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = database.Close(db) })
	}

	analyzer := NewFileAnalyzer(&fakeAugmenter{}, zap.NewNop())
	return NewUploadService(cfg, db, analyzer, "", zap.NewNop()), uploads
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestHandleUploadRejections(t *testing.T) {
	s, uploads := newTestUploadService(t, false)
	ctx := context.Background()

	_, err := s.HandleUpload(ctx, "", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrNoSelectedFile)

	_, err = s.HandleUpload(ctx, "run.sh", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)

	_, err = s.HandleUpload(ctx, "big.txt", strings.NewReader("x"), 2048)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// Announced small but streamed large
	_, err = s.HandleUpload(ctx, "liar.txt", strings.NewReader(strings.Repeat("a", 2000)), 10)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// Sanitizing leaves "txt", which has no extension
	_, err = s.HandleUpload(ctx, "$$$.txt", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)

	_, err = s.HandleUpload(ctx, "....", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)

	assert.Empty(t, dirEntries(t, uploads))
}

func TestHandleUploadText(t *testing.T) {
	s, uploads := newTestUploadService(t, false)

	result, err := s.HandleUpload(context.Background(), "My Notes.txt", strings.NewReader("SUMMARY\nhello world\n"), 20)
	require.NoError(t, err)

	assert.Equal(t, models.ResultTypeTextDocument, result.Type)
	assert.Equal(t, "My_Notes.txt", result.Filename)
	assert.Equal(t, "TXT - Plain text file", result.FileTypeDescription)
	assert.Equal(t, analysisDisclaimer, result.Disclaimer)

	data, err := os.ReadFile(filepath.Join(uploads, "My_Notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY\nhello world\n", string(data))
	assert.Equal(t, []string{"My_Notes.txt"}, dirEntries(t, uploads))

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"ai_analysis":null`)
	assert.Contains(t, string(body), `"disclaimer":`)
}

func TestHandleUploadTraversal(t *testing.T) {
	s, uploads := newTestUploadService(t, false)

	result, err := s.HandleUpload(context.Background(), "../../evil.txt", strings.NewReader("boo"), 3)
	require.NoError(t, err)

	assert.Equal(t, "evil.txt", result.Filename)
	assert.FileExists(t, filepath.Join(uploads, "evil.txt"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(filepath.Dir(uploads)), "evil.txt"))
}

func TestHandleUploadOverwritesSameName(t *testing.T) {
	s, uploads := newTestUploadService(t, false)
	ctx := context.Background()

	first, err := s.HandleUpload(ctx, "data.json", strings.NewReader(`{"a":1}`), 7)
	require.NoError(t, err)
	second, err := s.HandleUpload(ctx, "data.json", strings.NewReader(`{"a":1}`), 7)
	require.NoError(t, err)

	assert.Equal(t, first.Analysis, second.Analysis)
	assert.Equal(t, []string{"data.json"}, dirEntries(t, uploads))
}

func TestHandleUploadRecordsAnalysis(t *testing.T) {
	s, _ := newTestUploadService(t, true)
	ctx := context.Background()

	_, err := s.HandleUpload(ctx, "cities.csv", strings.NewReader("id,city\n1,Paris\n"), 16)
	require.NoError(t, err)
	_, err = s.HandleUpload(ctx, "main.py", strings.NewReader("import os\n"), 10)
	require.NoError(t, err)

	uploads, total, err := s.ListUploads(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, uploads, 2)
	assert.Equal(t, "main.py", uploads[0].Filename)
	assert.Equal(t, "cities.csv", uploads[1].Filename)
	assert.Len(t, uploads[1].FileHash, 64)

	upload, err := s.GetUpload(uploads[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "analyzed", upload.Status)
	require.Len(t, upload.Analyses, 1)
	assert.Equal(t, models.ResultTypeCSV, upload.Analyses[0].ResultType)
	assert.False(t, upload.Analyses[0].IsAIEnhanced)
	assert.Nil(t, upload.Analyses[0].AIProvider)

	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(upload.Analyses[0].ResultData), &stored))
	assert.Equal(t, "cities.csv", stored["filename"])

	page, _, err := s.ListUploads(2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "cities.csv", page[0].Filename)

	_, err = s.GetUpload(9999)
	assert.ErrorIs(t, err, ErrUploadNotFound)
}

func TestUploadServiceWithoutDatabase(t *testing.T) {
	s, _ := newTestUploadService(t, false)

	uploads, total, err := s.ListUploads(1, 10)
	require.NoError(t, err)
	assert.Empty(t, uploads)
	assert.Equal(t, int64(0), total)

	_, err = s.GetUpload(1)
	assert.ErrorIs(t, err, ErrUploadNotFound)
}
