package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vidai-studio/app/config"
	"vidai-studio/app/gemini"
	"vidai-studio/app/logger"
	"vidai-studio/app/media"
	"vidai-studio/app/model"
	"vidai-studio/app/service"
	"vidai-studio/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher writes a small audio file and reports a fixed title.
type stubFetcher struct {
	title string
	fail  bool
}

func (f *stubFetcher) Fetch(ctx context.Context, url string, spec media.Spec) (media.Metadata, error) {
	if f.fail {
		return media.Metadata{}, os.ErrNotExist
	}
	path := spec.OutputPath
	if spec.ExtractAudio {
		path += ".mp3"
	}
	if err := os.WriteFile(path, make([]byte, 2*1024*1024), 0o644); err != nil {
		return media.Metadata{}, err
	}
	return media.Metadata{Title: f.title}, nil
}

// stubAI answers instantly with a fixed generation result.
type stubAI struct {
	result string
}

func (a *stubAI) UploadFile(ctx context.Context, apiKey, path string) (*gemini.File, error) {
	return &gemini.File{Name: "files/f1", URI: "uri", MimeType: "audio/mpeg", State: gemini.FileStateActive}, nil
}

func (a *stubAI) GetFile(ctx context.Context, apiKey, name string) (*gemini.File, error) {
	return &gemini.File{Name: name, State: gemini.FileStateActive}, nil
}

func (a *stubAI) GenerateContent(ctx context.Context, apiKey, modelID, prompt string, file *gemini.File) (string, error) {
	return a.result, nil
}

type fixture struct {
	router   *gin.Engine
	registry *service.Registry
	store    *storage.Store
	tempDir  string
}

func newFixture(t *testing.T, fetcher service.Fetcher, ai service.AIClient) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(config.LogConfig{Level: "error", Format: "text", Output: "stdout"})
	store, err := storage.New(t.TempDir(), 50, log)
	require.NoError(t, err)

	registry := service.NewRegistry(service.DefaultJobTTL)
	tempDir := t.TempDir()
	generateSvc := service.NewGenerateService(registry, store, fetcher, ai, log, tempDir, 20)
	downloadSvc := service.NewDownloadService(registry, fetcher, log, tempDir)

	generateHandler := NewGenerateHandler(generateSvc, registry, store, log)
	downloadHandler := NewDownloadHandler(downloadSvc, registry, log)
	settingsHandler := NewSettingsHandler(store)
	historyHandler := NewHistoryHandler(store)
	modelsHandler := NewModelsHandler()

	router := gin.New()
	api := router.Group("/api")
	api.GET("/config", settingsHandler.Get)
	api.POST("/config", settingsHandler.Update)
	api.GET("/models", modelsHandler.List)
	api.POST("/generate", generateHandler.Generate)
	api.GET("/status/:job_id", generateHandler.Status)
	api.POST("/download", downloadHandler.Start)
	api.GET("/download/file/:job_id", downloadHandler.ServeFile)
	api.GET("/history", historyHandler.List)
	api.DELETE("/history", historyHandler.Clear)
	api.DELETE("/history/:id", historyHandler.Delete)

	return &fixture{router: router, registry: registry, store: store, tempDir: tempDir}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) setAPIKey(t *testing.T) {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/config", gin.H{"api_key": "test-key"})
	require.Equal(t, http.StatusOK, w.Code)
}

// pollUntilTerminal polls the status endpoint like the browser UI does.
func (f *fixture) pollUntilTerminal(t *testing.T, jobID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := f.do(t, http.MethodGet, "/api/status/"+jobID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var job map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
		if s := job["status"]; s == model.JobStatusDone || s == model.JobStatusError {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return nil
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	f := newFixture(t, &stubFetcher{}, &stubAI{})
	w := f.do(t, http.MethodPost, "/api/generate", gin.H{"url": "https://youtube.com/watch?v=abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API Key not set")
}

func TestGenerateValidatesURL(t *testing.T) {
	f := newFixture(t, &stubFetcher{}, &stubAI{})
	f.setAPIKey(t)

	w := f.do(t, http.MethodPost, "/api/generate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "URL is required")

	w = f.do(t, http.MethodPost, "/api/generate", gin.H{"url": "not-a-url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid URL format")
}

func TestGenerateEndToEnd(t *testing.T) {
	f := newFixture(t, &stubFetcher{title: "Test Video"}, &stubAI{result: "## Summary\n- point one"})
	f.setAPIKey(t)

	w := f.do(t, http.MethodPost, "/api/generate", gin.H{
		"url":   "https://youtube.com/watch?v=abc",
		"lang":  "English",
		"style": "Summary",
		"model": "gemini-1.5-flash",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		JobID   string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.JobID, 8)

	job := f.pollUntilTerminal(t, resp.JobID)
	require.Equal(t, model.JobStatusDone, job["status"])
	assert.Equal(t, float64(100), job["progress"])
	assert.Contains(t, job["result"], "## Summary")
	assert.Equal(t, "Test Video", job["video_title"])

	// The success shows up in history, newest first.
	w = f.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		History []model.HistoryEntry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist.History, 1)
	assert.Equal(t, "youtube", hist.History[0].Platform)
	assert.Equal(t, resp.JobID, hist.History[0].ID)

	// The submission also became the new defaults.
	w = f.do(t, http.MethodGet, "/api/config", nil)
	assert.Contains(t, w.Body.String(), "\"default_lang\":\"English\"")
}

func TestDownloadValidatesFormat(t *testing.T) {
	f := newFixture(t, &stubFetcher{}, &stubAI{})
	w := f.do(t, http.MethodPost, "/api/download", gin.H{"url": "https://youtube.com/watch?v=abc", "format": "gif"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Format must be")
}

func TestDownloadFailureSurfacesInStatus(t *testing.T) {
	f := newFixture(t, &stubFetcher{fail: true}, &stubAI{})

	w := f.do(t, http.MethodPost, "/api/download", gin.H{"url": "https://youtube.com/watch?v=abc", "format": "audio"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	job := f.pollUntilTerminal(t, resp.JobID)
	require.Equal(t, model.JobStatusError, job["status"])
	assert.Contains(t, job["error"], "private or unavailable")
}

func TestStatusUnknownJob(t *testing.T) {
	f := newFixture(t, &stubFetcher{}, &stubAI{})
	w := f.do(t, http.MethodGet, "/api/status/deadbeef", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Job not found")
}

func TestServeFileLifecycle(t *testing.T) {
	f := newFixture(t, &stubFetcher{}, &stubAI{})

	w := f.do(t, http.MethodGet, "/api/download/file/deadbeef", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Not finished yet.
	require.NoError(t, f.registry.Create(model.Job{ID: "job00001", Status: model.JobStatusRunning}))
	w = f.do(t, http.MethodGet, "/api/download/file/job00001", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File not ready")

	// Finished with a file on disk.
	path := filepath.Join(f.tempDir, "dl_job00002.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video-bytes"), 0o644))
	name := "My Clip.mp4"
	require.NoError(t, f.registry.Create(model.Job{
		ID:               "job00002",
		Status:           model.JobStatusDone,
		DownloadPath:     path,
		DownloadFilename: &name,
	}))

	w = f.do(t, http.MethodGet, "/api/download/file/job00002", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "video-bytes", w.Body.String())

	// The janitor swept the file in the meantime.
	require.NoError(t, os.Remove(path))
	w = f.do(t, http.MethodGet, "/api/download/file/job00002", nil)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "File expired")
}

func TestHistoryDeleteAndClear(t *testing.T) {
	f := newFixture(t, &stubFetcher{}, &stubAI{})
	require.NoError(t, f.store.AppendHistory(model.HistoryEntry{ID: "h1"}))
	require.NoError(t, f.store.AppendHistory(model.HistoryEntry{ID: "h2"}))

	w := f.do(t, http.MethodDelete, "/api/history/h1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.store.History(), 1)

	w = f.do(t, http.MethodDelete, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.store.History())
}

func TestSettingsRejectsEmptyAPIKey(t *testing.T) {
	f := newFixture(t, &stubFetcher{}, &stubAI{})
	w := f.do(t, http.MethodPost, "/api/config", gin.H{"api_key": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "API Key cannot be empty")
}

func TestModelsCatalog(t *testing.T) {
	f := newFixture(t, &stubFetcher{}, &stubAI{})
	w := f.do(t, http.MethodGet, "/api/models", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Models []model.ModelInfo `json:"models"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Models)
	assert.Equal(t, "gemini-1.5-flash", resp.Models[0].ID)
}
