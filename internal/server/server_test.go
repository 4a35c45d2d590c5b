package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat-be/internal/bootstrap"
	"docchat-be/internal/config"
	"docchat-be/internal/controller"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/service"
	"docchat-be/pkg/documents"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/llm"
)

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}},
	}, nil
}

type staticLLM struct{}

func (staticLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return "static answer", nil
}

func (staticLLM) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return "static answer", nil
}

type noopPublisher struct{}

func (noopPublisher) PublishFileRelease(sessionID string, paths []string) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "development",
			LogFilePath:        t.TempDir() + "/app.log",
			CorsAllowedOrigins: "http://localhost:5173",
			UploadDir:          t.TempDir(),
			CleanupTopic:       "SESSION_FILE_RELEASE",
		},
		Session: config.SessionConfig{TTL: 30 * time.Minute, SweepInterval: 5 * time.Minute},
		Upload:  config.UploadConfig{MaxFileSize: 10 * 1024 * 1024, MaxFileCount: 5},
		Rag:     config.RagConfig{ChunkSize: 600, ChunkOverlap: 150, TopK: 3, Temperature: 0.2},
	}
}

func newTestServer(t *testing.T) (*fiber.App, service.ISessionService) {
	t.Helper()

	cfg := testConfig(t)
	log := noopLogger{}

	sessions := service.NewSessionService(log)
	publisher := noopPublisher{}
	ingest := service.NewIngestService(
		sessions, documents.NewFileLoader(), fakeEmbedder{}, publisher,
		cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap, log,
	)
	rag := service.NewRagService(sessions, fakeEmbedder{}, staticLLM{}, cfg.Rag.TopK, cfg.Rag.Temperature, log)

	container := &bootstrap.Container{
		UploadController:  controller.NewUploadController(ingest, publisher, cfg, log),
		ChatController:    controller.NewChatController(rag),
		SessionController: controller.NewSessionController(sessions, publisher, log),
		SessionService:    sessions,
		Logger:            log,
	}

	return New(cfg, container).GetApp(), sessions
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestServer(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.Success)
}

func TestSessionIssuedAndReused(t *testing.T) {
	app, sessions := newTestServer(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.NoError(t, err)
	res.Body.Close()

	issued := res.Header.Get(serverutils.SessionHeader)
	require.NotEmpty(t, issued, "every response carries the resolved session id")
	assert.True(t, sessions.Exists(issued))

	// Presenting the issued id keeps the same session.
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set(serverutils.SessionHeader, issued)
	res, err = app.Test(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, issued, res.Header.Get(serverutils.SessionHeader))
	assert.Equal(t, 1, sessions.Count())
}

func TestUnknownSessionIDIsReplaced(t *testing.T) {
	app, sessions := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set(serverutils.SessionHeader, "forged-session-id")
	res, err := app.Test(req)
	require.NoError(t, err)
	res.Body.Close()

	issued := res.Header.Get(serverutils.SessionHeader)
	assert.NotEqual(t, "forged-session-id", issued)
	assert.True(t, sessions.Exists(issued))
	assert.False(t, sessions.Exists("forged-session-id"))
}

func TestClearSessionIssuesFreshID(t *testing.T) {
	app, sessions := newTestServer(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.NoError(t, err)
	res.Body.Close()
	original := res.Header.Get(serverutils.SessionHeader)

	req := httptest.NewRequest(http.MethodDelete, "/api/session", nil)
	req.Header.Set(serverutils.SessionHeader, original)
	res, err = app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	replacement := res.Header.Get(serverutils.SessionHeader)
	assert.NotEqual(t, original, replacement)
	assert.False(t, sessions.Exists(original))
	assert.True(t, sessions.Exists(replacement))
}

func TestChatValidation(t *testing.T) {
	app, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing question", `{}`},
		{"blank question", `{"question": "   "}`},
		{"malformed json", `{"question": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			res, err := app.Test(req)
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, http.StatusBadRequest, res.StatusCode)

			var body envelope
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestChatWithoutDocuments(t *testing.T) {
	app, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"question":"hello?"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "No documents uploaded")
}

func TestChatHistoryEmptySession(t *testing.T) {
	app, _ := newTestServer(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/chat/history", nil))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, 0, body.Data.Count)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	app, _ := newTestServer(t)

	body, contentType := multipartBody(t, "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Unsupported file type")
}

func TestUploadRejectsEmptyForm(t *testing.T) {
	app, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewBufferString(""))
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}
