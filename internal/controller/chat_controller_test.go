package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"data-chat-be/internal/pkg/logger"
	"data-chat-be/internal/pkg/serverutils"
	"data-chat-be/internal/repository/memory"
	"data-chat-be/internal/service"
	"data-chat-be/pkg/dataset"
	"data-chat-be/pkg/events"
	"data-chat-be/pkg/orchestrator"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	calls int
}

func (s *stubHandler) Handle(ctx context.Context, query string) orchestrator.Result {
	s.calls++
	if strings.Contains(query, "plot") {
		img := "iVBORw0KGgo="
		return orchestrator.Result{Text: "Here it is.", Image: &img}
	}
	return orchestrator.Result{Text: "The average fare was 32.20."}
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, event events.Event) error { return nil }

type stubDataset struct{}

func (stubDataset) Describe(ctx context.Context) (*dataset.Summary, error) {
	return &dataset.Summary{Columns: []string{"Name"}, Rows: 2}, nil
}

func (stubDataset) Preview(ctx context.Context, n int) ([]map[string]string, error) {
	return []map[string]string{{"Name": "Braund"}, {"Name": "Cumings"}}[:min(n, 2)], nil
}

func newTestApp(t *testing.T) (*fiber.App, *stubHandler) {
	t.Helper()
	handler := &stubHandler{}
	repo := memory.NewSessionRepository()
	chatService := service.NewChatService(handler, repo, stubDataset{}, nopPublisher{}, logger.NewNopLogger())

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatController(chatService).RegisterRoutes(app)
	NewDatasetController(chatService).RegisterRoutes(app)
	NewStatsController(service.NewStatsService(repo)).RegisterRoutes(app)
	return app, handler
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestChatEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name      string
		body      string
		wantText  string
		wantImage bool
	}{
		{name: "text answer", body: `{"query":"average fare?"}`, wantText: "The average fare was 32.20."},
		{name: "chart answer", body: `{"query":"plot ages"}`, wantText: "Here it is.", wantImage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := doJSON(t, app, http.MethodPost, "/chat", tt.body)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.wantText, out["response"])
			if tt.wantImage {
				assert.Equal(t, "iVBORw0KGgo=", out["image"])
			} else {
				v, present := out["image"]
				assert.True(t, present)
				assert.Nil(t, v)
			}
		})
	}
}

func TestChatRejectsEmptyQuery(t *testing.T) {
	app, handler := newTestApp(t)

	for _, body := range []string{`{"query":""}`, `{"query":"   "}`, `{}`} {
		code, out := doJSON(t, app, http.MethodPost, "/chat", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, false, out["success"])
	}

	code, _ := doJSON(t, app, http.MethodPost, "/chat", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 0, handler.calls)
}

func TestSessionRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	code, _ := doJSON(t, app, http.MethodGet, "/api/session/v1/s1/history", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, app, http.MethodPost, "/chat", `{"query":"plot ages","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, code)

	code, out := doJSON(t, app, http.MethodGet, "/api/session/v1/s1/history", "")
	require.Equal(t, http.StatusOK, code)
	data := out["data"].(map[string]interface{})
	turns := data["turns"].([]interface{})
	require.Len(t, turns, 2)
	assert.Equal(t, "plot ages", turns[0].(map[string]interface{})["text"])
	assert.Equal(t, "iVBORw0KGgo=", turns[1].(map[string]interface{})["image"])

	code, _ = doJSON(t, app, http.MethodDelete, "/api/session/v1/s1", "")
	assert.Equal(t, http.StatusOK, code)

	_, out = doJSON(t, app, http.MethodGet, "/api/session/v1/s1/history", "")
	data = out["data"].(map[string]interface{})
	assert.Empty(t, data["turns"])
}

func TestAuxiliaryRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	code, out := doJSON(t, app, http.MethodGet, "/api/chat/v1/suggestions", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, out["data"], 3)

	code, out = doJSON(t, app, http.MethodGet, "/api/dataset/v1/preview?rows=1", "")
	assert.Equal(t, http.StatusOK, code)
	data := out["data"].(map[string]interface{})
	assert.Len(t, data["preview"], 1)

	for _, rows := range []string{"0", "101"} {
		code, _ = doJSON(t, app, http.MethodGet, "/api/dataset/v1/preview?rows="+rows, "")
		assert.Equal(t, http.StatusBadRequest, code, rows)
	}

	code, out = doJSON(t, app, http.MethodGet, "/api/stats/v1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])

	code, out = doJSON(t, app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", out["status"])
}
