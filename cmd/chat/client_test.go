package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"data-chat-be/internal/dto"
	"data-chat-be/pkg/conversation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskReturnsAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "s1", req.SessionId)
		img := "aGVsbG8="
		_ = json.NewEncoder(w).Encode(dto.ChatResponse{Response: "echo: " + req.Query, Image: &img})
	}))
	defer srv.Close()

	res, err := newAPIClient(srv.URL, "s1").ask("fare?")
	require.NoError(t, err)
	assert.Equal(t, "echo: fare?", res.Response)
	require.NotNil(t, res.Image)
}

func TestAskReportsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newAPIClient(url, "s1").ask("fare?")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAskRejectedIsNotUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"code":400,"message":"validation failed: query is required"}`))
	}))
	defer srv.Close()

	_, err := newAPIClient(srv.URL, "s1").ask(" ")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "query is required")
}

func TestSaveCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	turns := []conversation.RenderedTurn{
		{Role: conversation.RoleUser, Text: "plot"},
		{Role: conversation.RoleAssistant, Text: "done", Image: []byte("png-bytes")},
	}

	files, err := saveCharts(dir, turns)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "turn-002.png", filepath.Base(files[0]))

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}
