package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"data-chat-be/internal/dto"
	"data-chat-be/pkg/conversation"
)

// ErrUnavailable means the backend could not be reached at all.
var ErrUnavailable = errors.New("service unavailable")

type apiClient struct {
	baseURL   string
	sessionID string
	http      *http.Client
}

func newAPIClient(baseURL, sessionID string) *apiClient {
	// No timeout: the agent may take minutes on a chart.
	return &apiClient{baseURL: baseURL, sessionID: sessionID, http: &http.Client{}}
}

func (c *apiClient) ask(query string) (*dto.ChatResponse, error) {
	body, _ := json.Marshal(dto.ChatRequest{Query: query, SessionId: c.sessionID})

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	case resp.StatusCode != http.StatusOK:
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &envelope)
		return nil, fmt.Errorf("request rejected (%s): %s", resp.Status, envelope.Message)
	}

	var out dto.ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func (c *apiClient) reset() error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/session/v1/"+c.sessionID, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()
	// 404 means the server never saw this session; nothing to clear.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("reset failed: %s", resp.Status)
	}
	return nil
}

// saveCharts writes each decoded chart of the conversation to dir and
// returns the file names in turn order.
func saveCharts(dir string, turns []conversation.RenderedTurn) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var files []string
	for i, t := range turns {
		if len(t.Image) == 0 {
			continue
		}
		name := filepath.Join(dir, fmt.Sprintf("turn-%03d.png", i+1))
		if err := os.WriteFile(name, t.Image, 0o644); err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}
