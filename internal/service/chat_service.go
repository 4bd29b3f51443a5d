package service

import (
	"context"
	"errors"
	"strings"

	"data-chat-be/internal/constant"
	"data-chat-be/internal/dto"
	"data-chat-be/internal/pkg/logger"
	"data-chat-be/internal/repository/memory"
	"data-chat-be/pkg/conversation"
	"data-chat-be/pkg/dataset"
	"data-chat-be/pkg/events"
	"data-chat-be/pkg/orchestrator"
)

var ErrSessionNotFound = errors.New("session not found")

// QueryHandler is satisfied by *orchestrator.Orchestrator.
type QueryHandler interface {
	Handle(ctx context.Context, query string) orchestrator.Result
}

type DatasetReader interface {
	Describe(ctx context.Context) (*dataset.Summary, error)
	Preview(ctx context.Context, n int) ([]map[string]string, error)
}

type IChatService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
	ResetSession(ctx context.Context, sessionId string) error
	EndSession(ctx context.Context, sessionId string)
	Suggestions(ctx context.Context) []*dto.SuggestionResponse
	DatasetPreview(ctx context.Context, rows int) (*dto.DatasetPreviewResponse, error)
}

type chatService struct {
	handler     QueryHandler
	sessionRepo *memory.SessionRepository
	dataset     DatasetReader
	publisher   IPublisherService
	logger      logger.ILogger
}

func NewChatService(
	handler QueryHandler,
	sessionRepo *memory.SessionRepository,
	datasetReader DatasetReader,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		handler:     handler,
		sessionRepo: sessionRepo,
		dataset:     datasetReader,
		publisher:   publisher,
		logger:      log,
	}
}

// Chat answers one query. Agent failures come back as response text, never as an error.
func (c *chatService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionId := strings.TrimSpace(request.SessionId)

	var conv *conversation.Conversation
	if sessionId != "" {
		conv = c.sessionRepo.GetOrCreate(sessionId)
		conv.Append(conversation.Turn{Role: conversation.RoleUser, Text: request.Query})
	}

	res := c.handler.Handle(ctx, request.Query)

	if conv != nil {
		conv.Append(conversation.Turn{Role: conversation.RoleAssistant, Text: res.Text, Image: res.Image})
	}

	c.logger.Info(constant.ModuleChat, "Query handled", map[string]interface{}{
		"request_id": res.RequestID,
		"session_id": sessionId,
		"has_image":  res.Image != nil,
		"failed":     res.Failed,
		"duration":   res.Duration.String(),
	})

	event := events.NewQueryHandled(res.RequestID, sessionId, res.Image != nil, res.Failed, res.Duration)
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn(constant.ModuleChat, "Failed to publish event", map[string]interface{}{
			"request_id": res.RequestID,
			"error":      err.Error(),
		})
	}

	return &dto.ChatResponse{
		Response: res.Text,
		Image:    res.Image,
	}, nil
}

func (c *chatService) History(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	conv, ok := c.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	turns := conv.Turns()
	res := &dto.SessionHistoryResponse{
		SessionId: sessionId,
		Turns:     make([]*dto.ChatTurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		res.Turns = append(res.Turns, &dto.ChatTurnResponse{
			Role:      t.Role,
			Text:      t.Text,
			Image:     t.Image,
			CreatedAt: t.CreatedAt,
		})
	}
	return res, nil
}

func (c *chatService) ResetSession(ctx context.Context, sessionId string) error {
	if !c.sessionRepo.Reset(sessionId) {
		return ErrSessionNotFound
	}
	c.logger.Info(constant.ModuleChat, "Session reset", map[string]interface{}{
		"session_id": sessionId,
	})
	return nil
}

// EndSession drops the conversation entirely; a later query starts fresh.
func (c *chatService) EndSession(ctx context.Context, sessionId string) {
	c.sessionRepo.Delete(sessionId)
	c.logger.Info(constant.ModuleChat, "Session ended", map[string]interface{}{
		"session_id": sessionId,
	})
}

func (c *chatService) Suggestions(ctx context.Context) []*dto.SuggestionResponse {
	res := make([]*dto.SuggestionResponse, 0, len(constant.QuickQueries))
	for _, q := range constant.QuickQueries {
		res = append(res, &dto.SuggestionResponse{Label: q.Label, Query: q.Query})
	}
	return res
}

func (c *chatService) DatasetPreview(ctx context.Context, rows int) (*dto.DatasetPreviewResponse, error) {
	summary, err := c.dataset.Describe(ctx)
	if err != nil {
		return nil, err
	}
	preview, err := c.dataset.Preview(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &dto.DatasetPreviewResponse{
		Columns: summary.Columns,
		Rows:    summary.Rows,
		Preview: preview,
	}, nil
}
