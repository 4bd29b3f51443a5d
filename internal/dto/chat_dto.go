package dto

import (
	"time"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query     string `json:"query" validate:"required,notblank"`
	SessionId string `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

// ChatResponse is the body returned by POST /chat. Image is base64 PNG or null.
type ChatResponse struct {
	Response string  `json:"response"`
	Image    *string `json:"image"`
}

type ChatTurnResponse struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionHistoryResponse struct {
	SessionId string              `json:"session_id"`
	Turns     []*ChatTurnResponse `json:"turns"`
}

type SuggestionResponse struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

// QueryHandledMessage is the watermill payload published after every query.
type QueryHandledMessage struct {
	RequestId  string `json:"request_id"`
	SessionId  string `json:"session_id"`
	HasImage   bool   `json:"has_image"`
	Failed     bool   `json:"failed"`
	DurationMs int64  `json:"duration_ms"`
	OccurredAt string `json:"occurred_at"`
}

type StatsResponse struct {
	QueriesHandled int64 `json:"queries_handled"`
	ImagesReturned int64 `json:"images_returned"`
	Failures       int64 `json:"failures"`
	AvgDurationMs  int64 `json:"avg_duration_ms"`
	ActiveSessions int   `json:"active_sessions"`
}
