package events

import "time"

const TypeQueryHandled = "QUERY_HANDLED"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUERY_HANDLED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewQueryHandled describes one finished orchestrator invocation.
func NewQueryHandled(requestID, sessionID string, hasImage, failed bool, duration time.Duration) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeQueryHandled,
		Data: map[string]interface{}{
			"request_id":  requestID,
			"session_id":  sessionID,
			"has_image":   hasImage,
			"failed":      failed,
			"duration_ms": duration.Milliseconds(),
			"occurred_at": now.Format(time.RFC3339Nano),
		},
		OccurredAt: now,
	}
}
