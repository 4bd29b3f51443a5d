package service

import (
	"context"
	"encoding/json"

	"data-chat-be/internal/constant"
	"data-chat-be/internal/dto"
	"data-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	stats      IStatsService
	audit      logger.ILogger
}

// NewConsumerService feeds query.handled events into stats and the audit log.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	stats IStatsService,
	audit logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		stats:      stats,
		audit:      audit,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.QueryHandledMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.audit.Error(constant.ModuleConsumer, "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack invalid messages to prevent infinite redelivery
		msg.Ack()
		return
	}

	cs.stats.Record(payload)
	cs.audit.Info(constant.ModuleConsumer, "Query audited", map[string]interface{}{
		"request_id":  payload.RequestId,
		"session_id":  payload.SessionId,
		"has_image":   payload.HasImage,
		"failed":      payload.Failed,
		"duration_ms": payload.DurationMs,
		"occurred_at": payload.OccurredAt,
	})
	msg.Ack()
}
