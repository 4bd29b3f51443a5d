package service

import (
	"context"
	"testing"
	"time"

	"data-chat-be/internal/pkg/logger"
	"data-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishedEventsReachStats(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := NewStatsService(nil)
	consumer := NewConsumerService(pubSub, "query.handled", stats, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(pubSub, "query.handled")
	require.NoError(t, publisher.Publish(ctx, events.NewQueryHandled("r1", "s1", true, false, 40*time.Millisecond)))
	require.NoError(t, publisher.Publish(ctx, events.NewQueryHandled("r2", "", false, true, 60*time.Millisecond)))

	assert.Eventually(t, func() bool {
		return stats.Snapshot().QueriesHandled == 2
	}, time.Second, 10*time.Millisecond)

	snap := stats.Snapshot()
	assert.Equal(t, int64(1), snap.ImagesReturned)
	assert.Equal(t, int64(1), snap.Failures)
	assert.Equal(t, int64(50), snap.AvgDurationMs)
}

func TestMalformedMessageIsAcked(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := NewStatsService(nil)
	consumer := NewConsumerService(pubSub, "query.handled", stats, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, pubSub.Publish("query.handled", message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	require.NoError(t, NewPublisherService(pubSub, "query.handled").
		Publish(ctx, events.NewQueryHandled("r1", "", false, false, time.Millisecond)))

	assert.Eventually(t, func() bool {
		return stats.Snapshot().QueriesHandled == 1
	}, time.Second, 10*time.Millisecond)
}
