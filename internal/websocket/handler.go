package websocket

import (
	"context"

	"data-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NewChatHandler serves /ws/chat. A missing session_id gets a fresh one that
// lives only as long as the connection.
func NewChatHandler(ctx context.Context, hub *Hub, chat service.IChatService) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		sessionID := c.Query("session_id")
		if sessionID != "" {
			ServeWs(ctx, hub, c, sessionID, chat)
			return
		}

		sessionID = uuid.NewString()
		ServeWs(ctx, hub, c, sessionID, chat)
		chat.EndSession(ctx, sessionID)
	})
}

// ServeWs handles websocket requests from the peer.
func ServeWs(ctx context.Context, hub *Hub, c *websocket.Conn, sessionID string, chat service.IChatService) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, Send: make(chan []byte, 16), chat: chat}
	select {
	case hub.register <- client:
	case <-hub.done:
		c.Close()
		return
	}

	go client.writePump()
	client.readPump(ctx) // Run readPump in current goroutine (handler)
}
