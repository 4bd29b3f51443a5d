package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"data-chat-be/internal/constant"
	"data-chat-be/internal/dto"
	"data-chat-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// ErrorFrame is sent for frames that never reach the agent.
type ErrorFrame struct {
	Error string `json:"error"`
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	SessionID string

	// Buffered channel of outbound frames.
	Send chan []byte

	chat service.IChatService
}

// readPump answers frames one at a time: the next frame is not read until
// the current query has been handled.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Hub.leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn(constant.ModuleWS, "Unexpected close", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err.Error(),
				})
			}
			return
		}

		var req dto.ChatRequest
		if err := json.Unmarshal(raw, &req); err != nil || strings.TrimSpace(req.Query) == "" {
			c.reply(ErrorFrame{Error: "query is required"})
			continue
		}
		req.SessionId = c.SessionID

		// Long agent runs must not trip the read deadline.
		c.Conn.SetReadDeadline(time.Time{})
		res, err := c.chat.Chat(ctx, &req)
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if err != nil {
			c.reply(ErrorFrame{Error: err.Error()})
			continue
		}

		data, _ := json.Marshal(res)
		c.Hub.SendToSession(c.SessionID, data)
	}
}

func (c *Client) reply(v interface{}) {
	data, _ := json.Marshal(v)
	c.Hub.sendToClient(c, data)
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per answer; answers are never merged.
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
