package websocket

import (
	"context"
	"sync"

	"data-chat-be/internal/constant"
	"data-chat-be/internal/pkg/logger"
)

type Hub struct {
	// Registered clients: SessionID -> connections (several tabs may share a session)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	done   chan struct{}
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run owns registration until ctx is done, then closes every connection's queue.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info(constant.ModuleWS, "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, clients := range h.clients {
				for _, c := range clients {
					close(c.Send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info(constant.ModuleWS, "Session has no more connections", map[string]interface{}{"session_id": client.SessionID})
	}
}

// SendToSession queues data on every connection of the session.
// A connection whose buffer is full misses the frame.
func (h *Hub) SendToSession(sessionID string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
			delivered++
		default:
			h.logger.Warn(constant.ModuleWS, "Client Send buffer full, dropping frame", map[string]interface{}{"session_id": sessionID})
		}
	}
	return delivered
}

// sendToClient queues data for one connection if it is still registered.
func (h *Hub) sendToClient(client *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[client.SessionID] {
		if c != client {
			continue
		}
		select {
		case client.Send <- data:
			return true
		default:
			return false
		}
	}
	return false
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}
