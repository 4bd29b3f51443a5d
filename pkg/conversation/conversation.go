package conversation

import (
	"encoding/base64"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one chat message. Image holds the base64 chart, if any.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RenderedTurn is a Turn with its image decoded back to raw bytes.
type RenderedTurn struct {
	Role      string
	Text      string
	Image     []byte
	CreatedAt time.Time
}

// Conversation is an append-only log of turns. The only removal is Reset.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

func New() *Conversation {
	return &Conversation{}
}

func (c *Conversation) Append(turn Turn) {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.mu.Unlock()
}

func (c *Conversation) Reset() {
	c.mu.Lock()
	c.turns = nil
	c.mu.Unlock()
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Turns returns a copy in insertion order.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// RenderAll returns every turn in insertion order with images decoded.
// A turn whose image does not decode is rendered as text only.
func (c *Conversation) RenderAll() []RenderedTurn {
	turns := c.Turns()
	out := make([]RenderedTurn, 0, len(turns))
	for _, t := range turns {
		r := RenderedTurn{Role: t.Role, Text: t.Text, CreatedAt: t.CreatedAt}
		if t.Image != nil {
			if data, err := base64.StdEncoding.DecodeString(*t.Image); err == nil {
				r.Image = data
			}
		}
		out = append(out, r)
	}
	return out
}
