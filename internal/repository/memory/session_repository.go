package memory

import (
	"time"

	"data-chat-be/pkg/conversation"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keys conversations by caller-supplied session id.
// Entries expire after an hour without activity; nothing survives a restart.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	return NewSessionRepositoryWithTTL(1*time.Hour, 10*time.Minute)
}

func NewSessionRepositoryWithTTL(ttl, cleanupInterval time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, cleanupInterval),
	}
}

// GetOrCreate returns the session's conversation and refreshes its expiry.
func (r *SessionRepository) GetOrCreate(sessionID string) *conversation.Conversation {
	if x, found := r.cache.Get(sessionID); found {
		conv := x.(*conversation.Conversation)
		r.cache.Set(sessionID, conv, cache.DefaultExpiration)
		return conv
	}

	conv := conversation.New()
	if err := r.cache.Add(sessionID, conv, cache.DefaultExpiration); err != nil {
		// Lost a race with another request for the same id; use the winner.
		if x, found := r.cache.Get(sessionID); found {
			return x.(*conversation.Conversation)
		}
		r.cache.Set(sessionID, conv, cache.DefaultExpiration)
	}
	return conv
}

func (r *SessionRepository) Get(sessionID string) (*conversation.Conversation, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*conversation.Conversation), true
	}
	return nil, false
}

// Reset clears the session's turns but keeps the session itself.
func (r *SessionRepository) Reset(sessionID string) bool {
	conv, ok := r.Get(sessionID)
	if !ok {
		return false
	}
	conv.Reset()
	return true
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
