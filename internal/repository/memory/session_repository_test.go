package memory

import (
	"sync"
	"testing"
	"time"

	"data-chat-be/pkg/conversation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReturnsSameConversation(t *testing.T) {
	repo := NewSessionRepository()

	a := repo.GetOrCreate("s1")
	a.Append(conversation.Turn{Role: conversation.RoleUser, Text: "hi"})
	b := repo.GetOrCreate("s1")

	assert.Same(t, a, b)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 1, repo.Count())
}

func TestSessionsAreIsolated(t *testing.T) {
	repo := NewSessionRepository()

	repo.GetOrCreate("s1").Append(conversation.Turn{Role: conversation.RoleUser, Text: "one"})
	repo.GetOrCreate("s2").Append(conversation.Turn{Role: conversation.RoleUser, Text: "two"})

	s1, ok := repo.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "one", s1.Turns()[0].Text)
	s2, ok := repo.Get("s2")
	require.True(t, ok)
	assert.Equal(t, "two", s2.Turns()[0].Text)
}

func TestResetAndDelete(t *testing.T) {
	repo := NewSessionRepository()
	repo.GetOrCreate("s1").Append(conversation.Turn{Role: conversation.RoleUser, Text: "one"})

	assert.True(t, repo.Reset("s1"))
	conv, ok := repo.Get("s1")
	require.True(t, ok)
	assert.Empty(t, conv.RenderAll())

	assert.False(t, repo.Reset("missing"))

	repo.Delete("s1")
	_, ok = repo.Get("s1")
	assert.False(t, ok)
}

func TestSessionsExpire(t *testing.T) {
	repo := NewSessionRepositoryWithTTL(20*time.Millisecond, time.Hour)
	repo.GetOrCreate("s1")

	time.Sleep(50 * time.Millisecond)

	_, ok := repo.Get("s1")
	assert.False(t, ok)
}

func TestGetOrCreateConcurrent(t *testing.T) {
	repo := NewSessionRepository()
	convs := make([]*conversation.Conversation, 20)

	var wg sync.WaitGroup
	for i := range convs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			convs[i] = repo.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for _, c := range convs[1:] {
		assert.Same(t, convs[0], c)
	}
}
