package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/repository"
)

func newTestHistory(store repository.Store, now time.Time) *ChatHistory {
	h := NewChatHistory(store)
	h.now = func() time.Time { return now }
	return h
}

func testSession(id string, at time.Time) domain.ChatSession {
	return domain.ChatSession{
		ID:    id,
		Title: config.DefaultSessionTitle,
		Messages: []domain.ChatMessage{
			{ID: id + "-1", Text: config.WelcomeMessage, Timestamp: at},
		},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestTitleFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Do I have a fever and cough today", want: "Do I have a fever..."},
		{in: "What does this mean", want: "What does this mean"},
		{in: "one two three four five", want: "one two three four five"},
		{in: "  spaced   out\twords here now and more ", want: "spaced out words here now..."},
		{in: "   ", want: config.DefaultSessionTitle},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleFor(tt.in), tt.in)
	}
}

func TestChatHistorySaveAppendsThenReplaces(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := created.Add(2 * time.Hour)
	store := repository.NewMemoryStore()

	h := newTestHistory(store, created)
	require.NoError(t, h.Save(ctx, testSession("s1", created)))
	require.NoError(t, h.Save(ctx, testSession("s2", created)))

	h.now = func() time.Time { return later }
	updated := testSession("s1", created)
	updated.Title = "Blood pressure question"
	require.NoError(t, h.Save(ctx, updated))

	sessions := h.ListSessions(ctx)
	require.Len(t, sessions, 2)

	var matches []domain.ChatSession
	for _, s := range sessions {
		if s.ID == "s1" {
			matches = append(matches, s)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, "Blood pressure question", matches[0].Title)
	assert.True(t, matches[0].UpdatedAt.Equal(later))
	assert.True(t, matches[0].CreatedAt.Equal(created))
}

func TestChatHistoryDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h := newTestHistory(repository.NewMemoryStore(), now)

	require.NoError(t, h.Save(ctx, testSession("s1", now)))
	require.NoError(t, h.Save(ctx, testSession("s2", now)))

	require.NoError(t, h.Delete(ctx, "s1"))
	require.NoError(t, h.Delete(ctx, "missing"))

	sessions := h.ListSessions(ctx)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s2", sessions[0].ID)

	_, err := h.Find(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestChatHistoryCurrentSlot(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h := newTestHistory(repository.NewMemoryStore(), now)

	assert.Nil(t, h.Current(ctx))

	require.NoError(t, h.SetCurrent(ctx, testSession("s1", now)))
	require.NoError(t, h.SetCurrent(ctx, testSession("s2", now)))

	current := h.Current(ctx)
	require.NotNil(t, current)
	assert.Equal(t, "s2", current.ID)
	assert.True(t, current.Messages[0].Timestamp.Equal(now))

	// the slot is independent of the archived list
	assert.Empty(t, h.ListSessions(ctx))
}

func TestChatHistoryCorruptDataDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	h := NewChatHistory(store)

	require.NoError(t, store.Set(ctx, config.ChatHistoryKey, []byte(`{not json`)))
	require.NoError(t, store.Set(ctx, config.CurrentSessionKey, []byte(`{"id":"x","createdAt":"yesterday"}`)))

	assert.Empty(t, h.ListSessions(ctx))
	assert.Nil(t, h.Current(ctx))

	require.NoError(t, store.Set(ctx, config.ChatHistoryKey, []byte(`[{"id":"","title":"t"}]`)))
	assert.Empty(t, h.ListSessions(ctx))
}

func TestChatHistoryReadsOriginalFormat(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	h := NewChatHistory(store)

	raw := `[{"id":"1718000000000","title":"Is my cholesterol high?","messages":[` +
		`{"id":"1718000000001","text":"Is my cholesterol high?","isUser":true,"timestamp":"2024-06-10T06:13:20.001Z"},` +
		`{"id":"1718000000002","text":"Let's look.","isUser":false,"timestamp":"2024-06-10T06:13:25.000Z"}],` +
		`"createdAt":"2024-06-10T06:13:20.000Z","updatedAt":"2024-06-10T06:13:25.000Z"}]`
	require.NoError(t, store.Set(ctx, config.ChatHistoryKey, []byte(raw)))

	sessions := h.ListSessions(ctx)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Is my cholesterol high?", sessions[0].Title)
	require.Len(t, sessions[0].Messages, 2)
	assert.True(t, sessions[0].Messages[0].IsUser)
	assert.Equal(t, 2024, sessions[0].CreatedAt.Year())
}
