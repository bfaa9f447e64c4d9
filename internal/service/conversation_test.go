package service

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/repository"
)

type conversationFixture struct {
	conv    *Conversation
	history *ChatHistory
	catalog *DocumentCatalog
	backend *fakeBackend
	srv     *httptest.Server
	clock   *time.Time
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()
	fb, srv := newFakeBackend(t)
	store := repository.NewMemoryStore()

	clock := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	history := NewChatHistory(store)
	history.now = now
	catalog := NewDocumentCatalog(store, &fakeObjectStore{})
	catalog.now = now

	conv := NewConversation(history, catalog, NewOrchestrator(NewBackendClient(srv.URL)))
	conv.now = now
	return &conversationFixture{conv: conv, history: history, catalog: catalog, backend: fb, srv: srv, clock: &clock}
}

func (f *conversationFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestConversationCurrentStartsWithWelcome(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	session := f.conv.Current(ctx)
	assert.Equal(t, config.DefaultSessionTitle, session.Title)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, config.WelcomeMessage, session.Messages[0].Text)
	assert.False(t, session.Messages[0].IsUser)

	again := f.conv.Current(ctx)
	assert.Equal(t, session.ID, again.ID, "current session is persisted")
	assert.Empty(t, f.history.ListSessions(ctx), "current session is not archived")
}

func TestConversationSend(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	reply, err := f.conv.Send(ctx, "What do my cholesterol numbers mean for my diet", nil)
	require.NoError(t, err)
	assert.False(t, reply.IsUser)
	assert.Equal(t, "Your results look normal.", reply.Text)

	session := f.conv.Current(ctx)
	assert.Equal(t, "What do my cholesterol numbers...", session.Title)
	require.Len(t, session.Messages, 3)
	assert.True(t, session.Messages[1].IsUser)
	assert.Equal(t, reply.ID, session.Messages[2].ID)

	_, err = f.conv.Send(ctx, "And sugar?", nil)
	require.NoError(t, err)
	session = f.conv.Current(ctx)
	assert.Equal(t, "What do my cholesterol numbers...", session.Title, "title is set once")
	assert.Len(t, session.Messages, 5)
}

func TestConversationSendEmpty(t *testing.T) {
	f := newConversationFixture(t)

	_, err := f.conv.Send(context.Background(), "   \n", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	assert.Empty(t, f.backend.queries)
}

func TestConversationSendWithSelectedDocuments(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.backend.files["d1"] = "%PDF"
	docs := []domain.MedicalDocument{doc(f.srv, "d1", "mri_report.pdf"), doc(f.srv, "d2", "xray.png")}
	require.NoError(t, f.catalog.docs.replaceAll(ctx, docs))

	_, err := f.conv.Send(ctx, "Explain", []string{"d1", "unknown"})
	require.NoError(t, err)
	require.Len(t, f.backend.fileNames, 1)
	assert.Equal(t, []string{"mri_report.pdf"}, f.backend.fileNames[0])
}

func TestConversationSendBackendDown(t *testing.T) {
	f := newConversationFixture(t)
	f.srv.Close()

	reply, err := f.conv.Send(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Error: Cannot connect to backend. "+config.ErrorReplyHint, reply.Text)
	assert.Len(t, f.conv.Current(context.Background()).Messages, 3)
}

func TestConversationNewChatArchivesOnlyUsedSessions(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	first := f.conv.Current(ctx)
	fresh, err := f.conv.NewChat(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID)
	assert.Empty(t, f.history.ListSessions(ctx), "greeting-only session is dropped")

	_, err = f.conv.Send(ctx, "Is my blood pressure high", nil)
	require.NoError(t, err)
	f.advance(time.Minute)

	next, err := f.conv.NewChat(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.ID, f.conv.Current(ctx).ID)

	sessions := f.history.ListSessions(ctx)
	require.Len(t, sessions, 1)
	assert.Equal(t, fresh.ID, sessions[0].ID)
	assert.Equal(t, "Is my blood pressure high", sessions[0].Title)
	assert.Equal(t, f.clock.UTC(), sessions[0].UpdatedAt)
}

func TestConversationSwitch(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	_, err := f.conv.Send(ctx, "first question", nil)
	require.NoError(t, err)
	a := f.conv.Current(ctx)

	_, err = f.conv.NewChat(ctx)
	require.NoError(t, err)
	_, err = f.conv.Send(ctx, "second question", nil)
	require.NoError(t, err)
	b := f.conv.Current(ctx)

	switched, err := f.conv.Switch(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, switched.ID)
	assert.Equal(t, a.ID, f.conv.Current(ctx).ID)

	ids := []string{}
	for _, s := range f.history.ListSessions(ctx) {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids, "switching archives the active session")

	_, err = f.conv.Switch(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestConversationDeleteCurrentSession(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	_, err := f.conv.Send(ctx, "keep me", nil)
	require.NoError(t, err)
	kept := f.conv.Current(ctx)
	_, err = f.conv.NewChat(ctx)
	require.NoError(t, err)
	_, err = f.conv.Send(ctx, "delete me", nil)
	require.NoError(t, err)

	_, err = f.conv.Switch(ctx, kept.ID)
	require.NoError(t, err)
	require.Len(t, f.history.ListSessions(ctx), 2)

	require.NoError(t, f.conv.DeleteSession(ctx, kept.ID))

	current := f.conv.Current(ctx)
	assert.NotEqual(t, kept.ID, current.ID)
	assert.Len(t, current.Messages, 1)

	sessions := f.history.ListSessions(ctx)
	require.Len(t, sessions, 1)
	assert.Equal(t, "delete me", sessions[0].Title)
}

func TestConversationSessionsMostRecentFirst(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	for _, q := range []string{"one", "two", "three"} {
		_, err := f.conv.Send(ctx, q, nil)
		require.NoError(t, err)
		f.advance(time.Hour)
		_, err = f.conv.NewChat(ctx)
		require.NoError(t, err)
	}

	sessions := f.conv.Sessions(ctx)
	require.Len(t, sessions, 3)
	assert.Equal(t, "three", sessions[0].Title)
	assert.Equal(t, "one", sessions[2].Title)
}
