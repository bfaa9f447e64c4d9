package middleware

import (
	"context"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/medivault/internal/repository"
	"github.com/set-night/medivault/internal/service"
)

func TestOriginOf(t *testing.T) {
	msg := &models.Update{Message: &models.Message{
		Chat:     models.Chat{ID: 10},
		From:     &models.User{ID: 20},
		Document: &models.Document{FileName: "a.pdf"},
	}}
	assert.Equal(t, Origin{Kind: "document", ChatID: 10, UserID: 20}, OriginOf(msg))

	photo := &models.Update{Message: &models.Message{Chat: models.Chat{ID: 1}, Photo: []models.PhotoSize{{FileID: "p"}}}}
	assert.Equal(t, "photo", OriginOf(photo).Kind)

	cb := &models.Update{CallbackQuery: &models.CallbackQuery{
		From:    models.User{ID: 3},
		Message: models.MaybeInaccessibleMessage{Message: &models.Message{Chat: models.Chat{ID: 4}}},
	}}
	assert.Equal(t, Origin{Kind: "callback_query", ChatID: 4, UserID: 3}, OriginOf(cb))

	assert.Equal(t, "unknown", OriginOf(&models.Update{}).Kind)
}

func TestInFlightPerChatAndAction(t *testing.T) {
	f := NewInFlight()

	require.True(t, f.TryAcquire(1, ActionUpload))
	assert.False(t, f.TryAcquire(1, ActionUpload))
	assert.True(t, f.TryAcquire(1, ActionChat), "other actions are not serialized")
	assert.True(t, f.TryAcquire(2, ActionUpload), "other chats are independent")

	f.Release(1, ActionUpload)
	assert.True(t, f.TryAcquire(1, ActionUpload))
}

func TestInFlightGuardRunsOnce(t *testing.T) {
	f := NewInFlight()
	update := &models.Update{CallbackQuery: &models.CallbackQuery{
		Message: models.MaybeInaccessibleMessage{Message: &models.Message{Chat: models.Chat{ID: 9}}},
	}}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	handler := f.Guard(ActionUpload, "wait", func(ctx context.Context, b *bot.Bot, u *models.Update) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(started)
		<-release
	})

	done := make(chan struct{})
	go func() {
		handler(context.Background(), nil, update)
		close(done)
	}()
	<-started

	// rejected while the first run holds the slot; callbacks get no notice
	handler(context.Background(), nil, update)
	close(release)
	<-done

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
	assert.True(t, f.TryAcquire(9, ActionUpload), "slot is released afterwards")
}

func TestWorkspaceLoader(t *testing.T) {
	ws := service.NewWorkspaces(repository.NewMemoryStore(), nil, nil)
	var got *service.Workspace
	handler := WorkspaceLoader(ws)(func(ctx context.Context, b *bot.Bot, u *models.Update) {
		got = GetWorkspace(ctx)
	})

	handler(context.Background(), nil, &models.Update{Message: &models.Message{Chat: models.Chat{ID: 55}}})
	require.NotNil(t, got)
	assert.Equal(t, "chat:55:", got.Scope)

	handler(context.Background(), nil, &models.Update{})
	assert.Nil(t, got)
}

func TestAccessAllowsListedUsers(t *testing.T) {
	var called bool
	handler := Access(func(id int64) bool { return id == 1 })(func(ctx context.Context, b *bot.Bot, u *models.Update) {
		called = true
	})

	handler(context.Background(), nil, &models.Update{Message: &models.Message{Chat: models.Chat{ID: 1}, From: &models.User{ID: 1}}})
	assert.True(t, called)
}

func TestRecoverSwallowsPanics(t *testing.T) {
	handler := Recover(nil)(func(ctx context.Context, b *bot.Bot, u *models.Update) {
		panic("boom")
	})
	assert.NotPanics(t, func() { handler(context.Background(), nil, &models.Update{}) })
}
