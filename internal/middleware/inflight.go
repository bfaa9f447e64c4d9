package middleware

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Guarded actions.
const (
	ActionUpload = "upload"
	ActionChat   = "chat"
)

// InFlight allows one running action of each kind per chat. A second upload
// while one is running is rejected, but a chat query may run beside it.
type InFlight struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{running: make(map[string]struct{})}
}

func (f *InFlight) TryAcquire(chatID int64, action string) bool {
	key := inflightKey(chatID, action)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.running[key]; busy {
		return false
	}
	f.running[key] = struct{}{}
	return true
}

func (f *InFlight) Release(chatID int64, action string) {
	f.mu.Lock()
	delete(f.running, inflightKey(chatID, action))
	f.mu.Unlock()
}

// Guard wraps a message handler so it runs at most once at a time per chat.
// Rejected updates get notice as a reply.
func (f *InFlight) Guard(action, notice string, next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		origin := OriginOf(update)
		if !f.TryAcquire(origin.ChatID, action) {
			if update.Message != nil {
				_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID:          origin.ChatID,
					Text:            notice,
					ReplyParameters: &models.ReplyParameters{MessageID: update.Message.ID},
				})
			}
			return
		}
		defer f.Release(origin.ChatID, action)
		next(ctx, b, update)
	}
}

func inflightKey(chatID int64, action string) string {
	return fmt.Sprintf("%d:%s", chatID, action)
}
