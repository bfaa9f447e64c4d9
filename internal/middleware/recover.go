package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/medivault/internal/telegram"
)

// Recover returns middleware that recovers from handler panics and reports them
// to the operator chat.
func Recover(ops *telegram.OpsLogger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					origin := OriginOf(update)
					slog.Error("panic recovered in handler",
						"panic", r,
						"chat_id", origin.ChatID,
						"stack", string(debug.Stack()),
					)
					ops.LogError(fmt.Errorf("panic: %v", r), "handler "+origin.Kind)
				}
			}()
			next(ctx, b, update)
		}
	}
}
