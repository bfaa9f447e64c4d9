package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/medivault/internal/service"
)

type ctxKey string

const WorkspaceKey ctxKey = "workspace"

// GetWorkspace extracts the chat's workspace from context.
func GetWorkspace(ctx context.Context) *service.Workspace {
	w, ok := ctx.Value(WorkspaceKey).(*service.Workspace)
	if !ok {
		return nil
	}
	return w
}

// Access drops updates from users outside the allow-list.
func Access(isAllowed func(int64) bool) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			origin := OriginOf(update)
			if origin.UserID == 0 || isAllowed(origin.UserID) {
				next(ctx, b, update)
				return
			}

			slog.Warn("access denied", "user_id", origin.UserID, "chat_id", origin.ChatID)
			if update.CallbackQuery != nil {
				_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
					CallbackQueryID: update.CallbackQuery.ID,
					Text:            "Access denied",
				})
				return
			}
			if origin.ChatID != 0 {
				_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: origin.ChatID,
					Text:   "⛔ This assistant is private.",
				})
			}
		}
	}
}

// WorkspaceLoader puts the workspace of the update's chat into context.
func WorkspaceLoader(workspaces *service.Workspaces) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if origin := OriginOf(update); origin.ChatID != 0 {
				ctx = context.WithValue(ctx, WorkspaceKey, workspaces.For(origin.ChatID))
			}
			next(ctx, b, update)
		}
	}
}
