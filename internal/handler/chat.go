package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/middleware"
	tg "github.com/set-night/medivault/internal/telegram"
)

// handleChat answers a text message, grounded in the chat's selected documents.
func (h *Handler) handleChat(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	ws := middleware.GetWorkspace(ctx)
	if msg == nil || ws == nil {
		return
	}
	chatID := msg.Chat.ID

	selected := ws.Catalog.Select(ctx, h.selection.IDs(ws.Scope))
	ids := make([]string, 0, len(selected))
	for _, d := range selected {
		ids = append(ids, d.ID)
	}

	stopTyping := tg.StartTyping(ctx, b, chatID, models.ChatActionTyping)
	reply, err := ws.Conversation.Send(ctx, msg.Text, ids)
	stopTyping()

	if errors.Is(err, domain.ErrEmptyMessage) {
		return
	}
	if err != nil {
		h.logError(err, "chat", chatID)
		h.reply(ctx, chatID, "❌ Something went wrong. Please try again.", nil)
		return
	}

	slog.Info("chat answered", "chat_id", chatID, "documents", len(ids), "reply_len", len(reply.Text))

	text := reply.Text
	if len(ids) > 0 {
		text = fmt.Sprintf("📎 _%d document(s)_\n\n%s", len(ids), text)
	}
	replyTo := msg.ID
	if err := tg.SendLongMessage(ctx, b, chatID, text, &replyTo); err != nil {
		h.logError(err, "send chat reply", chatID)
	}
}

func (h *Handler) handleNew(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	chatID := update.Message.Chat.ID

	session, err := ws.Conversation.NewChat(ctx)
	if err != nil {
		h.logError(err, "new chat", chatID)
		h.reply(ctx, chatID, "❌ Could not start a new chat. Please try again.", nil)
		return
	}
	h.reply(ctx, chatID, "🆕 *New chat started*\n\n"+tg.EscapeMarkdown(lastBotText(session, "")), nil)
}

func (h *Handler) handlePing(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	start := time.Now()
	title, err := h.backend.Ping(ctx)
	if err != nil {
		slog.Warn("backend ping failed", "error", err, "url", h.backend.BaseURL())
		h.reply(ctx, chatID, fmt.Sprintf("❌ Backend at %s is not reachable: %s",
			tg.EscapeMarkdown(h.backend.BaseURL()), tg.EscapeMarkdown(pingErrorText(err))), nil)
		return
	}

	text := fmt.Sprintf("✅ Backend at %s is up (%d ms)", tg.EscapeMarkdown(h.backend.BaseURL()), time.Since(start).Milliseconds())
	if title != "" {
		text += "\n" + tg.EscapeMarkdown(title)
	}
	h.reply(ctx, chatID, text, nil)
}

func pingErrorText(err error) string {
	if errors.Is(err, domain.ErrNetworkUnreachable) {
		return "connection failed"
	}
	return err.Error()
}
