package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/middleware"
	tg "github.com/set-night/medivault/internal/telegram"
)

const helpText = "📋 *Commands:*\n" +
	"/documents — Your documents, select them for questions\n" +
	"/cleardocs — Delete all documents\n" +
	"/history — Previous chats\n" +
	"/new — Start a new chat\n" +
	"/ping — Check the assistant backend\n\n" +
	"📎 Send a PDF, image or other file (up to %s MB) to add it to your documents.\n" +
	"💬 Send a message to ask a question."

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	chatID := update.Message.Chat.ID

	session := ws.Conversation.Current(ctx)
	docs := ws.Catalog.List(ctx)
	selected := len(ws.Catalog.Select(ctx, h.selection.IDs(ws.Scope)))

	var sb strings.Builder
	sb.WriteString("🩺 *MediVault*\n\n")
	sb.WriteString(tg.EscapeMarkdown(lastBotText(session, config.WelcomeMessage)))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "📁 Documents: %d (selected: %d)\n", len(docs), selected)
	fmt.Fprintf(&sb, "💬 Current chat: %s\n\n", tg.EscapeMarkdown(session.Title))
	fmt.Fprintf(&sb, helpText, domain.FormatMB(config.MaxUploadSize))

	h.reply(ctx, chatID, sb.String(), nil)
}

// lastBotText returns the newest assistant message of a session, or fallback.
func lastBotText(session domain.ChatSession, fallback string) string {
	for i := len(session.Messages) - 1; i >= 0; i-- {
		if !session.Messages[i].IsUser {
			return session.Messages[i].Text
		}
	}
	return fallback
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	if err := tg.Reply(ctx, h.bot, chatID, text, markupOf(keyboard)); err != nil {
		h.logError(err, "reply", chatID)
	}
}

// markupOf avoids passing a typed nil keyboard as a non-nil interface.
func markupOf(keyboard *models.InlineKeyboardMarkup) models.ReplyMarkup {
	if keyboard == nil {
		return nil
	}
	return keyboard
}
