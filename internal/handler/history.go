package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/middleware"
	"github.com/set-night/medivault/internal/service"
	tg "github.com/set-night/medivault/internal/telegram"
)

// transcriptMessages is how many messages are replayed after switching chats.
const transcriptMessages = 6

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	text, keyboard := historyPage(ctx, ws, 0)
	h.reply(ctx, update.Message.Chat.ID, text, keyboard)
}

func historyPage(ctx context.Context, ws *service.Workspace, page int) (string, *models.InlineKeyboardMarkup) {
	current := ws.Conversation.Current(ctx)
	sessions := ws.Conversation.Sessions(ctx)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗂 *Chat history* (%d)\n", len(sessions))
	fmt.Fprintf(&sb, "Current: %s\n\n", tg.EscapeMarkdown(current.Title))

	var rows [][]models.InlineKeyboardButton
	if len(sessions) == 0 {
		sb.WriteString("No previous chats yet. Start a new chat to keep this one.")
	}

	start, end, page, pages := tg.Page(len(sessions), page, config.SessionsPerPage)
	for _, s := range sessions[start:end] {
		mark := ""
		if s.ID == current.ID {
			mark = "✅ "
		}
		fmt.Fprintf(&sb, "%s*%s*\n      %s · %d messages\n",
			mark, tg.EscapeMarkdown(s.Title), s.UpdatedAt.Format("Jan 2, 15:04"), len(s.Messages))

		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(mark+tg.Truncate(s.Title, 30), cbHistSwitch+s.ID),
			tg.InlineButton("🗑", cbHistDelete+s.ID),
		))
	}

	if pageRow := tg.PaginationRow(page, pages, cbHistPage); pageRow != nil {
		rows = append(rows, pageRow)
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("➕ New chat", cbHistNew)))
	return sb.String(), tg.InlineKeyboard(rows...)
}

func (h *Handler) handleHistoryPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	answer(ctx, b, update, "")

	page, _ := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, cbHistPage))
	h.refreshHistory(ctx, update, page)
}

func (h *Handler) handleHistorySwitch(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	chatID, _, ok := callbackMessage(update)
	if ws == nil || !ok {
		answer(ctx, b, update, "")
		return
	}

	id := strings.TrimPrefix(update.CallbackQuery.Data, cbHistSwitch)
	session, err := ws.Conversation.Switch(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		answer(ctx, b, update, "Chat not found")
		h.refreshHistory(ctx, update, 0)
		return
	}
	if err != nil {
		h.logError(err, "switch chat", chatID)
		answer(ctx, b, update, "Failed to switch chat")
		return
	}

	answer(ctx, b, update, "Switched to "+tg.Truncate(session.Title, 40))
	h.refreshHistory(ctx, update, 0)

	if err := tg.SendLongMessage(ctx, b, chatID, transcript(session), nil); err != nil {
		h.logError(err, "send transcript", chatID)
	}
}

// transcript renders the last messages of a session after switching to it.
func transcript(session domain.ChatSession) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔄 *%s*\n", tg.EscapeMarkdown(session.Title))

	msgs := session.Messages
	if len(msgs) > transcriptMessages {
		fmt.Fprintf(&sb, "_%d earlier messages_\n", len(msgs)-transcriptMessages)
		msgs = msgs[len(msgs)-transcriptMessages:]
	}
	for _, m := range msgs {
		who := "🤖"
		if m.IsUser {
			who = "🧑"
		}
		fmt.Fprintf(&sb, "\n%s %s\n", who, tg.EscapeMarkdown(tg.Truncate(m.Text, 500)))
	}
	sb.WriteString("\nContinue by sending a message.")
	return sb.String()
}

func (h *Handler) handleHistoryDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	chatID, _, ok := callbackMessage(update)
	if ws == nil || !ok {
		answer(ctx, b, update, "")
		return
	}

	id := strings.TrimPrefix(update.CallbackQuery.Data, cbHistDelete)
	if err := ws.Conversation.DeleteSession(ctx, id); err != nil {
		h.logError(err, "delete chat", chatID)
		answer(ctx, b, update, "Failed to delete chat")
		return
	}
	answer(ctx, b, update, "Chat deleted")
	h.refreshHistory(ctx, update, 0)
}

func (h *Handler) handleHistoryNew(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	chatID, _, ok := callbackMessage(update)
	if ws == nil || !ok {
		answer(ctx, b, update, "")
		return
	}

	if _, err := ws.Conversation.NewChat(ctx); err != nil {
		h.logError(err, "new chat", chatID)
		answer(ctx, b, update, "Failed to start a new chat")
		return
	}
	answer(ctx, b, update, "New chat started")
	h.refreshHistory(ctx, update, 0)
}

func (h *Handler) refreshHistory(ctx context.Context, update *models.Update, page int) {
	ws := middleware.GetWorkspace(ctx)
	chatID, messageID, ok := callbackMessage(update)
	if ws == nil || !ok {
		return
	}

	text, keyboard := historyPage(ctx, ws, page)
	if err := tg.EditMessage(ctx, h.bot, chatID, messageID, text, keyboard); err != nil {
		h.logError(err, "edit history", chatID)
	}
}
