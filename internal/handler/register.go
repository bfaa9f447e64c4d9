package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/medivault/internal/middleware"
	tg "github.com/set-night/medivault/internal/telegram"
)

// Callback data prefixes.
const (
	cbDocsPage   = "docs_page_"
	cbDocSelect  = "doc_sel_"
	cbDocDelete  = "doc_del_"
	cbDocsClear  = "docs_clear"
	cbDocsClearY = "docs_clear_yes"
	cbDocsClearN = "docs_clear_no"

	cbHistPage   = "hist_page_"
	cbHistSwitch = "hist_sw_"
	cbHistDelete = "hist_del_"
	cbHistNew    = "hist_new"
)

const (
	uploadBusyNotice = "⏳ Still uploading your previous file. Please wait."
	chatBusyNotice   = "⏳ Still answering your previous question. Please wait."
)

// Register registers all command, callback and message handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/documents", bot.MatchTypePrefix, h.handleDocuments)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cleardocs", bot.MatchTypePrefix, h.handleClearDocuments)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, h.handleHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNew)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/ping", bot.MatchTypePrefix, h.handlePing)

	// Document callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbDocsClearY, bot.MatchTypeExact, h.handleClearConfirm)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbDocsClearN, bot.MatchTypeExact, h.handleClearCancel)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbDocsClear, bot.MatchTypeExact, h.handleClearPrompt)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbDocsPage, bot.MatchTypePrefix, h.handleDocumentsPage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbDocSelect, bot.MatchTypePrefix, h.handleDocumentSelect)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbDocDelete, bot.MatchTypePrefix, h.handleDocumentDelete)

	// History callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbHistPage, bot.MatchTypePrefix, h.handleHistoryPage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbHistSwitch, bot.MatchTypePrefix, h.handleHistorySwitch)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbHistDelete, bot.MatchTypePrefix, h.handleHistoryDelete)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cbHistNew, bot.MatchTypeExact, h.handleHistoryNew)

	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.NoopCallback, bot.MatchTypeExact, h.handleNoop)

	// Files and chat queries
	h.bot.RegisterHandlerMatchFunc(isFileMessage,
		h.inflight.Guard(middleware.ActionUpload, uploadBusyNotice, h.handleUpload))
	h.bot.RegisterHandlerMatchFunc(isChatMessage,
		h.inflight.Guard(middleware.ActionChat, chatBusyNotice, h.handleChat))
}

func isFileMessage(update *models.Update) bool {
	return update.Message != nil && (update.Message.Document != nil || len(update.Message.Photo) > 0)
}

func isChatMessage(update *models.Update) bool {
	if update.Message == nil || isFileMessage(update) {
		return false
	}
	text := strings.TrimSpace(update.Message.Text)
	return text != "" && !strings.HasPrefix(text, "/")
}

// handleNoop acknowledges callbacks of non-interactive buttons such as page counters.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		answer(ctx, b, update, "")
	}
}

// answer acknowledges a callback query, optionally with a toast.
func answer(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
	})
}

// callbackMessage returns the chat and message id a callback's button belongs to.
func callbackMessage(update *models.Update) (chatID int64, messageID int, ok bool) {
	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return 0, 0, false
	}
	return msg.Chat.ID, msg.ID, true
}
