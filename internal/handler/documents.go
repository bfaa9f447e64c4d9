package handler

import (
	"context"
	"fmt"
	"hash/fnv"
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

func (h *Handler) handleDocuments(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	text, keyboard := h.documentsPage(ctx, ws, 0)
	h.reply(ctx, update.Message.Chat.ID, text, keyboard)
}

// documentsPage renders one page of the catalog with select and delete buttons.
func (h *Handler) documentsPage(ctx context.Context, ws *service.Workspace, page int) (string, *models.InlineKeyboardMarkup) {
	docs := ws.Catalog.List(ctx)
	if len(docs) == 0 {
		return fmt.Sprintf("📁 *No documents yet*\n\nSend a medical report, scan or bill (up to %s MB) to add it.",
			domain.FormatMB(config.MaxUploadSize)), nil
	}

	start, end, page, pages := tg.Page(len(docs), page, config.DocumentsPerPage)
	selected := ws.Catalog.Select(ctx, h.selection.IDs(ws.Scope))

	var sb strings.Builder
	fmt.Fprintf(&sb, "📁 *Documents* (%d, selected: %d)\n\n", len(docs), len(selected))

	var rows [][]models.InlineKeyboardButton
	for _, d := range docs[start:end] {
		isSelected := h.selection.IsSelected(ws.Scope, d.ID)
		sb.WriteString(tg.DocumentLine(d, isSelected))
		sb.WriteString("\n")

		label := "☐ "
		if isSelected {
			label = "☑️ "
		}
		token := docToken(d.ID)
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(label+tg.Truncate(d.Name, 28), fmt.Sprintf("%s%s_%d", cbDocSelect, token, page)),
			tg.InlineButton("🗑", fmt.Sprintf("%s%s_%d", cbDocDelete, token, page)),
		))
	}

	sb.WriteString("\nSelected documents are sent with your questions.")

	if pageRow := tg.PaginationRow(page, pages, cbDocsPage); pageRow != nil {
		rows = append(rows, pageRow)
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("🗑 Delete all", cbDocsClear)))
	return sb.String(), tg.InlineKeyboard(rows...)
}

func (h *Handler) handleDocumentsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	answer(ctx, b, update, "")

	page, _ := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, cbDocsPage))
	h.refreshDocuments(ctx, update, page)
}

func (h *Handler) handleDocumentSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}

	token, page := parseDocCallback(update.CallbackQuery.Data, cbDocSelect)
	doc := findByToken(ws.Catalog.List(ctx), token)
	if doc == nil {
		answer(ctx, b, update, "Document not found")
		h.refreshDocuments(ctx, update, page)
		return
	}

	if h.selection.Toggle(ws.Scope, doc.ID) {
		answer(ctx, b, update, "Selected "+tg.Truncate(doc.Name, 40))
	} else {
		answer(ctx, b, update, "Unselected "+tg.Truncate(doc.Name, 40))
	}
	h.refreshDocuments(ctx, update, page)
}

func (h *Handler) handleDocumentDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	chatID, _, _ := callbackMessage(update)

	token, page := parseDocCallback(update.CallbackQuery.Data, cbDocDelete)
	doc := findByToken(ws.Catalog.List(ctx), token)
	if doc == nil {
		answer(ctx, b, update, "Document not found")
		h.refreshDocuments(ctx, update, page)
		return
	}

	if err := ws.Catalog.Delete(ctx, doc.ID); err != nil {
		h.logError(err, "delete document", chatID)
		answer(ctx, b, update, "Failed to delete document")
		return
	}
	h.selection.Remove(ws.Scope, doc.ID)
	answer(ctx, b, update, "Deleted "+tg.Truncate(doc.Name, 40))
	h.refreshDocuments(ctx, update, page)
}

func (h *Handler) handleClearDocuments(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	text, keyboard := clearPrompt(len(ws.Catalog.List(ctx)))
	h.reply(ctx, update.Message.Chat.ID, text, keyboard)
}

func (h *Handler) handleClearPrompt(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	answer(ctx, b, update, "")
	ws := middleware.GetWorkspace(ctx)
	chatID, messageID, ok := callbackMessage(update)
	if ws == nil || !ok {
		return
	}

	text, keyboard := clearPrompt(len(ws.Catalog.List(ctx)))
	if keyboard == nil {
		keyboard = tg.InlineKeyboard()
	}
	if err := tg.EditMessage(ctx, b, chatID, messageID, text, keyboard); err != nil {
		h.logError(err, "edit documents", chatID)
	}
}

func clearPrompt(count int) (string, *models.InlineKeyboardMarkup) {
	if count == 0 {
		return "📁 There are no documents to delete.", nil
	}
	text := fmt.Sprintf("⚠️ Delete all %d document(s)? This cannot be undone.", count)
	return text, tg.InlineKeyboard(tg.ButtonRow(
		tg.InlineButton("✅ Yes, delete all", cbDocsClearY),
		tg.InlineButton("❌ Cancel", cbDocsClearN),
	))
}

func (h *Handler) handleClearConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	chatID, messageID, ok := callbackMessage(update)
	if ws == nil || !ok {
		answer(ctx, b, update, "")
		return
	}

	if err := ws.Catalog.DeleteAll(ctx); err != nil {
		h.logError(err, "delete all documents", chatID)
		answer(ctx, b, update, "Failed to delete documents")
		return
	}
	h.selection.Clear(ws.Scope)
	answer(ctx, b, update, "All documents deleted")

	if err := tg.EditMessage(ctx, b, chatID, messageID, "🗑 All documents deleted.", tg.InlineKeyboard()); err != nil {
		h.logError(err, "edit documents", chatID)
	}
}

func (h *Handler) handleClearCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	answer(ctx, b, update, "Cancelled")
	h.refreshDocuments(ctx, update, 0)
}

// refreshDocuments redraws the catalog in the message holding the pressed button.
func (h *Handler) refreshDocuments(ctx context.Context, update *models.Update, page int) {
	ws := middleware.GetWorkspace(ctx)
	chatID, messageID, ok := callbackMessage(update)
	if ws == nil || !ok {
		return
	}

	text, keyboard := h.documentsPage(ctx, ws, page)
	if keyboard == nil {
		keyboard = tg.InlineKeyboard()
	}
	if err := tg.EditMessage(ctx, h.bot, chatID, messageID, text, keyboard); err != nil {
		h.logError(err, "edit documents", chatID)
	}
}

// docToken shortens a document id to fit Telegram's 64-byte callback data limit.
func docToken(id string) string {
	sum := fnv.New64a()
	_, _ = sum.Write([]byte(id))
	return strconv.FormatUint(sum.Sum64(), 36)
}

func findByToken(docs []domain.MedicalDocument, token string) *domain.MedicalDocument {
	for i := range docs {
		if docToken(docs[i].ID) == token {
			return &docs[i]
		}
	}
	return nil
}

// parseDocCallback splits "<prefix><token>_<page>".
func parseDocCallback(data, prefix string) (token string, page int) {
	rest := strings.TrimPrefix(data, prefix)
	token, pageStr, _ := strings.Cut(rest, "_")
	page, _ = strconv.Atoi(pageStr)
	return token, page
}
