package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/middleware"
	"github.com/set-night/medivault/internal/service"
	tg "github.com/set-night/medivault/internal/telegram"
)

// incomingFile describes a document or photo attached to a message.
type incomingFile struct {
	FileID   string
	Name     string
	MimeType string
	Size     int64
}

func fileOf(msg *models.Message, now time.Time) (incomingFile, bool) {
	switch {
	case msg.Document != nil:
		name := strings.TrimSpace(msg.Document.FileName)
		if name == "" {
			name = config.DefaultFileName
		}
		return incomingFile{
			FileID:   msg.Document.FileID,
			Name:     name,
			MimeType: msg.Document.MimeType,
			Size:     int64(msg.Document.FileSize),
		}, true
	case len(msg.Photo) > 0:
		// sizes are ordered smallest first
		photo := msg.Photo[len(msg.Photo)-1]
		return incomingFile{
			FileID:   photo.FileID,
			Name:     fmt.Sprintf("photo_%s.jpg", now.UTC().Format("20060102_150405")),
			MimeType: "image/jpeg",
			Size:     int64(photo.FileSize),
		}, true
	}
	return incomingFile{}, false
}

// detectMimeType keeps a specific declared type and otherwise sniffs the content.
func detectMimeType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	detected, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return detected
}

// withExtension adds the extension of the sniffed type to names that have none.
func withExtension(name string, data []byte) string {
	if path.Ext(name) != "" {
		return name
	}
	return name + mimetype.Detect(data).Extension()
}

func (h *Handler) handleUpload(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	ws := middleware.GetWorkspace(ctx)
	if msg == nil || ws == nil {
		return
	}
	chatID := msg.Chat.ID

	file, ok := fileOf(msg, time.Now())
	if !ok {
		return
	}
	if err := service.CheckUploadSize(file.Size); err != nil {
		h.reply(ctx, chatID, uploadErrorText(err), nil)
		return
	}

	status, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            fmt.Sprintf("⏳ Uploading %s...", file.Name),
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		slog.Warn("send upload status", "error", err, "chat_id", chatID)
	}

	stopTyping := tg.StartTyping(ctx, b, chatID, models.ChatActionUploadDocument)
	doc, err := h.upload(ctx, b, ws, file)
	stopTyping()

	if err != nil {
		if !errors.Is(err, domain.ErrSizeLimitExceeded) {
			h.logError(err, "upload document", chatID)
		}
		h.finishStatus(ctx, chatID, status, uploadErrorText(err), nil)
		return
	}

	h.ops.LogUpload(chatID, doc)

	text := fmt.Sprintf("✅ *%s* uploaded\n%s %s · %s\n\nSelect it to ask questions about it, or open /documents.",
		tg.EscapeMarkdown(doc.Name), tg.CategoryIcon(doc.Category), doc.Category, domain.FormatSize(doc.Size))
	keyboard := tg.InlineKeyboard(tg.ButtonRow(
		tg.InlineButton("☑️ Select for chat", fmt.Sprintf("%s%s_0", cbDocSelect, docToken(doc.ID))),
	))
	h.finishStatus(ctx, chatID, status, text, keyboard)
}

func (h *Handler) upload(ctx context.Context, b *bot.Bot, ws *service.Workspace, file incomingFile) (*domain.MedicalDocument, error) {
	data, _, err := tg.DownloadFile(ctx, b, file.FileID)
	if err != nil {
		return nil, fmt.Errorf("download from telegram: %w", err)
	}
	return ws.Catalog.Upload(ctx, data, withExtension(file.Name, data), detectMimeType(file.MimeType, data))
}

// finishStatus replaces the upload status message, or sends text when there is none.
func (h *Handler) finishStatus(ctx context.Context, chatID int64, status *models.Message, text string, keyboard *models.InlineKeyboardMarkup) {
	if status != nil {
		if err := tg.EditMessage(ctx, h.bot, chatID, status.ID, text, markupOf(keyboard)); err == nil {
			return
		}
	}
	h.reply(ctx, chatID, text, keyboard)
}
