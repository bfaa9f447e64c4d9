package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
)

// OpsLogger mirrors notable events into topics of an operator chat.
// It is a no-op unless LOG_TELEGRAM_CHAT_ID and the event's topic are set.
type OpsLogger struct {
	sender MessageSender
	cfg    *config.Config
}

func NewOpsLogger(s MessageSender, cfg *config.Config) *OpsLogger {
	return &OpsLogger{sender: s, cfg: cfg}
}

type LogType string

const (
	LogTypeError  LogType = "error"
	LogTypeUpload LogType = "upload"
)

func (l *OpsLogger) Log(logType LogType, message string) {
	if l == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}
	topicID := l.topicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *OpsLogger) LogError(err error, where string) {
	l.Log(LogTypeError, fmt.Sprintf("❌ Error\n\nContext: %s\nError: %s\nTime: %s",
		where, err.Error(), time.Now().UTC().Format("2006-01-02 15:04:05")))
}

func (l *OpsLogger) LogUpload(chatID int64, doc *domain.MedicalDocument) {
	l.Log(LogTypeUpload, fmt.Sprintf("📄 Upload\n\nChat: %d\nFile: %s\nCategory: %s\nSize: %s",
		chatID, doc.Name, doc.Category, domain.FormatSize(doc.Size)))
}

func (l *OpsLogger) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeUpload:
		return l.cfg.LogTopicUpload
	default:
		return 0
	}
}
