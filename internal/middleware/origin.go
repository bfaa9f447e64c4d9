package middleware

import "github.com/go-telegram/bot/models"

// Origin identifies where an update came from.
type Origin struct {
	Kind   string
	ChatID int64
	UserID int64
}

func OriginOf(update *models.Update) Origin {
	switch {
	case update.Message != nil:
		o := Origin{Kind: messageKind(update.Message), ChatID: update.Message.Chat.ID}
		if update.Message.From != nil {
			o.UserID = update.Message.From.ID
		}
		return o
	case update.CallbackQuery != nil:
		o := Origin{Kind: "callback_query", UserID: update.CallbackQuery.From.ID}
		if update.CallbackQuery.Message.Message != nil {
			o.ChatID = update.CallbackQuery.Message.Message.Chat.ID
		}
		return o
	default:
		return Origin{Kind: "unknown"}
	}
}

func messageKind(m *models.Message) string {
	switch {
	case m.Document != nil:
		return "document"
	case len(m.Photo) > 0:
		return "photo"
	default:
		return "message"
	}
}
