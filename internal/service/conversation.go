package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
)

// Conversation drives the session lifecycle of one chat: the current session,
// sending messages, starting, switching and deleting sessions.
type Conversation struct {
	history   *ChatHistory
	catalog   *DocumentCatalog
	assistant *Orchestrator
	now       func() time.Time
}

func NewConversation(history *ChatHistory, catalog *DocumentCatalog, assistant *Orchestrator) *Conversation {
	return &Conversation{
		history:   history,
		catalog:   catalog,
		assistant: assistant,
		now:       time.Now,
	}
}

// Current returns the in-progress session, starting a new one when none is stored.
func (c *Conversation) Current(ctx context.Context) domain.ChatSession {
	if s := c.history.Current(ctx); s != nil {
		return *s
	}
	session := c.newSession()
	if err := c.history.SetCurrent(ctx, session); err != nil {
		slog.Error("set current session", "error", err)
	}
	return session
}

// Send records the user's text, asks the assistant with the selected documents and
// records the reply. The returned message is the assistant's.
func (c *Conversation) Send(ctx context.Context, text string, selectedIDs []string) (domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, domain.ErrEmptyMessage
	}

	session := c.Current(ctx)
	if session.FirstUserMessage() == nil {
		session.Title = TitleFor(text)
	}
	session.Messages = append(session.Messages, c.message(text, true))

	docs := c.catalog.Select(ctx, selectedIDs)
	reply := c.message(c.assistant.Reply(ctx, text, docs), false)

	session.Messages = append(session.Messages, reply)
	session.UpdatedAt = c.now().UTC()
	if err := c.history.SetCurrent(ctx, session); err != nil {
		slog.Error("set current session", "error", err, "session_id", session.ID)
	}
	return reply, nil
}

// NewChat archives the current session when it holds more than the greeting and
// starts a fresh one.
func (c *Conversation) NewChat(ctx context.Context) (domain.ChatSession, error) {
	if err := c.archiveCurrent(ctx); err != nil {
		return domain.ChatSession{}, err
	}
	return c.startNew(ctx)
}

// Switch archives the current session and makes the archived session id current.
func (c *Conversation) Switch(ctx context.Context, id string) (domain.ChatSession, error) {
	if err := c.archiveCurrent(ctx); err != nil {
		return domain.ChatSession{}, err
	}
	target, err := c.history.Find(ctx, id)
	if err != nil {
		return domain.ChatSession{}, err
	}
	if err := c.history.SetCurrent(ctx, *target); err != nil {
		return domain.ChatSession{}, fmt.Errorf("switch session: %w", err)
	}
	return *target, nil
}

// DeleteSession removes id from the archive. Deleting the current session
// replaces it with a new one without archiving it again.
func (c *Conversation) DeleteSession(ctx context.Context, id string) error {
	if err := c.history.Delete(ctx, id); err != nil {
		return err
	}
	if current := c.history.Current(ctx); current != nil && current.ID == id {
		if _, err := c.startNew(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Sessions returns archived sessions, most recently updated first.
func (c *Conversation) Sessions(ctx context.Context) []domain.ChatSession {
	sessions := c.history.ListSessions(ctx)
	domain.SortByRecent(sessions)
	return sessions
}

func (c *Conversation) archiveCurrent(ctx context.Context) error {
	current := c.history.Current(ctx)
	if current == nil || len(current.Messages) <= 1 {
		return nil
	}

	title := config.DefaultSessionTitle
	if first := current.FirstUserMessage(); first != nil {
		title = TitleFor(first.Text)
	}
	current.Title = title
	current.UpdatedAt = c.now().UTC()

	if err := c.history.Save(ctx, *current); err != nil {
		return fmt.Errorf("archive session: %w", err)
	}
	return nil
}

func (c *Conversation) startNew(ctx context.Context) (domain.ChatSession, error) {
	session := c.newSession()
	if err := c.history.SetCurrent(ctx, session); err != nil {
		return domain.ChatSession{}, fmt.Errorf("start session: %w", err)
	}
	return session, nil
}

func (c *Conversation) newSession() domain.ChatSession {
	now := c.now().UTC()
	return domain.ChatSession{
		ID:        domain.NewID(),
		Title:     config.DefaultSessionTitle,
		Messages:  []domain.ChatMessage{c.message(config.WelcomeMessage, false)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Conversation) message(text string, isUser bool) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        domain.NewID(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: c.now().UTC(),
	}
}
