package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/repository"
)

// ChatHistory owns the archived session list and the current-session slot.
type ChatHistory struct {
	store    repository.Store
	sessions blobList[domain.ChatSession]
	now      func() time.Time
}

func NewChatHistory(store repository.Store) *ChatHistory {
	return &ChatHistory{
		store:    store,
		sessions: newBlobList[domain.ChatSession](store, config.ChatHistoryKey),
		now:      time.Now,
	}
}

// ListSessions returns archived sessions in storage order. Use domain.SortByRecent for display.
func (h *ChatHistory) ListSessions(ctx context.Context) []domain.ChatSession {
	sessions, err := h.sessions.list(ctx)
	if err != nil {
		slog.Error("load chat sessions", "error", err)
		return []domain.ChatSession{}
	}
	return sessions
}

func (h *ChatHistory) Find(ctx context.Context, id string) (*domain.ChatSession, error) {
	for _, s := range h.ListSessions(ctx) {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

// Save replaces the session with the same id, stamping UpdatedAt, or appends it.
func (h *ChatHistory) Save(ctx context.Context, session domain.ChatSession) error {
	sessions := h.ListSessions(ctx)

	idx := slices.IndexFunc(sessions, func(s domain.ChatSession) bool { return s.ID == session.ID })
	if idx >= 0 {
		session.UpdatedAt = h.now().UTC()
		sessions[idx] = session
	} else {
		sessions = append(sessions, session)
	}

	if err := h.sessions.replaceAll(ctx, sessions); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (h *ChatHistory) Delete(ctx context.Context, id string) error {
	sessions := h.ListSessions(ctx)
	filtered := slices.DeleteFunc(slices.Clone(sessions), func(s domain.ChatSession) bool { return s.ID == id })
	if len(filtered) == len(sessions) {
		return nil
	}
	if err := h.sessions.replaceAll(ctx, filtered); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Current returns the in-progress session, or nil when none is stored or it is unreadable.
func (h *ChatHistory) Current(ctx context.Context) *domain.ChatSession {
	data, err := h.store.Get(ctx, config.CurrentSessionKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		slog.Error("load current session", "error", fmt.Errorf("%w: %v", domain.ErrStorageRead, err))
		return nil
	}

	var session domain.ChatSession
	if err := json.Unmarshal(data, &session); err != nil {
		slog.Error("load current session", "error", fmt.Errorf("%w: decode: %v", domain.ErrStorageRead, err))
		return nil
	}
	if err := session.Validate(); err != nil {
		slog.Error("load current session", "error", fmt.Errorf("%w: %v", domain.ErrStorageRead, err))
		return nil
	}
	return &session
}

func (h *ChatHistory) SetCurrent(ctx context.Context, session domain.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: encode current session: %v", domain.ErrStorageWrite, err)
	}
	if err := h.store.Set(ctx, config.CurrentSessionKey, data); err != nil {
		return fmt.Errorf("%w: set current session: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

// TitleFor builds a session title from the first user message: its first five
// words, with "..." appended when there were more.
func TitleFor(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return config.DefaultSessionTitle
	}
	if len(words) <= config.TitleWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:config.TitleWords], " ") + "..."
}
