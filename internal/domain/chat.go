package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (s *ChatSession) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	for i, m := range s.Messages {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("session %s: message %d has no id", s.ID, i)
		}
	}
	return nil
}

// FirstUserMessage returns the first message sent by the user, or nil.
func (s *ChatSession) FirstUserMessage() *ChatMessage {
	for i := range s.Messages {
		if s.Messages[i].IsUser {
			return &s.Messages[i]
		}
	}
	return nil
}

// SortByRecent orders sessions by UpdatedAt, most recent first.
func SortByRecent(sessions []ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}

// NewID returns a time-ordered identifier for sessions and messages.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
