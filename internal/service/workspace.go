package service

import (
	"fmt"

	"github.com/set-night/medivault/internal/repository"
)

// Workspace is one chat's catalog, history and conversation, bound to its key namespace.
type Workspace struct {
	Scope        string
	Catalog      *DocumentCatalog
	History      *ChatHistory
	Conversation *Conversation
}

// Workspaces builds per-chat workspaces over shared clients.
type Workspaces struct {
	store     repository.Store
	objects   ObjectStore
	assistant *Orchestrator
}

func NewWorkspaces(store repository.Store, objects ObjectStore, assistant *Orchestrator) *Workspaces {
	return &Workspaces{store: store, objects: objects, assistant: assistant}
}

// For returns the workspace of a Telegram chat.
func (w *Workspaces) For(chatID int64) *Workspace {
	scope := fmt.Sprintf("chat:%d:", chatID)
	store := repository.Namespace(w.store, scope)

	catalog := NewDocumentCatalog(store, w.objects)
	history := NewChatHistory(store)
	return &Workspace{
		Scope:        scope,
		Catalog:      catalog,
		History:      history,
		Conversation: NewConversation(history, catalog, w.assistant),
	}
}
