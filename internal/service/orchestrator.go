package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
)

// ChatBackend is the remote side of a chat exchange.
type ChatBackend interface {
	Chat(ctx context.Context, query string, files []Attachment) (*ChatResponse, error)
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}

// Orchestrator answers a query, grounding it in the selected documents when there are any.
type Orchestrator struct {
	backend ChatBackend
}

func NewOrchestrator(backend ChatBackend) *Orchestrator {
	return &Orchestrator{backend: backend}
}

// Ask returns the assistant reply. Without documents a non-success response fails
// with *domain.BackendError. With documents, any fetch or backend failure falls back
// to a general query that mentions the unprocessed documents.
func (o *Orchestrator) Ask(ctx context.Context, query string, docs []domain.MedicalDocument) (string, error) {
	if len(docs) == 0 {
		return o.general(ctx, query)
	}

	reply, err := o.withDocuments(ctx, query, docs)
	if err == nil {
		return reply, nil
	}
	slog.Warn("document chat failed, falling back to general chat", "error", err, "documents", len(docs))

	note := fmt.Sprintf("%s (Note: User has %d selected document(s) but they couldn't be processed)", query, len(docs))
	reply, err = o.general(ctx, note)
	if err != nil {
		return "", err
	}
	return reply + config.FallbackSuffix, nil
}

// Reply is Ask for display: failures become an "Error: ..." assistant message.
func (o *Orchestrator) Reply(ctx context.Context, query string, docs []domain.MedicalDocument) string {
	reply, err := o.Ask(ctx, query, docs)
	if err != nil {
		slog.Error("chat query", "error", err, "documents", len(docs))
		return fmt.Sprintf("Error: %s. %s", errorText(err), config.ErrorReplyHint)
	}
	return reply
}

func (o *Orchestrator) general(ctx context.Context, query string) (string, error) {
	resp, err := o.backend.Chat(ctx, query, nil)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (o *Orchestrator) withDocuments(ctx context.Context, query string, docs []domain.MedicalDocument) (string, error) {
	files := make([]Attachment, 0, len(docs))
	for _, d := range docs {
		data, err := o.backend.FetchDocument(ctx, d.URL)
		if err != nil {
			return "", fmt.Errorf("cannot read document %s: %w", d.Name, err)
		}
		files = append(files, Attachment{Name: d.Name, MimeType: d.Type, Data: data})
	}

	resp, err := o.backend.Chat(ctx, query, files)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func responseText(resp *ChatResponse) string {
	if resp == nil || resp.Response == "" {
		return config.NoResponseText
	}
	return resp.Response
}

func errorText(err error) string {
	if errors.Is(err, domain.ErrNetworkUnreachable) {
		return "Cannot connect to backend"
	}
	return err.Error()
}
