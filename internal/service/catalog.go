package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/repository"
)

// DocumentCatalog owns the persisted list of uploaded documents.
type DocumentCatalog struct {
	docs          blobList[domain.MedicalDocument]
	objects       ObjectStore
	uploadTimeout time.Duration
	now           func() time.Time
}

func NewDocumentCatalog(store repository.Store, objects ObjectStore) *DocumentCatalog {
	return &DocumentCatalog{
		docs:          newBlobList[domain.MedicalDocument](store, config.DocumentsKey),
		objects:       objects,
		uploadTimeout: config.UploadTimeout,
		now:           time.Now,
	}
}

// List returns the full catalog. Missing or corrupt data yields an empty list.
func (c *DocumentCatalog) List(ctx context.Context) []domain.MedicalDocument {
	docs, err := c.docs.list(ctx)
	if err != nil {
		slog.Error("load documents", "error", err)
		return []domain.MedicalDocument{}
	}
	return docs
}

// Select returns the catalog records whose id is in ids, in catalog order.
func (c *DocumentCatalog) Select(ctx context.Context, ids []string) []domain.MedicalDocument {
	if len(ids) == 0 {
		return nil
	}
	var selected []domain.MedicalDocument
	for _, d := range c.List(ctx) {
		if slices.Contains(ids, d.ID) {
			selected = append(selected, d)
		}
	}
	return selected
}

// CheckUploadSize rejects files above the upload limit.
func CheckUploadSize(size int64) error {
	if size > config.MaxUploadSize {
		return fmt.Errorf("%w: maximum size is %dMB, got %sMB", domain.ErrSizeLimitExceeded,
			config.MaxUploadSize/(1024*1024), domain.FormatMB(size))
	}
	return nil
}

// Upload sends data to the object store and appends the resulting record to the catalog.
func (c *DocumentCatalog) Upload(ctx context.Context, data []byte, filename, mimeType string) (*domain.MedicalDocument, error) {
	if err := CheckUploadSize(int64(len(data))); err != nil {
		return nil, err
	}

	slog.Info("uploading document", "name", filename, "size", len(data), "type", mimeType)

	uploadCtx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	result, err := c.objects.Upload(uploadCtx, data, filename, mimeType)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	size := result.Bytes
	if size == 0 {
		size = int64(len(data))
	}

	doc := domain.MedicalDocument{
		ID:         result.PublicID,
		Name:       filename,
		URL:        result.SecureURL,
		Type:       mimeType,
		UploadDate: c.now().UTC(),
		Size:       size,
		Category:   Categorize(filename, mimeType),
	}

	docs := c.List(ctx)
	docs = append(docs, doc)
	if err := c.docs.replaceAll(ctx, docs); err != nil {
		slog.Error("store uploaded document", "error", err, "id", doc.ID)
	} else {
		slog.Info("document stored", "id", doc.ID, "category", doc.Category, "total", len(docs))
	}

	return &doc, nil
}

// Delete removes every record with id. An unknown id leaves the catalog unchanged.
func (c *DocumentCatalog) Delete(ctx context.Context, id string) error {
	docs := c.List(ctx)
	filtered := slices.DeleteFunc(slices.Clone(docs), func(d domain.MedicalDocument) bool {
		return d.ID == id
	})
	if len(filtered) == len(docs) {
		return nil
	}
	return c.docs.replaceAll(ctx, filtered)
}

func (c *DocumentCatalog) DeleteAll(ctx context.Context) error {
	return c.docs.clear(ctx)
}
