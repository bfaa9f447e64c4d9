package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/set-night/medivault/internal/domain"
	"github.com/set-night/medivault/internal/repository"
)

// validator is implemented by records that check themselves after decoding.
type validator interface {
	Validate() error
}

// blobList stores a whole slice of records as one JSON array under one key.
// Every mutation is read-modify-write of the full array with no locking, so two
// concurrent writers can lose one side's update.
type blobList[T any] struct {
	store repository.Store
	key   string
}

func newBlobList[T any](store repository.Store, key string) blobList[T] {
	return blobList[T]{store: store, key: key}
}

// list returns the stored records. A missing key is an empty list; unreadable or
// invalid data fails with domain.ErrStorageRead.
func (b blobList[T]) list(ctx context.Context) ([]T, error) {
	data, err := b.store.Get(ctx, b.key)
	if errors.Is(err, repository.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrStorageRead, b.key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrStorageRead, b.key, err)
	}
	for i := range items {
		if v, ok := any(&items[i]).(validator); ok {
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", domain.ErrStorageRead, b.key, i, err)
			}
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (b blobList[T]) replaceAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageWrite, b.key, err)
	}
	if err := b.store.Set(ctx, b.key, data); err != nil {
		return fmt.Errorf("%w: set %s: %v", domain.ErrStorageWrite, b.key, err)
	}
	return nil
}

func (b blobList[T]) clear(ctx context.Context) error {
	if err := b.store.Remove(ctx, b.key); err != nil {
		return fmt.Errorf("%w: remove %s: %v", domain.ErrStorageWrite, b.key, err)
	}
	return nil
}
