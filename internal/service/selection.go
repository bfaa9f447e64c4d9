package service

import (
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
)

// SelectionCache remembers which documents each chat has selected for grounding.
// It is UI state: it lives in memory and expires when a chat goes idle.
type SelectionCache struct {
	cache *cache.Cache
}

func NewSelectionCache(ttl time.Duration) *SelectionCache {
	return &SelectionCache{cache: cache.New(ttl, ttl/2)}
}

func (c *SelectionCache) IDs(scope string) []string {
	if v, ok := c.cache.Get(scope); ok {
		return slices.Clone(v.([]string))
	}
	return nil
}

func (c *SelectionCache) IsSelected(scope, id string) bool {
	return slices.Contains(c.IDs(scope), id)
}

// Toggle flips the selection of id and reports whether it is now selected.
func (c *SelectionCache) Toggle(scope, id string) bool {
	ids := c.IDs(scope)
	if i := slices.Index(ids, id); i >= 0 {
		c.set(scope, slices.Delete(ids, i, i+1))
		return false
	}
	c.set(scope, append(ids, id))
	return true
}

func (c *SelectionCache) Remove(scope, id string) {
	ids := c.IDs(scope)
	c.set(scope, slices.DeleteFunc(ids, func(s string) bool { return s == id }))
}

func (c *SelectionCache) Clear(scope string) {
	c.cache.Delete(scope)
}

func (c *SelectionCache) set(scope string, ids []string) {
	if len(ids) == 0 {
		c.cache.Delete(scope)
		return
	}
	c.cache.SetDefault(scope, ids)
}
