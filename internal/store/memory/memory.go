// Package memory keeps ledger documents in process memory. It backs the
// "memory" data backend and serves as the store fake in tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"plenio/internal/core"
	"plenio/internal/store"
)

// Collection stores JSON-encoded documents in insertion order.
type Collection[T any] struct {
	mu    sync.Mutex
	docs  map[string][]byte
	order []string
}

var _ store.Collection[core.Transaction] = (*Collection[core.Transaction])(nil)

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{docs: make(map[string][]byte)}
}

// New returns a Store whose collections all live in memory.
func New() *store.Store {
	return &store.Store{
		Users:          NewCollection[core.UserProfile](),
		PaymentMethods: NewCollection[core.PaymentMethod](),
		Categories:     NewCollection[core.Category](),
		Transactions:   NewCollection[core.Transaction](),
		Budgets:        NewCollection[core.Budget](),
	}
}

func (c *Collection[T]) Set(_ context.Context, id string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = raw
	return nil
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.Lock()
	raw, ok := c.docs[id]
	c.mu.Unlock()

	var doc T
	if !ok {
		return doc, store.ErrNotFound
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

func (c *Collection[T]) Update(_ context.Context, id string, fields map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	merged, err := store.MergeFields(raw, fields)
	if err != nil {
		return err
	}
	c.docs[id] = merged
	return nil
}

func (c *Collection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *Collection[T]) Query(_ context.Context, filters []store.Filter, limit int) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, 0)
	for _, id := range c.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		raw := c.docs[id]
		ok, err := store.Matches(raw, filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *Collection[T]) Increment(_ context.Context, id, field string, delta float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	updated, err := store.AddToField(raw, field, delta)
	if err != nil {
		return err
	}
	c.docs[id] = updated
	return nil
}

// Len returns the number of stored documents.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}
