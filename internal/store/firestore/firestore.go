// Package firestore stores ledger documents in Cloud Firestore using the
// same collection names the mobile and web clients read.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"plenio/internal/core"
	"plenio/internal/store"
)

// Concurrent balance updates on one payment method contend on the same
// document; allow more retries than the client default.
const maxTxAttempts = 25

// Client wraps a Firestore client for the ledger collections.
type Client struct {
	fs *firestore.Client
}

// Open connects to the project's default database.
func Open(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	fs, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	slog.Info("Firestore store ready", "project", projectID)
	return &Client{fs: fs}, nil
}

func (c *Client) Close() error {
	return c.fs.Close()
}

// Store returns the ledger collections backed by Firestore.
func (c *Client) Store() *store.Store {
	return &store.Store{
		Users:          NewCollection[core.UserProfile](c, store.CollectionUsers),
		PaymentMethods: NewCollection[core.PaymentMethod](c, store.CollectionPaymentMethods),
		Categories:     NewCollection[core.Category](c, store.CollectionCategories),
		Transactions:   NewCollection[core.Transaction](c, store.CollectionTransactions),
		Budgets:        NewCollection[core.Budget](c, store.CollectionBudgets),
	}
}

// Collection maps store.Collection onto a Firestore collection. Query
// results come back in document id order.
type Collection[T any] struct {
	fs  *firestore.Client
	ref *firestore.CollectionRef
}

var _ store.Collection[core.Category] = (*Collection[core.Category])(nil)

func NewCollection[T any](c *Client, name string) *Collection[T] {
	return &Collection[T]{fs: c.fs, ref: c.fs.Collection(name)}
}

func (c *Collection[T]) Set(ctx context.Context, id string, doc T) error {
	if _, err := c.ref.Doc(id).Set(ctx, doc); err != nil {
		return fmt.Errorf("set %s/%s: %w", c.ref.ID, id, err)
	}
	return nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	snap, err := c.ref.Doc(id).Get(ctx)
	if err != nil {
		return doc, c.wrap("get", id, err)
	}
	if err := snap.DataTo(&doc); err != nil {
		return doc, fmt.Errorf("decode %s/%s: %w", c.ref.ID, id, err)
	}
	return doc, nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := c.Get(ctx, id)
		return err
	}
	updates := make([]firestore.Update, 0, len(fields))
	for path, v := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}
	if _, err := c.ref.Doc(id).Update(ctx, updates); err != nil {
		return c.wrap("update", id, err)
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if _, err := c.ref.Doc(id).Delete(ctx); err != nil {
		return c.wrap("delete", id, err)
	}
	return nil
}

func (c *Collection[T]) Query(ctx context.Context, filters []store.Filter, limit int) ([]T, error) {
	q := c.ref.Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := make([]T, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", c.ref.ID, err)
		}
		var doc T
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c.ref.ID, snap.Ref.ID, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// Increment reads and rewrites the field in a Firestore transaction so the
// sum is computed in decimal rather than by the server's float transform.
func (c *Collection[T]) Increment(ctx context.Context, id, field string, delta float64) error {
	ref := c.ref.Doc(id)
	err := c.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := numberAt(snap, field)
		if err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{{Path: field, Value: core.AddAmounts(current, delta)}})
	}, firestore.MaxAttempts(maxTxAttempts))
	if err != nil {
		return c.wrap("increment", id, err)
	}
	return nil
}

func numberAt(snap *firestore.DocumentSnapshot, field string) (float64, error) {
	v, err := snap.DataAt(field)
	if err != nil {
		// Missing field counts as zero.
		return 0, nil
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("field %s is not numeric (%T)", field, v)
	}
}

func (c *Collection[T]) wrap(op, id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s %s/%s: %w", op, c.ref.ID, id, err)
}
