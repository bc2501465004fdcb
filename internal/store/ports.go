// Package store defines the document store capability the ledger runs on.
//
// Collections hold JSON-shaped documents keyed by id. Field names used in
// filters, partial updates and increments are the documents' JSON names.
package store

import (
	"context"
	"errors"

	"plenio/internal/core"
)

// ErrNotFound is returned by Get, Update and Increment for unknown ids.
var ErrNotFound = errors.New("document not found")

const (
	CollectionUsers          = "users"
	CollectionPaymentMethods = "paymentMethods"
	CollectionCategories     = "categories"
	CollectionTransactions   = "transactions"
	CollectionBudgets        = "budgets"
)

// Filter is an equality condition on a top-level document field.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Collection is one named collection of documents of type T.
type Collection[T any] interface {
	// Set creates or fully overwrites the document.
	Set(ctx context.Context, id string, doc T) error
	Get(ctx context.Context, id string) (T, error)
	// Update overwrites only the given fields.
	Update(ctx context.Context, id string, fields map[string]any) error
	// Delete removes the document; deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Query returns documents matching every filter in insertion order.
	// A limit <= 0 means no limit.
	Query(ctx context.Context, filters []Filter, limit int) ([]T, error)
	// Increment atomically adds delta to a numeric field.
	Increment(ctx context.Context, id, field string, delta float64) error
}

// Store bundles the ledger collections.
type Store struct {
	Users          Collection[core.UserProfile]
	PaymentMethods Collection[core.PaymentMethod]
	Categories     Collection[core.Category]
	Transactions   Collection[core.Transaction]
	Budgets        Collection[core.Budget]
}
