// Package storetest holds a behavioural suite every store backend must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"plenio/internal/core"
	"plenio/internal/store"
)

// Run exercises a fresh Store returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) *store.Store) {
	t.Run("SetGetOverwrite", func(t *testing.T) { testSetGet(t, open(t)) })
	t.Run("GetMissing", func(t *testing.T) { testMissing(t, open(t)) })
	t.Run("UpdatePartial", func(t *testing.T) { testUpdate(t, open(t)) })
	t.Run("DeleteIdempotent", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("QueryFilterLimitOrder", func(t *testing.T) { testQuery(t, open(t)) })
	t.Run("IncrementExact", func(t *testing.T) { testIncrement(t, open(t)) })
	t.Run("IncrementConcurrent", func(t *testing.T) { testIncrementConcurrent(t, open(t)) })
}

var created = core.NewTimestamp(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))

// Seed writes a document as raw fields, bypassing the typed encoder.
type Seed func(ctx context.Context, collection, id string, doc map[string]any) error

// RunStoredDocuments checks that documents written by other clients, with
// createdAt as an offset timestamp string, decode through Get and Query.
func RunStoredDocuments(t *testing.T, open func(t *testing.T) (*store.Store, Seed)) {
	t.Run("StringCreatedAt", func(t *testing.T) {
		s, seed := open(t)
		testStringCreatedAt(t, s, seed)
	})
}

func method(id, owner string, balance float64) core.PaymentMethod {
	return core.PaymentMethod{ID: id, UserID: owner, Name: "pm-" + id, Icon: "💳", Type: core.PaymentCard, Balance: balance, CreatedAt: created}
}

func testSetGet(t *testing.T, s *store.Store) {
	ctx := context.Background()
	phone := "+34 600 000 000"
	p := core.UserProfile{UID: "u1", Email: "a@example.com", Name: "Ana", Phone: &phone, CreatedAt: created}
	if err := s.Users.Set(ctx, "u1", p); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Users.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != p.Email || got.Phone == nil || *got.Phone != phone || got.CreatedAt != created || got.PhotoURL != nil {
		t.Fatalf("unexpected profile: %+v", got)
	}

	p.Name = "Ana María"
	p.Phone = nil
	if err := s.Users.Set(ctx, "u1", p); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.Users.Get(ctx, "u1")
	if got.Name != "Ana María" || got.Phone != nil {
		t.Fatalf("overwrite not applied: %+v", got)
	}
}

func testMissing(t *testing.T, s *store.Store) {
	ctx := context.Background()
	if _, err := s.Budgets.Get(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get missing: expected ErrNotFound, got %v", err)
	}
	if err := s.Budgets.Update(ctx, "nope", map[string]any{"amount": 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing: expected ErrNotFound, got %v", err)
	}
	if err := s.PaymentMethods.Increment(ctx, "nope", "balance", 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("increment missing: expected ErrNotFound, got %v", err)
	}
}

func testUpdate(t *testing.T, s *store.Store) {
	ctx := context.Background()
	if err := s.PaymentMethods.Set(ctx, "p1", method("p1", "u1", 42)); err != nil {
		t.Fatalf("set: %v", err)
	}
	err := s.PaymentMethods.Update(ctx, "p1", map[string]any{"name": "Savings", "type": core.PaymentBank})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.PaymentMethods.Get(ctx, "p1")
	if got.Name != "Savings" || got.Type != core.PaymentBank || got.Balance != 42 || got.UserID != "u1" || got.CreatedAt != created {
		t.Fatalf("partial update touched other fields: %+v", got)
	}
}

func testDelete(t *testing.T, s *store.Store) {
	ctx := context.Background()
	c := core.Category{ID: "c1", UserID: "u1", Name: "Food", Icon: "🍽️", Type: core.Expense, CreatedAt: created}
	if err := s.Categories.Set(ctx, "c1", c); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Categories.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Categories.Get(ctx, "c1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Categories.Delete(ctx, "c1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func testQuery(t *testing.T, s *store.Store) {
	ctx := context.Background()
	for i, owner := range []string{"u1", "u2", "u1", "u1"} {
		id := string(rune('a' + i))
		tx := core.Transaction{ID: id, UserID: owner, Type: core.Expense, Amount: float64(i + 1), CategoryID: "c", PaymentMethodID: "p", Date: "2025-01-01", CreatedAt: created}
		if err := s.Transactions.Set(ctx, id, tx); err != nil {
			t.Fatalf("set %s: %v", id, err)
		}
	}

	all, err := s.Transactions.Query(ctx, []store.Filter{store.Eq(core.OwnerField, "u1")}, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a" || all[1].ID != "c" || all[2].ID != "d" {
		t.Fatalf("unexpected query result: %+v", all)
	}

	limited, err := s.Transactions.Query(ctx, []store.Filter{store.Eq(core.OwnerField, "u1")}, 2)
	if err != nil {
		t.Fatalf("query with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 results, got %d", len(limited))
	}

	none, err := s.Transactions.Query(ctx, []store.Filter{store.Eq(core.OwnerField, "u3")}, 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result, got %v (err=%v)", none, err)
	}

	both, err := s.Transactions.Query(ctx, []store.Filter{store.Eq(core.OwnerField, "u1"), store.Eq("amount", 3.0)}, 0)
	if err != nil || len(both) != 1 || both[0].ID != "c" {
		t.Fatalf("expected only c for two filters, got %v (err=%v)", both, err)
	}
}

func testIncrement(t *testing.T, s *store.Store) {
	ctx := context.Background()
	if err := s.PaymentMethods.Set(ctx, "p1", method("p1", "u1", 0.1)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.PaymentMethods.Increment(ctx, "p1", "balance", 0.2); err != nil {
		t.Fatalf("increment: %v", err)
	}
	got, _ := s.PaymentMethods.Get(ctx, "p1")
	if got.Balance != 0.3 {
		t.Fatalf("expected 0.3, got %v", got.Balance)
	}
	if err := s.PaymentMethods.Increment(ctx, "p1", "balance", -0.2); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	got, _ = s.PaymentMethods.Get(ctx, "p1")
	if got.Balance != 0.1 {
		t.Fatalf("expected 0.1 after inverse, got %v", got.Balance)
	}
}

func testIncrementConcurrent(t *testing.T, s *store.Store) {
	ctx := context.Background()
	if err := s.PaymentMethods.Set(ctx, "p1", method("p1", "u1", 0)); err != nil {
		t.Fatalf("set: %v", err)
	}
	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.PaymentMethods.Increment(ctx, "p1", "balance", 5)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	got, _ := s.PaymentMethods.Get(ctx, "p1")
	if got.Balance != workers*5 {
		t.Fatalf("lost update: balance %v, want %d", got.Balance, workers*5)
	}
}

func testStringCreatedAt(t *testing.T, s *store.Store, seed Seed) {
	ctx := context.Background()
	const stamp = "2024-05-01T10:00:00.123456+00:00"
	err := seed(ctx, store.CollectionPaymentMethods, "p1", map[string]any{
		"id":        "p1",
		"userId":    "u1",
		"name":      "Wallet",
		"icon":      "👛",
		"type":      "cash",
		"balance":   12.5,
		"createdAt": stamp,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := s.PaymentMethods.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CreatedAt != stamp || got.Balance != 12.5 || got.Type != core.PaymentCash {
		t.Fatalf("unexpected payment method: %+v", got)
	}
	when, err := got.CreatedAt.Time()
	if err != nil || !when.Equal(time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC)) {
		t.Fatalf("createdAt parsed as %v (err=%v)", when, err)
	}

	listed, err := s.PaymentMethods.Query(ctx, []store.Filter{store.Eq(core.OwnerField, "u1")}, 0)
	if err != nil || len(listed) != 1 || listed[0].CreatedAt != stamp {
		t.Fatalf("query: got %+v (err=%v)", listed, err)
	}

	if err := s.PaymentMethods.Increment(ctx, "p1", "balance", 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	got, _ = s.PaymentMethods.Get(ctx, "p1")
	if got.Balance != 13.5 || got.CreatedAt != stamp {
		t.Fatalf("increment rewrote the document: %+v", got)
	}
}
