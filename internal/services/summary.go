package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"plenio/internal/cache"
	"plenio/internal/core"
	"plenio/internal/store"
)

// SummaryService computes income, expense and balance totals by scanning
// all of a subject's transactions and payment methods.
type SummaryService struct {
	transactions store.Collection[core.Transaction]
	methods      store.Collection[core.PaymentMethod]
	cache        *cache.LRUCache[core.Summary]
}

func (s *SummaryService) Get(ctx context.Context, subject string) (core.Summary, error) {
	var gen uint64
	if s.cache != nil {
		if sum, ok := s.cache.Get(subject); ok {
			return sum, nil
		}
		gen = s.cache.Generation()
	}

	owner := []store.Filter{store.Eq(core.OwnerField, subject)}
	var (
		ts  []core.Transaction
		pms []core.PaymentMethod
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if ts, err = s.transactions.Query(gctx, owner, 0); err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if pms, err = s.methods.Query(gctx, owner, 0); err != nil {
			return fmt.Errorf("load payment methods: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	sum := core.Summarize(ts, pms)
	if s.cache != nil {
		s.cache.SetIfGeneration(subject, sum, gen)
	}
	return sum, nil
}
