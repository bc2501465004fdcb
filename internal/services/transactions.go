package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plenio/internal/amqp"
	"plenio/internal/core"
	"plenio/internal/log"
	"plenio/internal/store"
)

const (
	// The store is asked for at most listFetchLimit documents, sorted here
	// and cut to listReturnLimit, so no compound index is needed.
	listFetchLimit  = 500
	listReturnLimit = 100

	balanceField = "balance"
)

// TransactionService records transactions and keeps the referenced payment
// method's balance in step with them.
type TransactionService struct {
	transactions store.Collection[core.Transaction]
	methods      store.Collection[core.PaymentMethod]
	now          func() time.Time
	newID        func() string
	events       *events
	changed      func(subject string)
}

// Create adjusts the payment method balance and then stores the
// transaction. If storing fails the adjustment is reverted.
func (s *TransactionService) Create(ctx context.Context, subject string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	now := s.now()
	tx := core.Transaction{
		ID:                 s.newID(),
		UserID:             subject,
		Type:               in.Type,
		Amount:             in.Amount,
		CategoryID:         in.CategoryID,
		PaymentMethodID:    in.PaymentMethodID,
		Description:        in.Description,
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: in.RecurringFrequency,
		CreatedAt:          core.NewTimestamp(now),
	}
	if in.Date != nil && *in.Date != "" {
		tx.Date = *in.Date
	} else {
		tx.Date = now.Format(time.RFC3339Nano)
	}

	delta := core.BalanceDelta(tx.Type, tx.Amount)
	applied, err := s.adjust(ctx, subject, tx.PaymentMethodID, delta)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.transactions.Set(ctx, tx.ID, tx); err != nil {
		if applied {
			s.revert(ctx, subject, tx.PaymentMethodID, delta)
		}
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.touch(subject)
	s.logger(ctx).InfoContext(ctx, "Transaction created", log.NewFields().
		WithResource(subject, store.CollectionTransactions, tx.ID).
		WithBalance(tx.PaymentMethodID, string(tx.Type), tx.Amount, delta).ToSlice()...)
	s.events.publish(ctx, s.event(amqp.EventTransactionCreated, subject, tx))
	return tx, nil
}

// List returns the subject's most recent transactions, newest first.
func (s *TransactionService) List(ctx context.Context, subject string) ([]core.Transaction, error) {
	ts, err := s.transactions.Query(ctx, []store.Filter{store.Eq(core.OwnerField, subject)}, listFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	core.SortNewestFirst(ts)
	if len(ts) > listReturnLimit {
		ts = ts[:listReturnLimit]
	}
	return ts, nil
}

// Delete reverses the transaction's balance effect and removes it.
func (s *TransactionService) Delete(ctx context.Context, subject, id string) error {
	tx, err := owned(ctx, s.transactions, "Transaction", id, subject, func(t core.Transaction) string { return t.UserID })
	if err != nil {
		return err
	}

	delta := -core.BalanceDelta(tx.Type, tx.Amount)
	applied, err := s.adjust(ctx, subject, tx.PaymentMethodID, delta)
	if err != nil {
		return err
	}

	if err := s.transactions.Delete(ctx, id); err != nil {
		if applied {
			s.revert(ctx, subject, tx.PaymentMethodID, delta)
		}
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.touch(subject)
	s.logger(ctx).InfoContext(ctx, "Transaction deleted", log.NewFields().
		WithResource(subject, store.CollectionTransactions, id).
		WithBalance(tx.PaymentMethodID, string(tx.Type), tx.Amount, delta).ToSlice()...)
	s.events.publish(ctx, s.event(amqp.EventTransactionDeleted, subject, tx))
	return nil
}

// adjust adds delta to the payment method balance. A missing payment
// method, or one owned by another subject, is skipped and reported as not
// applied.
func (s *TransactionService) adjust(ctx context.Context, subject, paymentMethodID string, delta float64) (bool, error) {
	pm, err := s.methods.Get(ctx, paymentMethodID)
	if errors.Is(err, store.ErrNotFound) {
		s.skip(ctx, subject, paymentMethodID, "payment method not found")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load payment method %s: %w", paymentMethodID, err)
	}
	if pm.UserID != subject {
		s.skip(ctx, subject, paymentMethodID, "payment method owned by another subject")
		return false, nil
	}

	err = s.methods.Increment(ctx, paymentMethodID, balanceField, delta)
	if errors.Is(err, store.ErrNotFound) {
		s.skip(ctx, subject, paymentMethodID, "payment method deleted concurrently")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update balance of %s: %w", paymentMethodID, err)
	}
	return true, nil
}

func (s *TransactionService) revert(ctx context.Context, subject, paymentMethodID string, delta float64) {
	if err := s.methods.Increment(ctx, paymentMethodID, balanceField, -delta); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger(ctx).ErrorContext(ctx, "Failed to revert balance adjustment",
			log.FieldSubject, subject,
			log.FieldPaymentMethod, paymentMethodID,
			log.FieldDelta, -delta,
			log.FieldError, err)
	}
}

func (s *TransactionService) skip(ctx context.Context, subject, paymentMethodID, reason string) {
	s.logger(ctx).WarnContext(ctx, "Balance update skipped",
		log.FieldSubject, subject,
		log.FieldPaymentMethod, paymentMethodID,
		"reason", reason)
}

func (s *TransactionService) event(eventType, subject string, tx core.Transaction) *amqp.LedgerEvent {
	e := amqp.NewLedgerEvent(eventType, subject, tx.ID)
	e.PaymentMethodID = tx.PaymentMethodID
	e.Amount = tx.Amount
	e.Kind = string(tx.Type)
	return e
}

func (s *TransactionService) touch(subject string) {
	if s.changed != nil {
		s.changed(subject)
	}
}

func (s *TransactionService) logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentLedger)
}
