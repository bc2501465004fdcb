// Package services implements the ledger operations on top of a store.
// Every method takes the authenticated subject and scopes its reads and
// writes to documents owned by that subject.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"plenio/internal/amqp"
	"plenio/internal/cache"
	"plenio/internal/core"
	"plenio/internal/log"
	"plenio/internal/store"
)

const summaryCacheSize = 1000

// EventPublisher receives ledger events after successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// Options tunes a Ledger. The zero value is usable.
type Options struct {
	// Publisher is optional; nil disables ledger events.
	Publisher EventPublisher
	// SummaryCacheTTL of 0 disables the summary cache.
	SummaryCacheTTL time.Duration
	Now             func() time.Time
	NewID           func() string
}

// Ledger bundles the per-resource services.
type Ledger struct {
	Profiles       *ProfileService
	PaymentMethods *ResourceService[core.PaymentMethod, core.PaymentMethodInput]
	Categories     *ResourceService[core.Category, core.CategoryInput]
	Budgets        *ResourceService[core.Budget, core.BudgetInput]
	Transactions   *TransactionService
	Summary        *SummaryService

	store *store.Store
	cache *cache.LRUCache[core.Summary]
}

func NewLedger(st *store.Store, opts Options) *Ledger {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	var summaries *cache.LRUCache[core.Summary]
	if opts.SummaryCacheTTL > 0 {
		summaries = cache.NewLRUCache[core.Summary](summaryCacheSize, opts.SummaryCacheTTL)
	}
	ev := &events{publisher: opts.Publisher}
	inv := invalidator{cache: summaries}

	l := &Ledger{store: st, cache: summaries}
	l.Profiles = &ProfileService{users: st.Users, now: opts.Now}
	l.PaymentMethods = newResourceService(st.PaymentMethods, opts, resourceDef[core.PaymentMethod, core.PaymentMethodInput]{
		name:  "Payment method",
		kind:  store.CollectionPaymentMethods,
		owner: func(pm core.PaymentMethod) string { return pm.UserID },
		build: func(id, owner string, createdAt core.Timestamp, in core.PaymentMethodInput) core.PaymentMethod {
			return core.PaymentMethod{ID: id, UserID: owner, Name: in.Name, Icon: in.Icon, Type: in.Kind(), Balance: 0, CreatedAt: createdAt}
		},
		fields: func(in core.PaymentMethodInput) map[string]any {
			return map[string]any{"name": in.Name, "icon": in.Icon, "type": in.Kind()}
		},
		changed: inv.forget,
		deleted: func(ctx context.Context, subject string, pm core.PaymentMethod) {
			e := amqp.NewLedgerEvent(amqp.EventPaymentMethodDeleted, subject, pm.ID)
			e.Amount = pm.Balance
			ev.publish(ctx, e)
		},
	})
	l.Categories = newResourceService(st.Categories, opts, resourceDef[core.Category, core.CategoryInput]{
		name:  "Category",
		kind:  store.CollectionCategories,
		owner: func(c core.Category) string { return c.UserID },
		build: func(id, owner string, createdAt core.Timestamp, in core.CategoryInput) core.Category {
			return core.Category{ID: id, UserID: owner, Name: in.Name, Icon: in.Icon, Type: in.Type, CreatedAt: createdAt}
		},
		fields: func(in core.CategoryInput) map[string]any {
			return map[string]any{"name": in.Name, "icon": in.Icon, "type": in.Type}
		},
	})
	l.Budgets = newResourceService(st.Budgets, opts, resourceDef[core.Budget, core.BudgetInput]{
		name:  "Budget",
		kind:  store.CollectionBudgets,
		owner: func(b core.Budget) string { return b.UserID },
		build: func(id, owner string, createdAt core.Timestamp, in core.BudgetInput) core.Budget {
			return core.Budget{ID: id, UserID: owner, CategoryID: in.CategoryID, Amount: in.Amount, Period: in.Period, CreatedAt: createdAt}
		},
		fields: func(in core.BudgetInput) map[string]any {
			return map[string]any{"categoryId": in.CategoryID, "amount": in.Amount, "period": in.Period}
		},
	})
	l.Transactions = &TransactionService{
		transactions: st.Transactions,
		methods:      st.PaymentMethods,
		now:          opts.Now,
		newID:        opts.NewID,
		events:       ev,
		changed:      inv.forget,
	}
	l.Summary = &SummaryService{
		transactions: st.Transactions,
		methods:      st.PaymentMethods,
		cache:        summaries,
	}
	return l
}

// Ready checks the store with a cheap bounded query.
func (l *Ledger) Ready(ctx context.Context) error {
	if _, err := l.store.Users.Query(ctx, []store.Filter{store.Eq("uid", "__readiness__")}, 1); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

// Cache exposes the summary cache for the cleanup manager; nil when disabled.
func (l *Ledger) Cache() *cache.LRUCache[core.Summary] {
	return l.cache
}

// SuggestIcon never fails: any panic degrades to the default icon.
func (l *Ledger) SuggestIcon(ctx context.Context, categoryName string) (icon string) {
	defer func() {
		if r := recover(); r != nil {
			log.FromContext(ctx).WithComponent(log.ComponentLedger).WarnContext(ctx, "Icon suggestion failed", "panic", r)
			icon = core.DefaultIcon
		}
	}()
	return core.SuggestIcon(categoryName)
}

// events publishes ledger events without ever failing the caller.
type events struct {
	publisher EventPublisher
}

func (e *events) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if e == nil || e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentAMQP).WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEventType, event.Type,
			log.FieldResourceID, event.ID,
			log.FieldError, err)
	}
}

type invalidator struct {
	cache *cache.LRUCache[core.Summary]
}

func (i invalidator) forget(subject string) {
	if i.cache != nil {
		i.cache.Delete(subject)
	}
}

// owned loads id and checks it belongs to subject.
func owned[T any](ctx context.Context, c store.Collection[T], name, id, subject string, owner func(T) string) (T, error) {
	doc, err := c.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return doc, core.NotFound(name)
	}
	if err != nil {
		return doc, fmt.Errorf("load %s %s: %w", name, id, err)
	}
	if owner(doc) != subject {
		return doc, core.ErrForbidden
	}
	return doc, nil
}
