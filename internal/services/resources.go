package services

import (
	"context"
	"fmt"
	"time"

	"plenio/internal/core"
	"plenio/internal/log"
	"plenio/internal/store"
)

type resourceDef[T any, In core.Input] struct {
	name   string // for messages, "Payment method"
	kind   string // collection name, for logs
	owner  func(T) string
	build  func(id, owner string, createdAt core.Timestamp, in In) T
	fields func(in In) map[string]any

	changed func(subject string)
	deleted func(ctx context.Context, subject string, doc T)
}

// ResourceService implements create, list, update and delete for an
// owned resource whose only side effects are cache invalidation and events.
type ResourceService[T any, In core.Input] struct {
	coll  store.Collection[T]
	def   resourceDef[T, In]
	now   func() time.Time
	newID func() string
}

func newResourceService[T any, In core.Input](c store.Collection[T], opts Options, def resourceDef[T, In]) *ResourceService[T, In] {
	return &ResourceService[T, In]{coll: c, def: def, now: opts.Now, newID: opts.NewID}
}

func (s *ResourceService[T, In]) Create(ctx context.Context, subject string, in In) (T, error) {
	var zero T
	if err := in.Validate(); err != nil {
		return zero, err
	}
	id := s.newID()
	doc := s.def.build(id, subject, core.NewTimestamp(s.now()), in)
	if err := s.coll.Set(ctx, id, doc); err != nil {
		return zero, fmt.Errorf("create %s: %w", s.def.kind, err)
	}
	s.touch(subject)
	s.logger(ctx).InfoContext(ctx, s.def.name+" created", log.NewFields().WithResource(subject, s.def.kind, id).ToSlice()...)
	return doc, nil
}

func (s *ResourceService[T, In]) List(ctx context.Context, subject string) ([]T, error) {
	docs, err := s.coll.Query(ctx, []store.Filter{store.Eq(core.OwnerField, subject)}, 0)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.def.kind, err)
	}
	return docs, nil
}

// Update overwrites the client-settable fields; id, owner and creation
// time are kept.
func (s *ResourceService[T, In]) Update(ctx context.Context, subject, id string, in In) (T, error) {
	var zero T
	if err := in.Validate(); err != nil {
		return zero, err
	}
	if _, err := owned(ctx, s.coll, s.def.name, id, subject, s.def.owner); err != nil {
		return zero, err
	}
	if err := s.coll.Update(ctx, id, s.def.fields(in)); err != nil {
		return zero, fmt.Errorf("update %s %s: %w", s.def.kind, id, err)
	}
	doc, err := s.coll.Get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("reload %s %s: %w", s.def.kind, id, err)
	}
	s.touch(subject)
	return doc, nil
}

// Delete removes the document. References from other documents are left
// dangling.
func (s *ResourceService[T, In]) Delete(ctx context.Context, subject, id string) error {
	doc, err := owned(ctx, s.coll, s.def.name, id, subject, s.def.owner)
	if err != nil {
		return err
	}
	if err := s.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", s.def.kind, id, err)
	}
	s.touch(subject)
	if s.def.deleted != nil {
		s.def.deleted(ctx, subject, doc)
	}
	s.logger(ctx).InfoContext(ctx, s.def.name+" deleted", log.NewFields().WithResource(subject, s.def.kind, id).ToSlice()...)
	return nil
}

// Name is the human readable resource name, e.g. "Payment method".
func (s *ResourceService[T, In]) Name() string {
	return s.def.name
}

func (s *ResourceService[T, In]) touch(subject string) {
	if s.def.changed != nil {
		s.def.changed(subject)
	}
}

func (s *ResourceService[T, In]) logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentLedger)
}
