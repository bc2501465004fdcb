package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plenio/internal/core"
	"plenio/internal/store"
)

// ProfileService stores one profile document per subject, keyed by uid.
type ProfileService struct {
	users store.Collection[core.UserProfile]
	now   func() time.Time
}

// Upsert fully replaces the caller's profile. The payload uid must be the
// caller's own subject.
func (s *ProfileService) Upsert(ctx context.Context, subject string, p core.UserProfile) (core.UserProfile, error) {
	if err := p.Validate(); err != nil {
		return core.UserProfile{}, err
	}
	if p.UID != subject {
		return core.UserProfile{}, core.ErrForbidden
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = core.NewTimestamp(s.now())
	}
	if err := s.users.Set(ctx, subject, p); err != nil {
		return core.UserProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) Get(ctx context.Context, subject string) (core.UserProfile, error) {
	p, err := s.users.Get(ctx, subject)
	if errors.Is(err, store.ErrNotFound) {
		return core.UserProfile{}, core.NotFound("Profile")
	}
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}
