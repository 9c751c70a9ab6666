// Package budget stores the single monthly spending limit of each owner.
package budget

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"smartexpense/internal/core"
	"smartexpense/internal/storage"
)

type Service struct {
	store        storage.BudgetStore
	now          func() time.Time
	defaultLimit core.Money
}

type Option func(*Service)

// WithDefaultLimit overrides core.DefaultMonthlyLimit.
func WithDefaultLimit(m core.Money) Option {
	return func(s *Service) {
		if m.Cents > 0 {
			s.defaultLimit = m
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store storage.BudgetStore, opts ...Option) *Service {
	s := &Service{
		store:        store,
		now:          time.Now,
		defaultLimit: core.DefaultMonthlyLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns owner's budget. An owner who never set one gets the default
// limit with IsDefault set; nothing is written.
func (s *Service) Get(ctx context.Context, owner string) (core.Budget, error) {
	if strings.TrimSpace(owner) == "" {
		return core.Budget{}, core.ErrMissingOwner
	}
	b, ok, err := s.store.GetBudget(ctx, owner)
	if err != nil {
		return core.Budget{}, core.Unavailable("get budget", err)
	}
	if !ok {
		return core.Budget{Owner: owner, MonthlyLimit: s.defaultLimit, IsDefault: true}, nil
	}
	return b, nil
}

// Set creates or replaces owner's monthly limit.
func (s *Service) Set(ctx context.Context, owner string, limit core.Money) (core.Budget, error) {
	if strings.TrimSpace(owner) == "" {
		return core.Budget{}, core.ErrMissingOwner
	}
	if limit.Cents <= 0 {
		return core.Budget{}, core.ErrInvalidLimit
	}
	b := core.Budget{
		Owner:        owner,
		MonthlyLimit: limit,
		UpdatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.store.PutBudget(ctx, b); err != nil {
		return core.Budget{}, core.Unavailable("set budget", err)
	}

	slog.InfoContext(ctx, "Budget updated", "owner", owner, "limit_cents", limit.Cents)
	return b, nil
}
