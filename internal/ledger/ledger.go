// Package ledger owns expense records: create, read, update, delete and
// filtered listing, scoped by owner.
package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/core"
	"smartexpense/internal/storage"
)

// Observer is told about every committed change. Errors are logged and never
// reach the caller of the ledger operation.
type Observer interface {
	ExpenseChanged(ctx context.Context, ev core.ExpenseEvent) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev core.ExpenseEvent) error

func (f ObserverFunc) ExpenseChanged(ctx context.Context, ev core.ExpenseEvent) error {
	return f(ctx, ev)
}

type Service struct {
	store     storage.ExpenseStore
	loc       *time.Location
	clock     *monotonicClock
	newID     func() string
	observers []Observer
}

type Option func(*Service)

// WithLocation sets the time zone that defines calendar months.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces the wall clock used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = newMonotonicClock(now) }
}

// WithIDGenerator replaces the expense id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithObserver registers an observer. Observers run in registration order.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

func New(store storage.ExpenseStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		loc:   time.UTC,
		clock: newMonotonicClock(time.Now),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers o after construction, for observers that themselves
// read through the ledger. It must be called before the service is shared
// between goroutines.
func (s *Service) Subscribe(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// Location is the time zone used for month windows.
func (s *Service) Location() *time.Location { return s.loc }

// Create validates in and stores a new expense for owner.
func (s *Service) Create(ctx context.Context, owner string, in core.NewExpense) (core.Expense, error) {
	now := s.clock.Now()
	e := core.Expense{
		ID:         s.newID(),
		Owner:      owner,
		Amount:     in.Amount,
		Category:   in.Category,
		Note:       in.Note,
		OccurredAt: in.OccurredAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, core.Unavailable("create expense", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", e.ID,
		"owner", owner,
		"category", e.Category.String(),
		"amount_cents", e.Amount.Cents)

	s.notify(ctx, core.ExpenseEvent{
		Type:      core.EventExpenseCreated,
		ExpenseID: e.ID,
		Owner:     owner,
		Expense:   &e,
		Months:    core.TouchedMonths(s.loc, e.OccurredAt),
		At:        now,
	})
	return e, nil
}

// Get returns one expense of owner.
func (s *Service) Get(ctx context.Context, owner, id string) (core.Expense, error) {
	if err := checkOwner(owner); err != nil {
		return core.Expense{}, err
	}
	return s.store.GetExpense(ctx, owner, id)
}

// Update applies patch to the expense and re-validates the result. An empty
// patch returns the record unchanged.
func (s *Service) Update(ctx context.Context, owner, id string, patch core.ExpensePatch) (core.Expense, error) {
	if err := checkOwner(owner); err != nil {
		return core.Expense{}, err
	}
	if patch.IsEmpty() {
		return s.store.GetExpense(ctx, owner, id)
	}

	before, after, err := s.store.UpdateExpense(ctx, owner, id, func(cur core.Expense) (core.Expense, error) {
		next := patch.Apply(cur)
		if err := next.Validate(); err != nil {
			return core.Expense{}, err
		}
		next.UpdatedAt = s.clock.Now()
		return next, nil
	})
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense updated",
		"expense_id", id,
		"owner", owner,
		"amount_cents", after.Amount.Cents)

	s.notify(ctx, core.ExpenseEvent{
		Type:      core.EventExpenseUpdated,
		ExpenseID: id,
		Owner:     owner,
		Expense:   &after,
		Months:    core.TouchedMonths(s.loc, before.OccurredAt, after.OccurredAt),
		At:        after.UpdatedAt,
	})
	return after, nil
}

// Delete removes the expense permanently.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	gone, err := s.store.DeleteExpense(ctx, owner, id)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "owner", owner)

	s.notify(ctx, core.ExpenseEvent{
		Type:      core.EventExpenseDeleted,
		ExpenseID: id,
		Owner:     owner,
		Months:    core.TouchedMonths(s.loc, gone.OccurredAt),
		At:        s.clock.Now(),
	})
	return nil
}

// List returns owner's expenses matching filter, most recent first.
func (s *Service) List(ctx context.Context, owner string, filter core.ExpenseFilter) ([]core.Expense, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	q := storage.ExpenseQuery{
		Category: filter.Category,
		Search:   filter.Search,
	}
	if filter.HasPeriod() {
		q.From, q.To = core.MonthWindow(filter.Year, filter.Month, s.loc)
	}
	return s.store.ListExpenses(ctx, owner, q)
}

func (s *Service) notify(ctx context.Context, ev core.ExpenseEvent) {
	for _, o := range s.observers {
		if err := o.ExpenseChanged(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "Failed to notify expense observer",
				"event", string(ev.Type),
				"expense_id", ev.ExpenseID,
				"error", err)
		}
	}
}

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return core.ErrMissingOwner
	}
	return nil
}
