// Package storage provides the durable keyed store behind the ledger and the
// budget store: an in-memory implementation and a SQL repository that runs on
// SQLite or PostgreSQL.
package storage

import (
	"context"
	"sort"
	"time"

	"smartexpense/internal/core"
)

// ExpenseQuery selects one owner's expenses. From and To bound OccurredAt as
// [From, To); a zero bound is open.
type ExpenseQuery struct {
	Category *core.Category
	From     time.Time
	To       time.Time
	Search   string
}

// UpdateFunc computes the new state of an expense from its current state.
// Returning an error aborts the update and leaves the record untouched.
type UpdateFunc func(current core.Expense) (core.Expense, error)

// ExpenseStore persists expenses. Every method is scoped by owner; a record
// owned by someone else is reported as not found.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) error
	GetExpense(ctx context.Context, owner, id string) (core.Expense, error)
	// UpdateExpense applies fn atomically with respect to other writes of the
	// same owner and returns the record before and after the change.
	UpdateExpense(ctx context.Context, owner, id string, fn UpdateFunc) (before, after core.Expense, err error)
	// DeleteExpense removes the record and returns it as it was.
	DeleteExpense(ctx context.Context, owner, id string) (core.Expense, error)
	// ListExpenses returns matches ordered by OccurredAt desc, CreatedAt desc,
	// ID desc.
	ListExpenses(ctx context.Context, owner string, q ExpenseQuery) ([]core.Expense, error)
}

// BudgetStore persists one monthly limit per owner.
type BudgetStore interface {
	// GetBudget reports ok=false when nothing was stored for owner.
	GetBudget(ctx context.Context, owner string) (b core.Budget, ok bool, err error)
	PutBudget(ctx context.Context, b core.Budget) error
}

// Store is the full storage surface used by the services.
type Store interface {
	ExpenseStore
	BudgetStore
	Ping(ctx context.Context) error
	Close() error
}

func (q ExpenseQuery) matches(e core.Expense) bool {
	if q.Category != nil && e.Category != *q.Category {
		return false
	}
	if !q.From.IsZero() && e.OccurredAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !e.OccurredAt.Before(q.To) {
		return false
	}
	return core.MatchesSearch(e.Note, q.Search)
}

// SortExpenses orders expenses most recent first.
func SortExpenses(xs []core.Expense) {
	sort.SliceStable(xs, func(i, j int) bool {
		a, b := xs[i], xs[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.After(b.OccurredAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
