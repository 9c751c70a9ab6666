// Package analytics derives monthly summaries from the ledger and the budget
// store.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"smartexpense/internal/cache"
	"smartexpense/internal/core"
)

// ExpenseLister is the slice of the ledger the engine reads.
type ExpenseLister interface {
	List(ctx context.Context, owner string, filter core.ExpenseFilter) ([]core.Expense, error)
	Location() *time.Location
}

// BudgetReader is the slice of the budget store the engine reads.
type BudgetReader interface {
	Get(ctx context.Context, owner string) (core.Budget, error)
}

// Engine computes MonthlySummary values. Month totals may be cached; the
// budget limit is always read fresh.
type Engine struct {
	expenses ExpenseLister
	budgets  BudgetReader
	totals   cache.Cache[core.MonthTotals]
	group    singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

type Option func(*Engine)

// WithTotalsCache enables caching of month totals.
func WithTotalsCache(c cache.Cache[core.MonthTotals]) Option {
	return func(e *Engine) { e.totals = c }
}

func New(expenses ExpenseLister, budgets BudgetReader, opts ...Option) *Engine {
	e := &Engine{
		expenses: expenses,
		budgets:  budgets,
		gens:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summarize returns owner's totals for the calendar month plus the current
// monthly limit. It has no side effects beyond filling the cache.
func (e *Engine) Summarize(ctx context.Context, owner string, month, year int) (core.MonthlySummary, error) {
	if strings.TrimSpace(owner) == "" {
		return core.MonthlySummary{}, core.ErrMissingOwner
	}
	if err := core.ValidateMonth(year, month); err != nil {
		return core.MonthlySummary{}, err
	}

	totals, err := e.monthTotals(ctx, owner, year, month)
	if err != nil {
		return core.MonthlySummary{}, err
	}

	b, err := e.budgets.Get(ctx, owner)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return totals.Summary(owner, b.MonthlyLimit), nil
}

func (e *Engine) monthTotals(ctx context.Context, owner string, year, month int) (core.MonthTotals, error) {
	if e.totals == nil {
		return e.computeTotals(ctx, owner, year, month)
	}

	key := totalsKey(owner, year, month)
	if mt, ok := e.totals.Get(ctx, key); ok {
		return mt, nil
	}

	gen := e.generation(owner)
	// The generation is part of the flight key so a computation started
	// before a write is never shared with callers arriving after it.
	v, err, shared := e.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		mt, err := e.computeTotals(ctx, owner, year, month)
		if err != nil {
			return nil, err
		}
		if e.generation(owner) == gen {
			e.totals.Set(ctx, key, mt)
			// A write may have invalidated between the check and the Set.
			// ExpenseChanged bumps before deleting, so either its Delete
			// or this one removes the stale entry.
			if e.generation(owner) != gen {
				e.totals.Delete(ctx, key)
			}
		}
		return mt, nil
	})
	if err != nil {
		return core.MonthTotals{}, err
	}
	if shared {
		slog.DebugContext(ctx, "Month totals computation shared", "owner", owner, "year", year, "month", month)
	}
	return v.(core.MonthTotals), nil
}

func (e *Engine) computeTotals(ctx context.Context, owner string, year, month int) (core.MonthTotals, error) {
	exps, err := e.expenses.List(ctx, owner, core.ExpenseFilter{Month: month, Year: year})
	if err != nil {
		return core.MonthTotals{}, err
	}
	return core.FoldMonth(year, month, exps), nil
}

// ExpenseChanged drops cached totals of every month the change touched. It
// lets the engine be registered as a ledger observer.
func (e *Engine) ExpenseChanged(ctx context.Context, ev core.ExpenseEvent) error {
	e.mu.Lock()
	e.gens[ev.Owner]++
	e.mu.Unlock()

	if e.totals == nil || len(ev.Months) == 0 {
		return nil
	}
	keys := make([]string, len(ev.Months))
	for i, ym := range ev.Months {
		keys[i] = totalsKey(ev.Owner, ym.Year, ym.Month)
	}
	e.totals.Delete(ctx, keys...)
	return nil
}

func (e *Engine) generation(owner string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gens[owner]
}

func totalsKey(owner string, year, month int) string {
	return fmt.Sprintf("totals:%s:%04d-%02d", owner, year, month)
}
