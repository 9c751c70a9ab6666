package storage

import (
	"context"
	"errors"
	"sync"

	"smartexpense/internal/core"
)

var errAlreadyExists = errors.New("expense id already exists")

type ownerShard struct {
	mu       sync.RWMutex
	expenses map[string]core.Expense
	budget   *core.Budget
}

// MemoryStore keeps everything in process. Writers of the same owner
// serialize on that owner's lock; different owners never contend.
type MemoryStore struct {
	mu     sync.Mutex
	owners map[string]*ownerShard
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{owners: make(map[string]*ownerShard)}
}

func (s *MemoryStore) shard(owner string) *ownerShard {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.owners[owner]
	if !ok {
		sh = &ownerShard{expenses: make(map[string]core.Expense)}
		s.owners[owner] = sh
	}
	return sh
}

func (s *MemoryStore) lookup(owner string) *ownerShard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[owner]
}

func (s *MemoryStore) CreateExpense(ctx context.Context, e core.Expense) error {
	if err := ctx.Err(); err != nil {
		return core.Unavailable("create expense", err)
	}
	sh := s.shard(e.Owner)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, dup := sh.expenses[e.ID]; dup {
		return errAlreadyExists
	}
	sh.expenses[e.ID] = e
	return nil
}

func (s *MemoryStore) GetExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return core.Expense{}, core.Unavailable("get expense", err)
	}
	sh := s.lookup(owner)
	if sh == nil {
		return core.Expense{}, core.ExpenseNotFound(id)
	}
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.expenses[id]
	if !ok {
		return core.Expense{}, core.ExpenseNotFound(id)
	}
	return e, nil
}

func (s *MemoryStore) UpdateExpense(ctx context.Context, owner, id string, fn UpdateFunc) (core.Expense, core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return core.Expense{}, core.Expense{}, core.Unavailable("update expense", err)
	}
	sh := s.lookup(owner)
	if sh == nil {
		return core.Expense{}, core.Expense{}, core.ExpenseNotFound(id)
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	before, ok := sh.expenses[id]
	if !ok {
		return core.Expense{}, core.Expense{}, core.ExpenseNotFound(id)
	}
	after, err := fn(before)
	if err != nil {
		return core.Expense{}, core.Expense{}, err
	}
	after.ID, after.Owner = before.ID, before.Owner
	sh.expenses[id] = after
	return before, after, nil
}

func (s *MemoryStore) DeleteExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return core.Expense{}, core.Unavailable("delete expense", err)
	}
	sh := s.lookup(owner)
	if sh == nil {
		return core.Expense{}, core.ExpenseNotFound(id)
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.expenses[id]
	if !ok {
		return core.Expense{}, core.ExpenseNotFound(id)
	}
	delete(sh.expenses, id)
	return e, nil
}

func (s *MemoryStore) ListExpenses(ctx context.Context, owner string, q ExpenseQuery) ([]core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.Unavailable("list expenses", err)
	}
	sh := s.lookup(owner)
	if sh == nil {
		return []core.Expense{}, nil
	}
	sh.mu.RLock()
	out := make([]core.Expense, 0, len(sh.expenses))
	for _, e := range sh.expenses {
		if q.matches(e) {
			out = append(out, e)
		}
	}
	sh.mu.RUnlock()
	SortExpenses(out)
	return out, nil
}

func (s *MemoryStore) GetBudget(ctx context.Context, owner string) (core.Budget, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.Budget{}, false, core.Unavailable("get budget", err)
	}
	sh := s.lookup(owner)
	if sh == nil {
		return core.Budget{}, false, nil
	}
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if sh.budget == nil {
		return core.Budget{}, false, nil
	}
	return *sh.budget, true, nil
}

func (s *MemoryStore) PutBudget(ctx context.Context, b core.Budget) error {
	if err := ctx.Err(); err != nil {
		return core.Unavailable("put budget", err)
	}
	sh := s.shard(b.Owner)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	b.IsDefault = false
	sh.budget = &b
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() error { return nil }
