package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"smartexpense/internal/core"
)

// dialect captures the differences between the SQL engines we run on.
type dialect struct {
	name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered  bool
	forUpdate string
}

var (
	sqliteDialect   = dialect{name: "sqlite"}
	postgresDialect = dialect{name: "postgres", numbered: true, forUpdate: " FOR UPDATE"}
)

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const expenseColumns = "id, owner, amount_cents, category, note, occurred_at, created_at_us, updated_at_us"

// SQLRepository implements Store over database/sql.
type SQLRepository struct {
	db *sql.DB
	d  dialect
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return core.Unavailable("ping", err)
	}
	return nil
}

func (r *SQLRepository) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, r.d.rebind(`
		INSERT INTO expenses (id, owner, amount_cents, category, note, occurred_at, occurred_at_us, created_at_us, updated_at_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Owner, e.Amount.Cents, e.Category.String(), e.Note,
		e.OccurredAt.Format(time.RFC3339Nano), e.OccurredAt.UnixMicro(),
		e.CreatedAt.UnixMicro(), e.UpdatedAt.UnixMicro(),
	)
	if err != nil {
		return core.Unavailable("create expense", err)
	}

	slog.DebugContext(ctx, "Expense stored",
		"backend", r.d.name,
		"expense_id", e.ID,
		"owner", e.Owner,
		"amount_cents", e.Amount.Cents)
	return nil
}

func (r *SQLRepository) GetExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, r.d.rebind(
		"SELECT "+expenseColumns+" FROM expenses WHERE owner = ? AND id = ?"), owner, id)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, r.classify("get expense", id, err)
	}
	return e, nil
}

func (r *SQLRepository) UpdateExpense(ctx context.Context, owner, id string, fn UpdateFunc) (core.Expense, core.Expense, error) {
	var before, after core.Expense
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, r.d.rebind(
			"SELECT "+expenseColumns+" FROM expenses WHERE owner = ? AND id = ?"+r.d.forUpdate), owner, id)
		cur, err := scanExpense(row)
		if err != nil {
			return r.classify("update expense", id, err)
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		next.ID, next.Owner = cur.ID, cur.Owner

		_, err = tx.ExecContext(ctx, r.d.rebind(`
			UPDATE expenses
			SET amount_cents = ?, category = ?, note = ?, occurred_at = ?, occurred_at_us = ?, updated_at_us = ?
			WHERE owner = ? AND id = ?`),
			next.Amount.Cents, next.Category.String(), next.Note,
			next.OccurredAt.Format(time.RFC3339Nano), next.OccurredAt.UnixMicro(),
			next.UpdatedAt.UnixMicro(), owner, id,
		)
		if err != nil {
			return core.Unavailable("update expense", err)
		}
		before, after = cur, next
		return nil
	})
	if err != nil {
		return core.Expense{}, core.Expense{}, err
	}
	return before, after, nil
}

func (r *SQLRepository) DeleteExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	var gone core.Expense
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, r.d.rebind(
			"SELECT "+expenseColumns+" FROM expenses WHERE owner = ? AND id = ?"+r.d.forUpdate), owner, id)
		cur, err := scanExpense(row)
		if err != nil {
			return r.classify("delete expense", id, err)
		}
		if _, err := tx.ExecContext(ctx, r.d.rebind("DELETE FROM expenses WHERE owner = ? AND id = ?"), owner, id); err != nil {
			return core.Unavailable("delete expense", err)
		}
		gone = cur
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	return gone, nil
}

func (r *SQLRepository) ListExpenses(ctx context.Context, owner string, q ExpenseQuery) ([]core.Expense, error) {
	var (
		where = []string{"owner = ?"}
		args  = []any{owner}
	)
	if q.Category != nil {
		where = append(where, "category = ?")
		args = append(args, q.Category.String())
	}
	if !q.From.IsZero() {
		where = append(where, "occurred_at_us >= ?")
		args = append(args, q.From.UnixMicro())
	}
	if !q.To.IsZero() {
		where = append(where, "occurred_at_us < ?")
		args = append(args, q.To.UnixMicro())
	}
	query := "SELECT " + expenseColumns + " FROM expenses WHERE " + strings.Join(where, " AND ") +
		" ORDER BY occurred_at_us DESC, created_at_us DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, core.Unavailable("list expenses", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, core.Unavailable("list expenses", err)
		}
		// Search is matched in Go on every backend.
		if core.MatchesSearch(e.Note, q.Search) {
			out = append(out, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, core.Unavailable("list expenses", err)
	}
	return out, nil
}

func (r *SQLRepository) GetBudget(ctx context.Context, owner string) (core.Budget, bool, error) {
	var (
		cents int64
		us    int64
	)
	err := r.db.QueryRowContext(ctx, r.d.rebind(
		"SELECT monthly_limit_cents, updated_at_us FROM budgets WHERE owner = ?"), owner).Scan(&cents, &us)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, core.Unavailable("get budget", err)
	}
	return core.Budget{
		Owner:        owner,
		MonthlyLimit: core.Cents(cents),
		UpdatedAt:    time.UnixMicro(us).UTC(),
	}, true, nil
}

func (r *SQLRepository) PutBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx, r.d.rebind(`
		INSERT INTO budgets (owner, monthly_limit_cents, updated_at_us)
		VALUES (?, ?, ?)
		ON CONFLICT (owner) DO UPDATE
		SET monthly_limit_cents = excluded.monthly_limit_cents, updated_at_us = excluded.updated_at_us`),
		b.Owner, b.MonthlyLimit.Cents, b.UpdatedAt.UnixMicro(),
	)
	if err != nil {
		return core.Unavailable("put budget", err)
	}
	return nil
}

func (r *SQLRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Unavailable("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return core.Unavailable("commit transaction", err)
	}
	return nil
}

func (r *SQLRepository) classify(op, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseNotFound(id)
	}
	return core.Unavailable(op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e          core.Expense
		cents      int64
		category   string
		occurredAt string
		createdUS  int64
		updatedUS  int64
	)
	if err := row.Scan(&e.ID, &e.Owner, &cents, &category, &e.Note, &occurredAt, &createdUS, &updatedUS); err != nil {
		return core.Expense{}, err
	}
	c, err := core.ParseCategory(category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: stored category %q: %v", e.ID, category, err)
	}
	t, err := time.Parse(time.RFC3339Nano, occurredAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: stored occurred_at %q: %w", e.ID, occurredAt, err)
	}
	e.Amount = core.Cents(cents)
	e.Category = c
	e.OccurredAt = t
	e.CreatedAt = time.UnixMicro(createdUS).UTC()
	e.UpdatedAt = time.UnixMicro(updatedUS).UTC()
	return e, nil
}
