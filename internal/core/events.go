package core

import "time"

// EventType names a ledger change.
type EventType string

const (
	EventExpenseCreated EventType = "expense.created"
	EventExpenseUpdated EventType = "expense.updated"
	EventExpenseDeleted EventType = "expense.deleted"
)

// ExpenseEvent describes a committed ledger change. Expense is the record
// after the change and is nil for deletions. Months lists every calendar
// month whose totals the change affected.
type ExpenseEvent struct {
	Type      EventType   `json:"type"`
	ExpenseID string      `json:"expense_id"`
	Owner     string      `json:"owner"`
	Expense   *Expense    `json:"expense,omitempty"`
	Months    []YearMonth `json:"months"`
	At        time.Time   `json:"at"`
}

// TouchedMonths returns the distinct months of the given timestamps in loc.
func TouchedMonths(loc *time.Location, ts ...time.Time) []YearMonth {
	out := make([]YearMonth, 0, len(ts))
	for _, t := range ts {
		ym := YearMonthOf(t, loc)
		dup := false
		for _, seen := range out {
			if seen == ym {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, ym)
		}
	}
	return out
}
