// Package sheets defines the outbound port used to mirror ledger changes
// into an append-only journal.
package sheets

import (
	"context"
	"time"

	"smartexpense/internal/core"
)

// JournalEntry is one row of the journal.
type JournalEntry struct {
	RecordedAt time.Time
	Event      core.EventType
	ExpenseID  string
	Owner      string
	OccurredAt string
	Category   string
	Amount     string
	Note       string
}

// JournalHeader names the journal columns in Row order.
var JournalHeader = []any{"Recorded At", "Event", "Expense ID", "Owner", "Occurred At", "Category", "Amount", "Note"}

// Ports for outbound adapters.
type (
	JournalWriter interface {
		AppendEntry(ctx context.Context, e JournalEntry) (rowRef string, err error)
	}
)

// EntryFromEvent flattens ev into a journal row. Deletions only carry the
// expense id and owner.
func EntryFromEvent(ev core.ExpenseEvent) JournalEntry {
	entry := JournalEntry{
		RecordedAt: ev.At.UTC(),
		Event:      ev.Type,
		ExpenseID:  ev.ExpenseID,
		Owner:      ev.Owner,
	}
	if e := ev.Expense; e != nil {
		entry.OccurredAt = e.OccurredAt.Format(time.RFC3339)
		entry.Category = e.Category.String()
		entry.Amount = e.Amount.String()
		entry.Note = e.Note
	}
	return entry
}

// Row renders the entry as sheet cell values.
func (e JournalEntry) Row() []any {
	return []any{
		e.RecordedAt.Format(time.RFC3339),
		string(e.Event),
		e.ExpenseID,
		e.Owner,
		e.OccurredAt,
		e.Category,
		e.Amount,
		e.Note,
	}
}
