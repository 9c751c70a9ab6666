package memory

import (
	"context"
	"testing"
	"time"

	"smartexpense/internal/core"
	"smartexpense/internal/sheets"
)

func TestJournalAppendAndEntries(t *testing.T) {
	j := New()
	ev := core.ExpenseEvent{
		Type:      core.EventExpenseDeleted,
		ExpenseID: "e1",
		Owner:     "u1",
		At:        time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	ref, err := j.AppendEntry(context.Background(), sheets.EntryFromEvent(ev))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	entries := j.Entries()
	if len(entries) != 1 || entries[0].ExpenseID != "e1" || entries[0].Amount != "" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	entries[0].ExpenseID = "changed"
	if j.Entries()[0].ExpenseID != "e1" {
		t.Fatalf("Entries must return a copy")
	}

	if _, err := j.AppendEntry(context.Background(), sheets.JournalEntry{}); err == nil {
		t.Fatalf("expected error for entry without id")
	}
}
