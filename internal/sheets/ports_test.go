package sheets

import (
	"testing"
	"time"

	"smartexpense/internal/core"
)

func TestEntryFromEvent(t *testing.T) {
	occurred := time.Date(2024, 3, 2, 8, 0, 0, 0, time.FixedZone("CET", 3600))
	e := core.Expense{
		ID:         "e1",
		Owner:      "u1",
		Amount:     core.Cents(1250),
		Category:   core.FoodAndDrink,
		Note:       "coffee",
		OccurredAt: occurred,
	}
	ev := core.ExpenseEvent{
		Type:      core.EventExpenseCreated,
		ExpenseID: "e1",
		Owner:     "u1",
		Expense:   &e,
		At:        time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	row := EntryFromEvent(ev).Row()
	want := []any{"2024-03-02T09:00:00Z", "expense.created", "e1", "u1", "2024-03-02T08:00:00+01:00", "Food & Drink", "12.50", "coffee"}
	if len(row) != len(want) || len(row) != len(JournalHeader) {
		t.Fatalf("row has %d cells, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d: got %v want %v", i, row[i], want[i])
		}
	}
}

func TestEntryFromDeleteEvent(t *testing.T) {
	entry := EntryFromEvent(core.ExpenseEvent{Type: core.EventExpenseDeleted, ExpenseID: "e1", Owner: "u1"})
	if entry.Amount != "" || entry.Category != "" || entry.OccurredAt != "" {
		t.Fatalf("delete entries carry no payload, got %+v", entry)
	}
}
