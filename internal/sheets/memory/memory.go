package memory

import (
	"context"
	"fmt"
	"sync"

	"smartexpense/internal/sheets"
)

// Journal keeps journal rows in memory. It backs local runs and tests.
type Journal struct {
	mu      sync.Mutex
	entries []sheets.JournalEntry
}

var _ sheets.JournalWriter = (*Journal)(nil)

func New() *Journal {
	return &Journal{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (j *Journal) AppendEntry(_ context.Context, e sheets.JournalEntry) (string, error) {
	if e.ExpenseID == "" {
		return "", fmt.Errorf("journal entry without expense id")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return fmt.Sprintf("mem:%d", len(j.entries)), nil
}

// Entries returns a copy of the rows appended so far.
func (j *Journal) Entries() []sheets.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]sheets.JournalEntry(nil), j.entries...)
}
