package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxNoteLength bounds Expense.Note, counted in characters.
	MaxNoteLength = 280

	MinYear = 1000
	MaxYear = 9999
)

// DefaultMonthlyLimit is the limit reported for an owner who never set one.
var DefaultMonthlyLimit = Money{Cents: 200000}

type (
	// Expense is a single spending event. ID and Owner never change after
	// creation; CreatedAt and UpdatedAt are assigned by the ledger.
	Expense struct {
		ID         string    `json:"id"`
		Owner      string    `json:"owner"`
		Amount     Money     `json:"amount"`
		Category   Category  `json:"category"`
		Note       string    `json:"note"`
		OccurredAt time.Time `json:"occurredAt"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	// NewExpense carries the caller-supplied fields of a create.
	NewExpense struct {
		Amount     Money
		Category   Category
		Note       string
		OccurredAt time.Time
	}

	// ExpensePatch lists the mutable fields of an update; nil fields are left
	// untouched.
	ExpensePatch struct {
		Amount     *Money
		Category   *Category
		Note       *string
		OccurredAt *time.Time
	}

	// ExpenseFilter narrows a list. Month and Year must be set together.
	ExpenseFilter struct {
		Category *Category
		Month    int
		Year     int
		Search   string
	}

	// Budget is the owner's monthly spending ceiling.
	Budget struct {
		Owner        string    `json:"owner"`
		MonthlyLimit Money     `json:"monthlyLimit"`
		UpdatedAt    time.Time `json:"updatedAt"`
		// IsDefault is true when no limit was ever stored for Owner.
		IsDefault bool `json:"isDefault"`
	}
)

// Validate checks the invariants shared by create and update.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Owner) == "" {
		return ErrMissingOwner
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return NewValidationError("category", "unregistered category")
	}
	if utf8.RuneCountInString(e.Note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	if !utf8.ValidString(e.Note) {
		return NewValidationError("note", "must be valid UTF-8")
	}
	if strings.ContainsFunc(e.Note, isControl) {
		return ErrNoteControlChars
	}
	if y := e.OccurredAt.Year(); e.OccurredAt.IsZero() || y < 1 || y > MaxYear {
		return ErrInvalidOccurredAt
	}
	return nil
}

// Apply returns a copy of e with the supplied patch fields replaced.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
	if p.OccurredAt != nil {
		e.OccurredAt = *p.OccurredAt
	}
	return e
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Amount == nil && p.Category == nil && p.Note == nil && p.OccurredAt == nil
}

// HasPeriod reports whether the filter restricts to a calendar month.
func (f ExpenseFilter) HasPeriod() bool {
	return f.Month != 0 || f.Year != 0
}

// Validate enforces the both-or-neither rule for month/year and their ranges.
func (f ExpenseFilter) Validate() error {
	if f.Category != nil && !f.Category.Valid() {
		return NewValidationError("category", "unregistered category")
	}
	if !f.HasPeriod() {
		return nil
	}
	if f.Month == 0 || f.Year == 0 {
		return ErrPartialPeriod
	}
	return ValidateMonth(f.Year, f.Month)
}

// Matches applies the filter to a single expense using loc for the month window.
func (f ExpenseFilter) Matches(e Expense, loc *time.Location) bool {
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.HasPeriod() {
		start, end := MonthWindow(f.Year, f.Month, loc)
		if e.OccurredAt.Before(start) || !e.OccurredAt.Before(end) {
			return false
		}
	}
	return MatchesSearch(e.Note, f.Search)
}

// MatchesSearch is a case-insensitive substring test; an empty query matches.
func MatchesSearch(note, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(note), strings.ToLower(query))
}

// ValidateMonth checks month in [1,12] and a four-digit year.
func ValidateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	if year < MinYear || year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// MonthWindow returns [first instant of the month, first instant of the
// next month) in loc. A nil loc means UTC.
func MonthWindow(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// YearMonth is a calendar month key.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// YearMonthOf returns the calendar month t falls in, evaluated in loc.
func YearMonthOf(t time.Time, loc *time.Location) YearMonth {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return YearMonth{Year: lt.Year(), Month: int(lt.Month())}
}

// ParseTimestamp parses an absolute timestamp (RFC 3339 with offset).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidOccurredAt
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, ErrInvalidOccurredAt
	}
	return t, nil
}

// isControl reports control characters a note may not carry. Tab, newline
// and carriage return are allowed.
func isControl(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return r < 0x20 || r == 0x7f
}
