package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validExpense() Expense {
	return Expense{
		Owner:      "u1",
		Amount:     Cents(1250),
		Category:   FoodAndDrink,
		Note:       "coffee",
		OccurredAt: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestExpenseValidate(t *testing.T) {
	if err := validExpense().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mut   func(*Expense)
		field string
	}{
		{"zero amount", func(e *Expense) { e.Amount = Cents(0) }, "amount"},
		{"negative amount", func(e *Expense) { e.Amount = Cents(-1) }, "amount"},
		{"unregistered category", func(e *Expense) { e.Category = 0 }, "category"},
		{"long note", func(e *Expense) { e.Note = strings.Repeat("x", MaxNoteLength+1) }, "note"},
		{"control character in note", func(e *Expense) { e.Note = "bell\x07" }, "note"},
		{"nul in note", func(e *Expense) { e.Note = "a\x00b" }, "note"},
		{"zero time", func(e *Expense) { e.OccurredAt = time.Time{} }, "occurredAt"},
		{"missing owner", func(e *Expense) { e.Owner = " " }, "owner"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validExpense()
			tc.mut(&e)
			err := e.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
}

func TestNoteKeepsWhitespace(t *testing.T) {
	e := validExpense()
	e.Note = "  line one\n\tline two\r\n  "
	if err := e.Validate(); err != nil {
		t.Fatalf("whitespace in note should be valid, got %v", err)
	}
}

func TestNoteLengthCountsCharacters(t *testing.T) {
	e := validExpense()
	e.Note = strings.Repeat("é", MaxNoteLength)
	if err := e.Validate(); err != nil {
		t.Fatalf("multi-byte note at the limit should be valid, got %v", err)
	}
}

func TestExpensePatchApply(t *testing.T) {
	e := validExpense()
	amt := Cents(999)
	note := ""
	got := ExpensePatch{Amount: &amt, Note: &note}.Apply(e)
	if got.Amount != amt || got.Note != "" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Category != e.Category || !got.OccurredAt.Equal(e.OccurredAt) {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !(ExpensePatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
}

func TestExpenseFilterValidate(t *testing.T) {
	cases := []struct {
		f  ExpenseFilter
		ok bool
	}{
		{ExpenseFilter{}, true},
		{ExpenseFilter{Month: 3, Year: 2024}, true},
		{ExpenseFilter{Month: 3}, false},
		{ExpenseFilter{Year: 2024}, false},
		{ExpenseFilter{Month: 13, Year: 2024}, false},
		{ExpenseFilter{Month: 1, Year: 24}, false},
		{ExpenseFilter{Search: "x"}, true},
	}
	for i, tc := range cases {
		err := tc.f.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestExpenseFilterMatches(t *testing.T) {
	food := FoodAndDrink
	transport := Transport
	e := validExpense()
	e.Note = "Morning Coffee"

	cases := []struct {
		name string
		f    ExpenseFilter
		want bool
	}{
		{"empty", ExpenseFilter{}, true},
		{"same category", ExpenseFilter{Category: &food}, true},
		{"other category", ExpenseFilter{Category: &transport}, false},
		{"in month", ExpenseFilter{Month: 3, Year: 2024}, true},
		{"other month", ExpenseFilter{Month: 2, Year: 2024}, false},
		{"search case-insensitive", ExpenseFilter{Search: "coffee"}, true},
		{"search miss", ExpenseFilter{Search: "tea"}, false},
	}
	for _, tc := range cases {
		if got := tc.f.Matches(e, time.UTC); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestMonthWindowBoundaries(t *testing.T) {
	start, end := MonthWindow(2024, 12, time.UTC)
	if !start.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bad start %v", start)
	}
	if !end.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bad end %v", end)
	}

	f := ExpenseFilter{Month: 3, Year: 2024}
	e := validExpense()
	e.OccurredAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !f.Matches(e, time.UTC) {
		t.Fatalf("first instant of month must be included")
	}
	e.OccurredAt = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if f.Matches(e, time.UTC) {
		t.Fatalf("first instant of next month must be excluded")
	}
}

func TestMonthWindowUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	e := validExpense()
	// 22:30Z on Feb 29 is already March 1st at UTC+2.
	e.OccurredAt = time.Date(2024, 2, 29, 22, 30, 0, 0, time.UTC)
	if !(ExpenseFilter{Month: 3, Year: 2024}).Matches(e, loc) {
		t.Fatalf("expected expense to fall in March in %s", loc)
	}
	if (ExpenseFilter{Month: 3, Year: 2024}).Matches(e, time.UTC) {
		t.Fatalf("expected expense to fall in February in UTC")
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2024-03-02T08:00:00+01:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected instant %v", got)
	}
	for _, bad := range []string{"", "2024-03-02", "yesterday", "2024-03-02T08:00:00"} {
		if _, err := ParseTimestamp(bad); !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", bad, err)
		}
	}
}
