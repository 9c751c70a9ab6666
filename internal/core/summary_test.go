package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFoldMonth(t *testing.T) {
	exps := []Expense{
		{Amount: Cents(1250), Category: FoodAndDrink},
		{Amount: Cents(4000), Category: Transport},
		{Amount: Cents(250), Category: FoodAndDrink},
	}
	mt := FoldMonth(2024, 3, exps)
	if mt.Total.Cents != 5500 || mt.ExpenseCount != 3 {
		t.Fatalf("unexpected totals %+v", mt)
	}
	if mt.ByCategory[FoodAndDrink].Cents != 1500 || mt.ByCategory[Transport].Cents != 4000 {
		t.Fatalf("unexpected breakdown %v", mt.ByCategory)
	}
	if _, ok := mt.ByCategory[Housing]; ok {
		t.Fatalf("categories without expenses must be omitted")
	}
	s := mt.Summary("u1", DefaultMonthlyLimit)
	if s.CategoryTotal() != s.Total {
		t.Fatalf("byCategory sum %v != total %v", s.CategoryTotal(), s.Total)
	}
}

func TestSummaryIsIndependentCopy(t *testing.T) {
	mt := FoldMonth(2024, 3, []Expense{{Amount: Cents(100), Category: Health}})
	s := mt.Summary("u1", Cents(1))
	s.ByCategory[Health] = Cents(999)
	if mt.ByCategory[Health].Cents != 100 {
		t.Fatalf("summary shares map with totals")
	}
}

func TestPercentUsed(t *testing.T) {
	cases := []struct {
		total, limit int64
		want         string
	}{
		{5250, 200000, "2.63"},
		{0, 200000, "0"},
		{200000, 200000, "100"},
		{300000, 200000, "100"},
		{100, 0, "0"},
		{100, -5, "0"},
	}
	for _, tc := range cases {
		got := PercentUsed(Cents(tc.total), Cents(tc.limit))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("PercentUsed(%d, %d) = %s, want %s", tc.total, tc.limit, got, tc.want)
		}
	}
}

func TestRemaining(t *testing.T) {
	if got := Remaining(Cents(5250), Cents(200000)); got.Cents != 194750 {
		t.Fatalf("got %v", got)
	}
	if got := Remaining(Cents(300000), Cents(200000)); !got.IsZero() {
		t.Fatalf("overspend should clamp to zero, got %v", got)
	}
}

func TestDaysLeftInMonth(t *testing.T) {
	now := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		year, month, want int
	}{
		{2024, 2, 10}, // 29 - 20 + 1
		{2024, 1, 0},
		{2023, 12, 0},
		{2024, 3, 31},
		{2025, 2, 28},
	}
	for _, tc := range cases {
		if got := DaysLeftInMonth(now, tc.year, tc.month, time.UTC); got != tc.want {
			t.Fatalf("%d-%02d: got %d want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestDailyRemaining(t *testing.T) {
	if got := DailyRemaining(Cents(1000), 3); got.Cents != 333 {
		t.Fatalf("got %d", got.Cents)
	}
	if got := DailyRemaining(Cents(1000), 0); !got.IsZero() {
		t.Fatalf("no days left must yield zero, got %v", got)
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[string]UsageLevel{
		"0":     UsageOK,
		"70":    UsageOK,
		"70.01": UsageWarning,
		"90":    UsageWarning,
		"90.5":  UsageDanger,
		"100":   UsageDanger,
	}
	for in, want := range cases {
		if got := LevelFor(decimal.RequireFromString(in)); got != want {
			t.Fatalf("LevelFor(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestTopCategories(t *testing.T) {
	s := MonthlySummary{ByCategory: map[Category]Money{
		Transport:    Cents(4000),
		FoodAndDrink: Cents(4000),
		Health:       Cents(100),
		Housing:      Cents(9000),
	}}
	top := s.TopCategories(3)
	want := []Category{Housing, FoodAndDrink, Transport}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, c := range want {
		if top[i].Category != c {
			t.Fatalf("position %d: want %s got %s", i, c, top[i].Category)
		}
	}
}

func TestSummaryStatus(t *testing.T) {
	s := MonthlySummary{
		Year: 2024, Month: 3,
		Total:        Cents(150000),
		MonthlyLimit: Cents(200000),
		ByCategory:   map[Category]Money{Housing: Cents(150000)},
	}
	st := s.Status(time.Date(2024, 3, 22, 9, 0, 0, 0, time.UTC), time.UTC, 1)
	if !st.PercentUsed.Equal(decimal.NewFromInt(75)) || st.Level != UsageWarning {
		t.Fatalf("unexpected usage %s %s", st.PercentUsed, st.Level)
	}
	if st.Remaining.Cents != 50000 || st.DaysLeft != 10 || st.DailyRemaining.Cents != 5000 {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(st.TopCategories) != 1 || st.TopCategories[0].Category != Housing {
		t.Fatalf("unexpected top categories %+v", st.TopCategories)
	}
}

func TestTouchedMonths(t *testing.T) {
	a := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	c := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	got := TouchedMonths(time.UTC, a, b, c)
	if len(got) != 2 || got[0] != (YearMonth{2024, 3}) || got[1] != (YearMonth{2024, 4}) {
		t.Fatalf("unexpected months %v", got)
	}
}
