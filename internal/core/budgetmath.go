package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageLevel buckets budget utilisation for display.
type UsageLevel string

const (
	UsageOK      UsageLevel = "ok"
	UsageWarning UsageLevel = "warning"
	UsageDanger  UsageLevel = "danger"
)

var (
	warningThreshold = decimal.NewFromInt(70)
	dangerThreshold  = decimal.NewFromInt(90)
)

// BudgetStatus is the presentation math derived from a MonthlySummary.
type BudgetStatus struct {
	PercentUsed    decimal.Decimal  `json:"percentUsed"`
	Remaining      Money            `json:"remaining"`
	DaysLeft       int              `json:"daysLeft"`
	DailyRemaining Money            `json:"dailyRemaining"`
	Level          UsageLevel       `json:"level"`
	TopCategories  []CategoryAmount `json:"topCategories"`
}

// PercentUsed returns min(total/limit, 1) * 100 rounded to two places. A
// zero or negative limit yields zero.
func PercentUsed(total, limit Money) decimal.Decimal {
	if limit.Cents <= 0 || total.Cents <= 0 {
		return decimal.Zero
	}
	if total.Cents >= limit.Cents {
		return hundred
	}
	return total.Decimal().Div(limit.Decimal()).Mul(hundred).Round(2)
}

// Remaining returns max(limit - total, 0).
func Remaining(total, limit Money) Money {
	r := limit.Sub(total)
	if r.Cents < 0 {
		return Money{}
	}
	return r
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	start, end := MonthWindow(year, month, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// DaysLeftInMonth counts the days of (year, month) from now's day onwards,
// today included, evaluated in loc. Past months have none left; future
// months have all of them.
func DaysLeftInMonth(now time.Time, year, month int, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	cur := YearMonthOf(now, loc)
	switch {
	case year < cur.Year || (year == cur.Year && month < cur.Month):
		return 0
	case year > cur.Year || (year == cur.Year && month > cur.Month):
		return DaysInMonth(year, month)
	}
	return DaysInMonth(year, month) - now.In(loc).Day() + 1
}

// DailyRemaining spreads remaining evenly over daysLeft, rounded half-up to
// cents. No days left yields zero.
func DailyRemaining(remaining Money, daysLeft int) Money {
	if daysLeft <= 0 || remaining.Cents <= 0 {
		return Money{}
	}
	per := remaining.Decimal().Div(decimal.NewFromInt(int64(daysLeft)))
	m, err := MoneyFromDecimal(per)
	if err != nil {
		return Money{}
	}
	return m
}

// LevelFor maps a percentage to a UsageLevel: above 90 is danger, above 70
// is warning.
func LevelFor(pct decimal.Decimal) UsageLevel {
	switch {
	case pct.GreaterThan(dangerThreshold):
		return UsageDanger
	case pct.GreaterThan(warningThreshold):
		return UsageWarning
	}
	return UsageOK
}

// TopCategories returns at most n entries of the breakdown. n <= 0 returns all.
func (s MonthlySummary) TopCategories(n int) []CategoryAmount {
	b := s.Breakdown()
	if n > 0 && len(b) > n {
		b = b[:n]
	}
	return b
}

// Status computes the BudgetStatus of s as seen at now.
func (s MonthlySummary) Status(now time.Time, loc *time.Location, top int) BudgetStatus {
	pct := PercentUsed(s.Total, s.MonthlyLimit)
	rem := Remaining(s.Total, s.MonthlyLimit)
	days := DaysLeftInMonth(now, s.Year, s.Month, loc)
	return BudgetStatus{
		PercentUsed:    pct,
		Remaining:      rem,
		DaysLeft:       days,
		DailyRemaining: DailyRemaining(rem, days),
		Level:          LevelFor(pct),
		TopCategories:  s.TopCategories(top),
	}
}
