package core

import "sort"

// CategoryAmount is an amount aggregated under one category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// MonthTotals is the fold of one owner's expenses over a calendar month.
type MonthTotals struct {
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	Total        Money              `json:"total"`
	ByCategory   map[Category]Money `json:"byCategory"`
	ExpenseCount int                `json:"expenseCount"`
}

// MonthlySummary is MonthTotals plus the owner's current budget limit.
type MonthlySummary struct {
	Owner        string             `json:"owner"`
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	Total        Money              `json:"total"`
	ByCategory   map[Category]Money `json:"byCategory"`
	ExpenseCount int                `json:"expenseCount"`
	MonthlyLimit Money              `json:"monthlyLimit"`
}

// FoldMonth sums expenses into MonthTotals. Categories with no expense are
// absent from ByCategory.
func FoldMonth(year, month int, expenses []Expense) MonthTotals {
	mt := MonthTotals{
		Year:       year,
		Month:      month,
		ByCategory: make(map[Category]Money),
	}
	for _, e := range expenses {
		mt.Total = mt.Total.Add(e.Amount)
		mt.ByCategory[e.Category] = mt.ByCategory[e.Category].Add(e.Amount)
		mt.ExpenseCount++
	}
	return mt
}

// Summary attaches owner and limit to the totals.
func (mt MonthTotals) Summary(owner string, limit Money) MonthlySummary {
	byCat := make(map[Category]Money, len(mt.ByCategory))
	for c, m := range mt.ByCategory {
		byCat[c] = m
	}
	return MonthlySummary{
		Owner:        owner,
		Year:         mt.Year,
		Month:        mt.Month,
		Total:        mt.Total,
		ByCategory:   byCat,
		ExpenseCount: mt.ExpenseCount,
		MonthlyLimit: limit,
	}
}

// CategoryTotal returns the sum of ByCategory. It always equals Total for a
// summary produced by FoldMonth.
func (s MonthlySummary) CategoryTotal() Money {
	var sum Money
	for _, m := range s.ByCategory {
		sum = sum.Add(m)
	}
	return sum
}

// Breakdown returns ByCategory sorted by amount descending, ties in
// registry order.
func (s MonthlySummary) Breakdown() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s.ByCategory))
	for c, m := range s.ByCategory {
		out = append(out, CategoryAmount{Category: c, Amount: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}
