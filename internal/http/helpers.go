package http

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"smartexpense/internal/core"
)

// HeaderOwner carries the authenticated owner id, set by the fronting
// gateway.
const HeaderOwner = "X-Owner-ID"

const maxOwnerLength = 128

type ownerKey struct{}

// requireOwner rejects requests without a usable owner header and stores the
// owner in the request context.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(HeaderOwner))
		if owner == "" {
			UnauthenticatedError("missing " + HeaderOwner + " header").Write(w)
			return
		}
		if utf8.RuneCountInString(owner) > maxOwnerLength || owner != sanitizeInput(owner) {
			UnauthenticatedError("malformed " + HeaderOwner + " header").Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey{}, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerFrom returns the owner stored by requireOwner.
func ownerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

// sanitizeInput removes control characters other than tab, newline and
// carriage return, and trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		if r == 127 {
			return -1
		}
		return r
	}, s)
}

type expenseListResponse struct {
	Expenses []core.Expense `json:"expenses"`
	Count    int            `json:"count"`
	Total    core.Money     `json:"total"`
}

func newExpenseListResponse(expenses []core.Expense) expenseListResponse {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return expenseListResponse{Expenses: expenses, Count: len(expenses), Total: total}
}

type summaryResponse struct {
	core.MonthlySummary
	Status core.BudgetStatus `json:"status"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	All        string   `json:"all"`
}
