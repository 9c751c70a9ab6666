package http

import (
	"net/http"

	"smartexpense/internal/log"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.budgets.Get(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().JSON(b).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpSetBudget, err)
		return
	}
	limit, err := parseMoneyField(req.MonthlyLimit, "monthlyLimit")
	if err != nil {
		s.fail(w, r, log.OpSetBudget, err)
		return
	}

	b, err := s.budgets.Set(r.Context(), ownerFrom(r.Context()), limit)
	if err != nil {
		s.fail(w, r, log.OpSetBudget, err)
		return
	}
	NewJSONResponse().JSON(b).Write(w)
}

// handleSummary returns the monthly summary plus the budget status block.
// Without month and year the current month is summarized.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year, month, err := ParseMonthParams(r.URL.Query(), now, s.loc)
	if err != nil {
		s.fail(w, r, log.OpSummarize, err)
		return
	}

	summary, err := s.summary.Summarize(r.Context(), ownerFrom(r.Context()), month, year)
	if err != nil {
		s.fail(w, r, log.OpSummarize, err)
		return
	}
	NewJSONResponse().JSON(summaryResponse{
		MonthlySummary: summary,
		Status:         summary.Status(now, s.loc, s.top),
	}).Write(w)
}
