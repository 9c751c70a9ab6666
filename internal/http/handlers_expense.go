package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"smartexpense/internal/log"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	in, err := req.toNewExpense()
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}

	exp, err := s.expenses.Create(r.Context(), ownerFrom(r.Context()), in)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/"+exp.ID).
		JSON(exp).
		Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	exp, err := s.expenses.Get(r.Context(), ownerFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().JSON(exp).Write(w)
}

// handleUpdateExpense applies a partial update; absent members are left
// unchanged. PUT and PATCH behave the same.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}

	exp, err := s.expenses.Update(r.Context(), ownerFrom(r.Context()), mux.Vars(r)["id"], patch)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().JSON(exp).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), ownerFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}

	expenses, err := s.expenses.List(r.Context(), ownerFrom(r.Context()), filter)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().JSON(newExpenseListResponse(expenses)).Write(w)
}
