package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartexpense/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/abc").
		JSON(map[string]string{"id": "abc"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/expenses/abc" {
		t.Errorf("Location = %q", got)
	}
	if w.Body.String() != "{\"id\":\"abc\"}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).JSON(map[string]string{"ignored": "x"}).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
		retryAfter string
	}{
		{"validation", core.ErrInvalidAmount, http.StatusUnprocessableEntity, CodeValidation, "amount", ""},
		{"wrapped validation", fmt.Errorf("create: %w", core.ErrNoteTooLong), http.StatusUnprocessableEntity, CodeValidation, "note", ""},
		{"not found", core.ExpenseNotFound("x1"), http.StatusNotFound, CodeNotFound, "", ""},
		{"unavailable", core.Unavailable("list expenses", errors.New("dial tcp: refused")), http.StatusServiceUnavailable, CodeUnavailable, "", "5"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorResponse(tt.err).Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
			if body.Error.Field != tt.wantField {
				t.Errorf("field = %q, want %q", body.Error.Field, tt.wantField)
			}
			if got := w.Header().Get("Retry-After"); got != tt.retryAfter {
				t.Errorf("Retry-After = %q, want %q", got, tt.retryAfter)
			}
		})
	}
}

func TestErrorResponse_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(errors.New("password=hunter2")).Write(w)

	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Errorf("message = %q leaks internal error", body.Error.Message)
	}
}
