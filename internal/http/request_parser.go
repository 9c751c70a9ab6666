// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for decoding request bodies and query
// strings into domain values. Every parse failure is a core.ValidationError
// naming the offending field, except bodies that are not JSON at all.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartexpense/internal/core"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// errMalformedBody marks bodies that are not a single JSON object.
var errMalformedBody = errors.New("request body must be a JSON object")

type createExpenseRequest struct {
	Amount     json.RawMessage `json:"amount"`
	Category   *string         `json:"category"`
	Note       *string         `json:"note"`
	OccurredAt *string         `json:"occurredAt"`
}

type updateExpenseRequest createExpenseRequest

type setBudgetRequest struct {
	MonthlyLimit json.RawMessage `json:"monthlyLimit"`
}

// decodeJSON reads one JSON object from r into v. Unknown members are
// rejected so typos do not silently become no-op patches.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: larger than %d bytes", errMalformedBody, maxBodyBytes)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return errMalformedBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return core.NewValidationError(typeErr.Field, "has the wrong type")
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

// parseMoneyField accepts a quoted decimal string or a bare JSON number.
// Rounding is half-up to cents; positivity is left to the caller.
func parseMoneyField(raw json.RawMessage, field string) (core.Money, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return core.Money{}, core.NewValidationError(field, "is required")
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return core.Money{}, core.NewValidationError(field, "must be a decimal value")
		}
	} else {
		s = string(raw)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return core.Money{}, core.NewValidationError(field, "must be a decimal value")
	}
	m, err := core.MoneyFromDecimal(d)
	if err != nil {
		return core.Money{}, core.NewValidationError(field, "is out of range")
	}
	return m, nil
}

func (req createExpenseRequest) toNewExpense() (core.NewExpense, error) {
	amount, err := parseMoneyField(req.Amount, "amount")
	if err != nil {
		return core.NewExpense{}, err
	}
	if req.Category == nil {
		return core.NewExpense{}, core.NewValidationError("category", "is required")
	}
	category, err := core.ParseCategory(*req.Category)
	if err != nil {
		return core.NewExpense{}, err
	}
	if req.OccurredAt == nil {
		return core.NewExpense{}, core.NewValidationError("occurredAt", "is required")
	}
	occurredAt, err := core.ParseTimestamp(*req.OccurredAt)
	if err != nil {
		return core.NewExpense{}, err
	}
	note := ""
	if req.Note != nil {
		note = *req.Note
	}
	return core.NewExpense{
		Amount:     amount,
		Category:   category,
		Note:       note,
		OccurredAt: occurredAt,
	}, nil
}

func (req updateExpenseRequest) toPatch() (core.ExpensePatch, error) {
	var patch core.ExpensePatch
	if len(req.Amount) > 0 {
		amount, err := parseMoneyField(req.Amount, "amount")
		if err != nil {
			return patch, err
		}
		patch.Amount = &amount
	}
	if req.Category != nil {
		category, err := core.ParseCategory(*req.Category)
		if err != nil {
			return patch, err
		}
		patch.Category = &category
	}
	if req.Note != nil {
		note := *req.Note
		patch.Note = &note
	}
	if req.OccurredAt != nil {
		occurredAt, err := core.ParseTimestamp(*req.OccurredAt)
		if err != nil {
			return patch, err
		}
		patch.OccurredAt = &occurredAt
	}
	return patch, nil
}

// ParseExpenseFilter reads category, month, year and search from a list
// query.
func ParseExpenseFilter(query url.Values) (core.ExpenseFilter, error) {
	var f core.ExpenseFilter

	category, err := core.ParseCategoryFilter(query.Get("category"))
	if err != nil {
		return f, err
	}
	f.Category = category

	if f.Year, f.Month, _, err = parsePeriod(query); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(query.Get("search"))
	return f, nil
}

// ParseMonthParams reads year and month for the summary endpoint. When both
// are absent the current month in loc is used; when only one is present the
// request is rejected.
func ParseMonthParams(query url.Values, now time.Time, loc *time.Location) (year, month int, err error) {
	year, month, present, err := parsePeriod(query)
	if err != nil {
		return 0, 0, err
	}
	if !present {
		current := core.YearMonthOf(now, loc)
		return current.Year, current.Month, nil
	}
	return year, month, nil
}

// parsePeriod reads the month/year pair. Presence is tracked apart from the
// value, so an explicit 0 is range-checked rather than read as absent.
func parsePeriod(query url.Values) (year, month int, present bool, err error) {
	month, hasMonth, err := parseIntParam(query, "month")
	if err != nil {
		return 0, 0, false, err
	}
	year, hasYear, err := parseIntParam(query, "year")
	if err != nil {
		return 0, 0, false, err
	}
	switch {
	case !hasMonth && !hasYear:
		return 0, 0, false, nil
	case hasMonth != hasYear:
		return 0, 0, false, core.ErrPartialPeriod
	}
	if err := core.ValidateMonth(year, month); err != nil {
		return 0, 0, false, err
	}
	return year, month, true, nil
}

func parseIntParam(query url.Values, key string) (n int, present bool, err error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(v)
	if err != nil {
		return 0, true, core.NewValidationError(key, "must be an integer")
	}
	return n, true, nil
}
