package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"smartexpense/internal/core"
	"smartexpense/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady pings every registered dependency.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.ready))
	for name, p := range s.ready {
		if err := p.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", "check", name, log.FieldError, err)
			checks[name] = "failed"
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	NewJSONResponse().Status(httpStatus).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}

// handleCategories lists the registry in display order.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(categoriesResponse{
		Categories: core.CategoryNames(),
		All:        core.AllCategories,
	}).Write(w)
}

// fail logs err at a level matching its class and writes the mapped response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	args := log.NewFields().
		WithOperation(op).
		WithOwner(ownerFrom(ctx)).
		WithError(err).
		Args()

	switch {
	case errors.Is(err, errMalformedBody):
		logger.DebugContext(ctx, "Malformed request body", args...)
		BadRequestError(err.Error()).Write(w)
		return
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrNotFound):
		logger.DebugContext(ctx, "Request rejected", args...)
	case errors.Is(err, core.ErrUnavailable):
		logger.WarnContext(ctx, "Store unavailable", args...)
	default:
		logger.ErrorContext(ctx, "Request failed", args...)
	}
	ErrorResponse(err).Write(w)
}
