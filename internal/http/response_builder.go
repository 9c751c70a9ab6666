// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps domain errors onto status codes and error bodies.

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"smartexpense/internal/core"
)

// Error codes carried in the "code" member of error bodies.
const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal_error"
	CodeBadRequest       = "bad_request"
	CodeUnauthenticated  = "unauthenticated"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeRateLimited      = "rate_limited"
)

// unavailableRetryAfter is the Retry-After hint sent with 503 responses.
const unavailableRetryAfter = 5

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *JSONResponseBuilder) JSON(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// StatusCode returns the status the builder will write.
func (b *JSONResponseBuilder) StatusCode() int {
	return b.statusCode
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

func errorResponse(status int, code, message, field string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(status).
		JSON(ErrorBody{Error: ErrorDetail{Code: code, Message: message, Field: field}})
}

// ErrorResponse maps a domain error onto its HTTP representation. Messages of
// unclassified errors are not exposed.
func ErrorResponse(err error) *JSONResponseBuilder {
	var ve *core.ValidationError
	var nf *core.NotFoundError
	switch {
	case errors.As(err, &ve):
		return errorResponse(http.StatusUnprocessableEntity, CodeValidation, ve.Error(), ve.Field)
	case errors.Is(err, core.ErrValidation):
		return errorResponse(http.StatusUnprocessableEntity, CodeValidation, err.Error(), "")
	case errors.As(err, &nf):
		return errorResponse(http.StatusNotFound, CodeNotFound, nf.Error(), "")
	case errors.Is(err, core.ErrNotFound):
		return errorResponse(http.StatusNotFound, CodeNotFound, "not found", "")
	case errors.Is(err, core.ErrUnavailable):
		return errorResponse(http.StatusServiceUnavailable, CodeUnavailable, "service temporarily unavailable", "").
			Header("Retry-After", strconv.Itoa(unavailableRetryAfter))
	default:
		return InternalServerError()
	}
}

// BadRequestError creates a 400 response for bodies that cannot be decoded.
func BadRequestError(message string) *JSONResponseBuilder {
	return errorResponse(http.StatusBadRequest, CodeBadRequest, message, "")
}

// UnauthenticatedError creates a 401 response for requests with no owner.
func UnauthenticatedError(message string) *JSONResponseBuilder {
	return errorResponse(http.StatusUnauthorized, CodeUnauthenticated, message, "")
}

// NotFoundError creates a 404 response for unknown routes.
func NotFoundError(message string) *JSONResponseBuilder {
	return errorResponse(http.StatusNotFound, CodeNotFound, message, "")
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError() *JSONResponseBuilder {
	return errorResponse(http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", "")
}

// TooManyRequestsError creates the 429 body sent by the rate limiter.
func TooManyRequestsError() *JSONResponseBuilder {
	return errorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, retry later", "")
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError() *JSONResponseBuilder {
	return errorResponse(http.StatusInternalServerError, CodeInternal, "internal server error", "")
}
