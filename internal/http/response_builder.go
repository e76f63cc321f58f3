// Package http provides HTTP server and handler implementations.
//
// This file implements the builder used for every JSON response, plus the
// mapping from service errors to status codes.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"moneytracker/internal/core"
	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
)

var errInvalidID = errors.New("invalid id")

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode  int
	headers     map[string]string
	payload     interface{}
	raw         []byte
	contentType string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v interface{}) *ResponseBuilder {
	b.payload = v
	b.raw = nil
	return b
}

// Body sets a pre-rendered body with its content type.
func (b *ResponseBuilder) Body(content []byte, contentType string) *ResponseBuilder {
	b.raw = content
	b.contentType = contentType
	b.payload = nil
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.raw != nil {
		w.Header().Set("Content-Type", b.contentType)
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(b.raw)
		return
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	writeJSON(w, b.statusCode, b.payload)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(ErrorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func ServiceUnavailableError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message)
}

// validationErrors are the failures caused by what the user typed.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidPeriod,
	core.ErrEmptyCategory,
	core.ErrEmptySource,
	core.ErrEmptyName,
	core.ErrInvalidLimit,
	core.ErrNoteTooLong,
}

// ErrorFor maps a service error to a response and logs server-side failures.
func ErrorFor(ctx context.Context, err error) *ResponseBuilder {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return UnprocessableEntityError(err.Error())
		}
	}
	logger := log.FromContext(ctx)
	switch {
	case errors.Is(err, errInvalidID):
		return BadRequestError(err.Error())
	case errors.Is(err, ledger.ErrGoalNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, ledger.ErrStorageUnavailable):
		logger.ErrorContext(ctx, "Storage unavailable", log.FieldError, err, "error_type", log.ErrorTypeStorage)
		return ServiceUnavailableError("Storage is unavailable, please try again later")
	case errors.Is(err, ledger.ErrCorruptCollection):
		logger.ErrorContext(ctx, "Refusing to overwrite unreadable data", log.FieldError, err, "error_type", log.ErrorTypeStorage)
		return ErrorResponse(http.StatusConflict, "Stored data is unreadable and was left unchanged")
	}
	logger.ErrorContext(ctx, "Request failed", log.FieldError, err, "error_type", log.ErrorTypeInternal)
	return InternalServerError("Internal server error")
}
