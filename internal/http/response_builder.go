// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for JSON responses and maps
// ledger errors onto status codes.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"plenio/internal/core"
	"plenio/internal/log"
)

const msgInternal = "Internal server error"

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *ResponseBuilder {
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

// Body sets the value encoded as the response body.
func (b *ResponseBuilder) Body(v any) *ResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. Encoding failures become a bare 500.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	payload, err := json.Marshal(b.body)
	if err != nil {
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

type errorBody struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

// ErrorResponse creates a {"detail": ...} response.
func ErrorResponse(statusCode int, detail string) *ResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Detail: detail})
}

// MessageResponse creates a 200 {"message": ...} response.
func MessageResponse(message string) *ResponseBuilder {
	return NewJSONResponse().Body(messageBody{Message: message})
}

// writeJSON sends v with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	NewJSONResponse().Body(v).Write(w)
}

// classify maps an error onto a status code and the detail shown to the
// client. Unexpected errors never leak their text.
func classify(err error) (int, string) {
	var verr *core.ValidationError
	var rerr *requestError
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, core.ErrUnauthenticated.Error()
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, core.ErrForbidden.Error()
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Error()
	case errors.As(err, &rerr):
		return rerr.status, rerr.msg
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeError logs and sends err. Server errors are logged at error level
// with the cause; client errors at debug.
func writeError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	logger := log.FromContext(ctx).WithComponent(log.ComponentHTTP)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
	} else {
		logger.DebugContext(ctx, "Request rejected",
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, status,
			log.FieldError, err)
	}
	resp := ErrorResponse(status, detail)
	if status == http.StatusUnauthorized {
		resp.Header("WWW-Authenticate", "Bearer")
	}
	resp.Write(w)
}
