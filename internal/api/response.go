// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/previouslyon/internal/logging"
	"github.com/tomtom215/previouslyon/internal/validation"
)

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError is a machine-readable code plus a human-readable message.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta carries tracing and timing information.
type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Count      *int      `json:"count,omitempty"`
}

// Error codes. Each maps to one HTTP status in codeStatus.
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed    = validation.CodeValidationFailed
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeExternalServiceFail = "EXTERNAL_SERVICE_FAILED"
)

var codeStatus = map[string]int{
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeValidationFailed:    http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeMethodNotAllowed:    http.StatusMethodNotAllowed,
	ErrCodeTooManyRequests:     http.StatusTooManyRequests,
	ErrCodeDatabaseError:       http.StatusInternalServerError,
	ErrCodeExternalServiceFail: http.StatusBadGateway,
	ErrCodeServiceUnavailable:  http.StatusServiceUnavailable,
}

// StatusForCode returns the HTTP status for an error code; unknown codes
// are 500.
func StatusForCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ResponseWriter writes enveloped responses for one request.
type ResponseWriter struct {
	w       http.ResponseWriter
	r       *http.Request
	started time.Time
}

// NewResponseWriter starts the duration clock for meta.duration_ms.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, started: time.Now()}
}

func (rw *ResponseWriter) meta() *APIMeta {
	return &APIMeta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now(),
		DurationMs: time.Since(rw.started).Milliseconds(),
	}
}

// Success writes data with status 200.
func (rw *ResponseWriter) Success(data any) {
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: rw.meta()})
}

// SuccessList is Success plus meta.count.
func (rw *ResponseWriter) SuccessList(data any, count int) {
	meta := rw.meta()
	meta.Count = &count
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

// NoContent writes a bare 204.
func (rw *ResponseWriter) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

// Fail writes an error envelope; the status comes from code.
func (rw *ResponseWriter) Fail(code, message string, details any) {
	meta := rw.meta()
	rw.writeJSON(StatusForCode(code), APIResponse{
		Error: &APIError{Code: code, Message: message, Details: details, RequestID: meta.RequestID},
		Meta:  meta,
	})
}

func (rw *ResponseWriter) BadRequest(message string)   { rw.Fail(ErrCodeBadRequest, message, nil) }
func (rw *ResponseWriter) Unauthorized(message string) { rw.Fail(ErrCodeUnauthorized, message, nil) }
func (rw *ResponseWriter) NotFound(message string)     { rw.Fail(ErrCodeNotFound, message, nil) }

func (rw *ResponseWriter) ServiceUnavailable(message string) {
	rw.Fail(ErrCodeServiceUnavailable, message, nil)
}

// Validation reports every rejected field under details.fields.
func (rw *ResponseWriter) Validation(verr *validation.Failure) {
	rw.Fail(ErrCodeValidationFailed, verr.Message(), verr.Details())
}

// DatabaseError logs err and hides it from the caller.
func (rw *ResponseWriter) DatabaseError(err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Database error")
	rw.Fail(ErrCodeDatabaseError, "A database error occurred", nil)
}

// ExternalServiceError logs err and names the failing upstream.
func (rw *ResponseWriter) ExternalServiceError(service string, err error) {
	logging.Ctx(rw.r.Context()).Warn().Err(err).Str("service", service).Msg("External service error")
	rw.Fail(ErrCodeExternalServiceFail, "External service unavailable: "+service, map[string]string{"service": service})
}

func (rw *ResponseWriter) writeJSON(status int, body APIResponse) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if err := json.NewEncoder(rw.w).Encode(body); err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes an error envelope outside a handler, for the rate
// limiter and the router fallbacks.
func WriteError(w http.ResponseWriter, r *http.Request, code, message string) {
	NewResponseWriter(w, r).Fail(code, message, nil)
}
