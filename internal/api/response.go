// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/factors"
	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/models"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeValidation         = validation.ErrorCode
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains additional error details (optional)
	Details interface{} `json:"details,omitempty"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response. Recommendation bodies are never cached.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends an error envelope. err, when present, is logged with the
// request context and never echoed to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}, err error) {
	if err != nil {
		logger := logging.Ctx(r.Context())
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("code", code).
			Int("status", status).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &ErrorResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// respondValidation writes a 400 VALIDATION_ERROR for a failed validateRequest.
func respondValidation(w http.ResponseWriter, r *http.Request, apiErr *APIError) {
	respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
}

// respondServiceError maps an engine failure to its HTTP status.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidCount):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil, nil)
	case errors.Is(err, models.ErrInvalidMediaType):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil, nil)
	case errors.Is(err, factors.ErrNotReady):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Recommendation model is not loaded", nil, err)
	case errors.Is(err, catalog.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Catalog is temporarily unavailable", nil, err)
	case errors.Is(err, catalog.ErrQuery), errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusBadGateway, ErrCodeDatabaseError,
			"A catalog query failed", nil, err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
			"Internal server error", nil, err)
	}
}
