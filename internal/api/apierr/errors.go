package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/reflextile/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes. Rejection codes are stable; clients branch on them.
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeScoreInvalid          = "SCORE_INVALID"
	CodeSessionRequired       = "SESSION_REQUIRED"
	CodeSessionInvalid        = "SESSION_INVALID"
	CodeSessionDeviceMismatch = "SESSION_DEVICE_MISMATCH"
	CodeSessionExpired        = "SESSION_EXPIRED"
	CodeSessionUsed           = "SESSION_USED"
	CodeRateLimited           = "RATE_LIMITED"
	CodeNameTaken             = "NAME_TAKEN"
	CodeContactTaken          = "CONTACT_TAKEN"
	CodeStoreUnavailable      = "STORE_UNAVAILABLE"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Input rejections
	case errors.Is(err, model.ErrInvalidInput):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidInput, err.Error()}}
	case errors.Is(err, model.ErrScoreInvalid):
		return &httpError{http.StatusBadRequest, APIError{CodeScoreInvalid, "Score is not possible"}}

	// Session rejections
	case errors.Is(err, model.ErrSessionRequired):
		return &httpError{http.StatusForbidden, APIError{CodeSessionRequired, "A session is required"}}
	case errors.Is(err, model.ErrSessionInvalid):
		return &httpError{http.StatusForbidden, APIError{CodeSessionInvalid, "Unknown session"}}
	case errors.Is(err, model.ErrSessionDeviceMismatch):
		return &httpError{http.StatusForbidden, APIError{CodeSessionDeviceMismatch, "Session belongs to another device"}}
	case errors.Is(err, model.ErrSessionExpired):
		return &httpError{http.StatusForbidden, APIError{CodeSessionExpired, "Session expired"}}
	case errors.Is(err, model.ErrSessionUsed):
		return &httpError{http.StatusForbidden, APIError{CodeSessionUsed, "Session already used"}}

	case errors.Is(err, model.ErrRateLimited):
		return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests, wait a moment"}}

	// Uniqueness conflicts
	case errors.Is(err, model.ErrNameTaken):
		return &httpError{http.StatusConflict, APIError{CodeNameTaken, "Player name is taken"}}
	case errors.Is(err, model.ErrContactTaken):
		return &httpError{http.StatusConflict, APIError{CodeContactTaken, "Contact is already in use"}}

	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Storage unavailable, try again"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewNotFoundError creates a not found error
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
