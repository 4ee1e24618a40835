package handler

import (
	"net/http"

	"github.com/mcoot/reflextile/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest        = apierr.CodeInvalidRequest
	CodeInvalidInput          = apierr.CodeInvalidInput
	CodeScoreInvalid          = apierr.CodeScoreInvalid
	CodeSessionRequired       = apierr.CodeSessionRequired
	CodeSessionInvalid        = apierr.CodeSessionInvalid
	CodeSessionDeviceMismatch = apierr.CodeSessionDeviceMismatch
	CodeSessionExpired        = apierr.CodeSessionExpired
	CodeSessionUsed           = apierr.CodeSessionUsed
	CodeRateLimited           = apierr.CodeRateLimited
	CodeNameTaken             = apierr.CodeNameTaken
	CodeContactTaken          = apierr.CodeContactTaken
	CodeStoreUnavailable      = apierr.CodeStoreUnavailable
	CodeUnauthorized          = apierr.CodeUnauthorized
	CodeNotFound              = apierr.CodeNotFound
	CodeInternalError         = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewNotFoundError creates a not found error
func NewNotFoundError() error {
	return apierr.NewNotFoundError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
