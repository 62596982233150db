// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

type ErrorCode string

const (
	// Roster
	ErrCodeActivityNotFound ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadySignedUp  ErrorCode = "ALREADY_SIGNED_UP"
	ErrCodeNotSignedUp      ErrorCode = "NOT_SIGNED_UP"

	// Input / catalog
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeCatalogInvalid ErrorCode = "CATALOG_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Kind groups error codes by how a caller should react to them.
type Kind string

const (
	KindNotFound   Kind = "NotFound"
	KindConflict   Kind = "Conflict"
	KindValidation Kind = "Validation"
	KindInternal   Kind = "Internal"
)

// Sentinels for errors.Is. StandardError.Is matches on Code only.
var (
	ErrActivityNotFound = &StandardError{Code: ErrCodeActivityNotFound}
	ErrAlreadySignedUp  = &StandardError{Code: ErrCodeAlreadySignedUp}
	ErrNotSignedUp      = &StandardError{Code: ErrCodeNotSignedUp}
	ErrInvalidInput     = &StandardError{Code: ErrCodeInvalidInput}
	ErrCatalogInvalid   = &StandardError{Code: ErrCodeCatalogInvalid}
)

// StandardError is the error shape returned by the registry and rendered by the
// HTTP layer. Message is the client-facing detail string.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Kind reports the taxonomy bucket of the error's code.
func (e *StandardError) Kind() Kind {
	return KindOf(e.Code)
}

// ====================
// Constructors
// ====================

func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activity),
		Metadata:  map[string]interface{}{"activity": activity},
		Timestamp: time.Now().UTC(),
	}
}

func NewAlreadySignedUpError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadySignedUp,
		Message:   "Student is already signed up",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

func NewNotSignedUpError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotSignedUp,
		Message:   "Student is not signed up for this activity",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   fmt.Sprintf("Invalid or missing parameter: %s", field),
		Details:   details,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Activity catalog is invalid",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// ====================
// Classification
// ====================

func KindOf(code ErrorCode) Kind {
	switch code {
	case ErrCodeActivityNotFound:
		return KindNotFound
	case ErrCodeAlreadySignedUp, ErrCodeNotSignedUp:
		return KindConflict
	case ErrCodeInvalidInput, ErrCodeCatalogInvalid:
		return KindValidation
	default:
		return KindInternal
	}
}

// HTTPStatus maps a code to its response status. Conflicts are reported as 400
// for compatibility with existing clients.
func HTTPStatus(code ErrorCode) int {
	switch KindOf(code) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the code of the first StandardError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code, true
	}
	return "", false
}

// Normalize returns err as a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}
