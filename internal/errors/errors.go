package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Stable machine-readable error kinds.
const (
	KindBadRequest   = "bad_request"
	KindConflict     = "conflict"
	KindNotFound     = "not_found"
	KindUnauthorized = "unauthorized"
	KindInternal     = "internal"
)

// APIError represents an application error
type APIError struct {
	Kind     string `json:"kind"`
	Status   int    `json:"status"`
	Title    string `json:"error"`
	Message  string `json:"message"`
	Internal error  `json:"-"` // Original error, never rendered
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the original error
func (e *APIError) Unwrap() error {
	return e.Internal
}

// WithMessage returns a copy of the APIError with a custom message
func (e *APIError) WithMessage(msg string) *APIError {
	return &APIError{
		Kind:     e.Kind,
		Status:   e.Status,
		Title:    e.Title,
		Message:  msg,
		Internal: e.Internal,
	}
}

// NewAPIError creates a new application error
func NewAPIError(kind string, status int, message string, err error) *APIError {
	return &APIError{
		Kind:     kind,
		Status:   status,
		Title:    http.StatusText(status),
		Message:  message,
		Internal: err,
	}
}

func BadRequest(msg string, err error) *APIError {
	return NewAPIError(KindBadRequest, http.StatusBadRequest, msg, err)
}

func Conflict(msg string, err error) *APIError {
	return NewAPIError(KindConflict, http.StatusConflict, msg, err)
}

func NotFound(msg string, err error) *APIError {
	return NewAPIError(KindNotFound, http.StatusNotFound, msg, err)
}

func Unauthorized(msg string, err error) *APIError {
	return NewAPIError(KindUnauthorized, http.StatusUnauthorized, msg, err)
}

func Internal(err error) *APIError {
	return NewAPIError(KindInternal, http.StatusInternalServerError, "Internal server error", err)
}

// KindOf reports the kind of err, KindInternal when it is not an APIError.
func KindOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an APIError of the given kind.
func Is(err error, kind string) bool {
	return err != nil && KindOf(err) == kind
}

// FromStore converts gorm errors into API errors. Errors that are already
// API errors pass through untouched.
func FromStore(err error, notFoundMsg, conflictMsg string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(notFoundMsg, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(conflictMsg, err)
	}
	return err
}

// NewValidationError turns binding and validator failures into a BadRequest
// naming the first offending field.
func NewValidationError(err error) *APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return BadRequest("Bad Request.", err)
	}
	fe := verrs[0]
	field := prettyField(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s value missing.", field)
	case "min", "max", "len":
		if fe.Kind().String() == "slice" {
			msg = fmt.Sprintf("%s must contain at most %s items.", field, fe.Param())
		} else {
			msg = fmt.Sprintf("%s value has an invalid length.", field)
		}
	case "email":
		msg = fmt.Sprintf("%s has an invalid format.", field)
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid.", field)
	}
	return BadRequest(msg, err)
}

func prettyField(field string) string {
	if field == "" {
		return "Field"
	}
	var b strings.Builder
	var prev rune
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	out := b.String()
	return out[:1] + strings.ToLower(out[1:])
}
