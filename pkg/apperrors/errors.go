package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the categories the core guarantees.
// Handlers and callers branch on Kind, never on message text.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
	KindTransientProcessor
	KindPermanentProcessor
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransientProcessor:
		return "transient_processor"
	case KindPermanentProcessor:
		return "permanent_processor"
	case KindInvariant:
		return "invariant_violation"
	default:
		return "internal"
	}
}

func (k Kind) httpStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransientProcessor, KindPermanentProcessor:
		return http.StatusUnprocessableEntity
	case KindInvariant:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AppError carries a stable machine code, a user-safe message and the
// HTTP status the adapter should respond with. The wrapped cause stays
// internal and is only logged, never rendered.
type AppError struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is lets errors.Is match any AppError against a sentinel of the same code.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithCause returns a copy wrapping err. The sentinel value is left untouched
// so errors.Is against it keeps working.
func (e *AppError) WithCause(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// ToHTTPError is the JSON body adapters respond with.
func (e *AppError) ToHTTPError() map[string]string {
	return map[string]string{
		"error":   e.Code,
		"message": e.Message,
	}
}

func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, HTTPStatus: kind.httpStatus()}
}

func Validation(code, message string) *AppError {
	return New(KindValidation, code, message)
}

func Authorization(code, message string) *AppError {
	return New(KindAuthorization, code, message)
}

func NotFound(code, message string) *AppError {
	return New(KindNotFound, code, message)
}

func Invariant(code, message string) *AppError {
	return New(KindInvariant, code, message)
}

// ErrConflict is the shared optimistic-concurrency sentinel. Repositories
// return it (wrapped) on a version mismatch or a lost compare-and-set race;
// no partial effect was committed, so callers may retry the whole operation.
var ErrConflict = &AppError{
	Kind:       KindConflict,
	Code:       "CONFLICT",
	Message:    "the resource changed concurrently; retry the request",
	HTTPStatus: http.StatusConflict,
}

// TransientProcessor marks a processor failure worth retrying (network,
// timeout, provider 5xx).
func TransientProcessor(code, message string) *AppError {
	return New(KindTransientProcessor, code, message)
}

// PermanentProcessor marks a definitive decline; retrying cannot succeed.
func PermanentProcessor(code, message string) *AppError {
	return New(KindPermanentProcessor, code, message)
}

// IsKind reports whether err (or anything it wraps) is an AppError of kind k.
func IsKind(err error, k Kind) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Kind == k
}

// From normalizes any error into an AppError for the HTTP boundary.
// Unknown errors become an opaque internal error so nothing leaks.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return &AppError{
		Kind:       KindInternal,
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
