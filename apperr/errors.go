package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an application error. Each kind maps to exactly one HTTP
// status code at the request boundary.
type Kind string

const (
	KindTokenInvalid       Kind = "TOKEN_INVALID"
	KindTokenExpired       Kind = "TOKEN_EXPIRED"
	KindNotAuthenticated   Kind = "NOT_AUTHENTICATED"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidOperation   Kind = "INVALID_OPERATION"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindInternal           Kind = "INTERNAL"
)

// HTTPStatus returns the status code the kind is reported with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindTokenInvalid, KindTokenExpired, KindNotAuthenticated, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidOperation, KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ForbiddenMessage is the message of every ownership or membership denial.
const ForbiddenMessage = "You do not have permission to access this project"

// Error is the application error type.
type Error struct {
	Kind    Kind   // Machine-readable kind
	Message string // Client-facing message
	Cause   error  // Wrapped underlying error, never shown to clients
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks by kind.
var (
	ErrTokenInvalid       = &Error{Kind: KindTokenInvalid}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired}
	ErrNotAuthenticated   = &Error{Kind: KindNotAuthenticated}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidOperation   = &Error{Kind: KindInvalidOperation}
	ErrBadRequest         = &Error{Kind: KindBadRequest}
)

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind that wraps cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// Forbidden is the ownership/membership denial.
func Forbidden() *Error {
	return New(KindForbidden, ForbiddenMessage)
}

// NotFound reports a single missing resource, e.g. "Project not found with id: <id>".
func NotFound(resource string, id any) *Error {
	return Newf(KindNotFound, "%s not found with id: %v", resource, id)
}

// NotFoundIDs reports a set of missing ids of the same resource.
func NotFoundIDs[T fmt.Stringer](resource string, ids []T) *Error {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return Newf(KindNotFound, "%s not found with IDs: [%s]", resource, strings.Join(parts, ", "))
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
