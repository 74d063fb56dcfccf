package fdapi

import (
	"errors"
	"fmt"
	"maps"
	"time"
)

// ErrorKind tags an Error with its place in the closed taxonomy.
type ErrorKind string

// Error kinds.
const (
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindAuthentication ErrorKind = "authentication"
	KindRateLimit      ErrorKind = "rate_limit"
	KindServer         ErrorKind = "server"
	KindConnection     ErrorKind = "connection"
)

// Machine-readable error codes.
const (
	CodeInvalidLanguage    = "INVALID_LANGUAGE"
	CodeInvalidContentType = "INVALID_CONTENT_TYPE"
	CodeInvalidSlug        = "INVALID_SLUG"
	CodeInvalidPage        = "INVALID_PAGE"
	CodeInvalidLimit       = "INVALID_LIMIT"
	CodeMalformedResponse  = "MALFORMED_RESPONSE"
	CodeMissingField       = "MISSING_FIELD"
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServerError        = "SERVER_ERROR"
	CodeUnexpectedStatus   = "UNEXPECTED_STATUS"
	CodeConnectionFailed   = "CONNECTION_FAILED"
	CodeTimeout            = "TIMEOUT"
	CodeCancelled          = "CANCELLED"
	CodeClientClosed       = "CLIENT_CLOSED"
	CodeClientStartFailed  = "CLIENT_START_FAILED"
	CodeRequestRejected    = "REQUEST_REJECTED"
)

// Error is the single error type returned by content operations. Callers
// branch on Kind (or use the Is* helpers) instead of on concrete types.
type Error struct {
	Kind       ErrorKind              `json:"kind"                  yaml:"kind"`
	Code       string                 `json:"code"                  yaml:"code"`
	Message    string                 `json:"message"               yaml:"message"`
	StatusCode int                    `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Attempts   int                    `json:"attempts,omitempty"    yaml:"attempts,omitempty"`
	RetryAfter time.Duration          `json:"retry_after,omitempty" yaml:"retry_after,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"     yaml:"details,omitempty"`
	Err        error                  `json:"-"                     yaml:"-"`
}

// Kind sentinels for use with errors.Is.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrRateLimit      = &Error{Kind: KindRateLimit}
	ErrServer         = &Error{Kind: KindServer}
	ErrConnection     = &Error{Kind: KindConnection}
)

// NewError creates an Error.
func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a request-shape validation error.
func NewValidationError(code, message string, details map[string]interface{}) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (code: %s, status: %d)", e.Kind, e.Message, e.Code, e.StatusCode)
	}

	return fmt.Sprintf("%s: %s (code: %s)", e.Kind, e.Message, e.Code)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels. A target with a Code must match that code too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if t.Kind != e.Kind {
		return false
	}

	return t.Code == "" || t.Code == e.Code
}

// Transient reports whether the kind is one the retry policy may repeat.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindRateLimit, KindServer, KindConnection:
		return true
	default:
		return false
	}
}

// WithDetails returns a copy of e with details merged in. Existing keys are
// kept.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	clone := *e

	merged := make(map[string]interface{}, len(e.Details)+len(details))
	maps.Copy(merged, details)
	maps.Copy(merged, e.Details)

	clone.Details = merged

	return &clone
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var fdErr *Error
	if errors.As(err, &fdErr) {
		return fdErr, true
	}

	return nil, false
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	fdErr, ok := AsError(err)
	if !ok {
		return ""
	}

	return fdErr.Kind
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsAuthentication checks if the error is an authentication error.
func IsAuthentication(err error) bool {
	return KindOf(err) == KindAuthentication
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimit
}

// IsServer checks if the error is a server error.
func IsServer(err error) bool {
	return KindOf(err) == KindServer
}

// IsConnection checks if the error is a connection error.
func IsConnection(err error) bool {
	return KindOf(err) == KindConnection
}
