// Package apperr provides standardized domain error types for the application.
// Sink clients return these typed errors at their call sites, and the webhook
// orchestrator maps them once to a classified HTTP response.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindPayloadTooLarge indicates the request body exceeded its limit.
	KindPayloadTooLarge
	// KindConfig indicates required configuration is missing or unusable.
	KindConfig
	// KindUpstreamRejection indicates an upstream service answered with a non-2xx status.
	KindUpstreamRejection
	// KindUpstreamUnreachable indicates a request was sent but no response was received.
	KindUpstreamUnreachable
	// KindInternal indicates an unexpected local failure.
	KindInternal
)

// String returns a short name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindConfig:
		return "config"
	case KindUpstreamRejection:
		return "upstream_rejection"
	case KindUpstreamUnreachable:
		return "upstream_unreachable"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind       Kind
	Message    string
	Op         string // Operation that failed (optional)
	Status     int    // Upstream status code (rejections only)
	StatusText string // Upstream status text (rejections only)
	Err        error  // Underlying error (optional)
	Details    any    // Upstream body or missing variable names (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUpstreamRejection:
		if e.Status >= 100 && e.Status <= 599 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails returns the error with additional details.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// PayloadTooLarge creates a payload too large error.
func PayloadTooLarge(message string) *Error {
	return New(KindPayloadTooLarge, message)
}

// Internal creates an internal server error wrapping the local failure.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// Config creates a configuration error listing the missing variable names.
func Config(missing []string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: "Missing required environment variables: " + strings.Join(missing, ", "),
		Details: missing,
	}
}

// UpstreamRejection creates an error for a non-2xx upstream response.
// body is kept verbatim so callers can surface it unchanged.
func UpstreamRejection(status int, statusText string, body any) *Error {
	return &Error{
		Kind:       KindUpstreamRejection,
		Message:    fmt.Sprintf("upstream responded %d %s", status, statusText),
		Status:     status,
		StatusText: statusText,
		Details:    body,
	}
}

// UpstreamUnreachable creates an error for a request that got no response.
func UpstreamUnreachable(err error) *Error {
	return Wrap(KindUpstreamUnreachable, "no response received", err)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error chain holds no *Error.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// MissingVariables returns the variable names carried by a config error.
func MissingVariables(err error) []string {
	e, ok := As(err)
	if !ok || e.Kind != KindConfig {
		return nil
	}
	missing, _ := e.Details.([]string)
	return missing
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
