// Package util provides utility functions and types for the dispatch engine.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrRouteNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., TemplateError, MethodNotAllowedError).
//     Each type implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// All custom error types must implement:
//
//	Error() string           – human-readable message
//	Unwrap() error           – if the type wraps another error
//	Is(target error) bool    – for errors.Is() compatibility
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors.
var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrInvalidTemplate  = errors.New("invalid route template")
	ErrDuplicateRoute   = errors.New("duplicate route")
	ErrDecodeFailed     = errors.New("payload decode failed")
	ErrEncodeFailed     = errors.New("payload encode failed")
	ErrHandlerFailed    = errors.New("handler failed")
)

// TemplateError reports a malformed route template at registration time.
type TemplateError struct {
	Template string
	Message  string
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("invalid template %q: %s", e.Template, e.Message)
}

// Is checks if the error matches the target.
func (e *TemplateError) Is(target error) bool {
	if target == ErrInvalidTemplate {
		return true
	}
	_, ok := target.(*TemplateError)
	return ok
}

// NewTemplateError creates a new TemplateError.
func NewTemplateError(template, message string) *TemplateError {
	return &TemplateError{Template: template, Message: message}
}

// DuplicateRouteError reports a second registration of an already
// registered template. It is non-fatal: the table keeps the first route.
type DuplicateRouteError struct {
	Template string
}

// Error implements the error interface.
func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("duplicate route template: %s", e.Template)
}

// Is checks if the error matches the target.
func (e *DuplicateRouteError) Is(target error) bool {
	if target == ErrDuplicateRoute {
		return true
	}
	_, ok := target.(*DuplicateRouteError)
	return ok
}

// NewDuplicateRouteError creates a new DuplicateRouteError.
func NewDuplicateRouteError(template string) *DuplicateRouteError {
	return &DuplicateRouteError{Template: template}
}

// RouteNotFoundError reports that no registered template matched a
// request path.
type RouteNotFoundError struct {
	Method string
	Path   string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route found for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *RouteNotFoundError) Is(target error) bool {
	if target == ErrRouteNotFound {
		return true
	}
	_, ok := target.(*RouteNotFoundError)
	return ok
}

// NewRouteNotFoundError creates a new RouteNotFoundError.
func NewRouteNotFoundError(method, path string) *RouteNotFoundError {
	return &RouteNotFoundError{Method: method, Path: path}
}

// MethodNotAllowedError reports that a route matched the request path
// but carries no handler for the request method.
type MethodNotAllowedError struct {
	Method   string
	Template string
	Allowed  []string
}

// Error implements the error interface.
func (e *MethodNotAllowedError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("method %s not allowed for %s", e.Method, e.Template)
	}
	return fmt.Sprintf("method %s not allowed for %s (allowed: %s)",
		e.Method, e.Template, strings.Join(e.Allowed, ", "))
}

// Is checks if the error matches the target.
func (e *MethodNotAllowedError) Is(target error) bool {
	if target == ErrMethodNotAllowed {
		return true
	}
	_, ok := target.(*MethodNotAllowedError)
	return ok
}

// NewMethodNotAllowedError creates a new MethodNotAllowedError.
func NewMethodNotAllowedError(method, template string, allowed []string) *MethodNotAllowedError {
	return &MethodNotAllowedError{Method: method, Template: template, Allowed: allowed}
}

// DecodeError reports a failure to decode a request body into the
// handler's typed request value.
type DecodeError struct {
	Template string
	Cause    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode request for %s: %v", e.Template, e.Cause)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *DecodeError) Is(target error) bool {
	if target == ErrDecodeFailed {
		return true
	}
	_, ok := target.(*DecodeError)
	return ok || errors.Is(e.Cause, target)
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(template string, cause error) *DecodeError {
	return &DecodeError{Template: template, Cause: cause}
}

// EncodeError reports a failure to encode a handler's typed response
// value into a response body.
type EncodeError struct {
	Template string
	Cause    error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode response for %s: %v", e.Template, e.Cause)
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *EncodeError) Is(target error) bool {
	if target == ErrEncodeFailed {
		return true
	}
	_, ok := target.(*EncodeError)
	return ok || errors.Is(e.Cause, target)
}

// NewEncodeError creates a new EncodeError.
func NewEncodeError(template string, cause error) *EncodeError {
	return &EncodeError{Template: template, Cause: cause}
}

// HandlerError wraps an error returned by user handler logic.
type HandlerError struct {
	Template string
	Cause    error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for %s failed: %v", e.Template, e.Cause)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *HandlerError) Is(target error) bool {
	if target == ErrHandlerFailed {
		return true
	}
	_, ok := target.(*HandlerError)
	return ok || errors.Is(e.Cause, target)
}

// NewHandlerError creates a new HandlerError.
func NewHandlerError(template string, cause error) *HandlerError {
	return &HandlerError{Template: template, Cause: cause}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsClientError returns true if the error maps to a 4xx response.
func IsClientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRouteNotFound) {
		return true
	}

	return errors.Is(err, ErrMethodNotAllowed)
}

// IsServerError returns true if the error maps to a 5xx response.
func IsServerError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrDecodeFailed) {
		return true
	}

	if errors.Is(err, ErrEncodeFailed) {
		return true
	}

	return errors.Is(err, ErrHandlerFailed)
}
