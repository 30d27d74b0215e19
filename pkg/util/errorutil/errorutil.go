package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the interaction router and the ops API.
const (
	CodeForbidden         = "FORBIDDEN"
	CodeMissingRole       = "MISSING_ROLE"
	CodeMissingConfig     = "MISSING_CONFIG"
	CodeConflict          = "CONFLICT"
	CodeInvalidChannel    = "INVALID_CHANNEL"
	CodeInvalidInvocation = "INVALID_INVOCATION"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeExternalFailure   = "EXTERNAL_FAILURE"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsFault reports whether the error should be logged as an operator-facing failure.
func (e *DomainError) IsFault() bool {
	return e.Code == CodeExternalFailure || e.Code == CodeInternal
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewMissingRole is the command-level role gate failure.
func NewMissingRole(roleName string) error {
	return NewDomainError(CodeMissingRole,
		fmt.Sprintf("You need the **%s** role to use this command.", roleName),
		http.StatusForbidden, map[string]any{"role": roleName})
}

func NewMissingConfig(message, key string) error {
	return NewDomainError(CodeMissingConfig, message, http.StatusServiceUnavailable, map[string]any{"key": key})
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInvalidChannel(message string) error {
	return NewDomainError(CodeInvalidChannel, message, http.StatusBadRequest, nil)
}

func NewInvalidInvocation(message string) error {
	return NewDomainError(CodeInvalidInvocation, message, http.StatusBadRequest, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewExternalFailure wraps a platform or network error with a user-safe message.
func NewExternalFailure(message string, err error) error {
	return &DomainError{
		Code:       CodeExternalFailure,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "Something went wrong.",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "Something went wrong.",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
