// Package domainerrors defines the coded error type every layer of the
// application speaks. Services and domain code construct these at the point of
// violation; transport translates codes into HTTP statuses. Infrastructure
// facts (row missing, key conflict) use pkg/platform/sentinel instead and are
// wrapped into coded errors at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for programmatic handling.
type Code string

const (
	// Construction and input failures.
	CodeValidation   Code = "validation"
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"

	// Aggregate lifecycle failures.
	CodeInvalidState Code = "invalid_state"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"

	// Submission failures.
	CodeNotAccepting        Code = "not_accepting_responses"
	CodeDuplicateSubmission Code = "duplicate_submission"
	CodeInvalidAnswer       Code = "invalid_answer"

	// Configuration failures.
	CodeUnknownQuestionType Code = "unknown_question_type"

	// Authorization failures.
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// Everything else.
	CodeInternal Code = "internal"
	CodeTimeout  Code = "timeout"
)

// Error is a coded, human-readable domain error. Reason optionally carries a
// machine-readable sub-case (e.g. "closed" vs "outside_window" for
// CodeNotAccepting) so callers can branch without string-matching messages.
type Error struct {
	Code    Code
	Reason  string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewWithReason constructs a coded error carrying a sub-case reason.
func NewWithReason(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability in assertions.
func Is(err error, code Code) bool { return HasCode(err, code) }

// HasReason reports whether err carries the given code and sub-case reason.
func HasReason(err error, code Code, reason string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code && de.Reason == reason
	}
	return false
}

// ReasonOf returns the sub-case reason of a coded error, or "" when absent.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

// ToHTTPStatus maps an error code to the HTTP status transport should emit.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput, CodeBadRequest, CodeInvalidAnswer:
		return http.StatusUnprocessableEntity
	case CodeInvalidState:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateSubmission:
		return http.StatusConflict
	case CodeNotAccepting:
		return http.StatusForbidden
	case CodeUnknownQuestionType:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
