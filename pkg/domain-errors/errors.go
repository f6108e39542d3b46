// Package domainerrors carries coded errors across service boundaries so
// handlers can translate them to HTTP statuses without inspecting messages.
package domainerrors

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_failed"
	CodeNotFound   Code = "not_found"
	CodeInternal   Code = "internal_error"
)

// Error is a coded domain error. Details holds optional per-field messages
// for validation failures.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
}

func (e *Error) Error() string { return e.Message }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidation builds a validation error carrying the full field-error map.
func NewValidation(details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "Validation failed", Details: details}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Details extracts the field-error map from err, if it carries one.
func Details(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
