// Package apperrors defines a uniform error taxonomy: every component
// returns one of these kinds, and the HTTP layer maps them to a uniform
// {error:{code,message}} envelope.
package apperrors

import (
	"fmt"
	"net/http"
)

// AppError is the one error type every component and handler deals in.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes, uppercase-snake, surfaced in the error envelope.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeDatabase            = "DATABASE_ERROR"
	CodeExternalUnavailable = "EXTERNAL_UNAVAILABLE"
	CodeExternalRejected    = "EXTERNAL_REJECTED"
	CodeMalformed           = "MALFORMED_RESPONSE"
	CodeTimeout             = "TIMEOUT"
	CodeInternal            = "INTERNAL_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
)

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func Database(err error) *AppError {
	return Wrap(err, CodeDatabase, "database operation failed", http.StatusInternalServerError)
}

func ExternalUnavailable(err error) *AppError {
	return Wrap(err, CodeExternalUnavailable, "upstream service unavailable", http.StatusBadGateway)
}

func ExternalRejected(err error) *AppError {
	return Wrap(err, CodeExternalRejected, "upstream service rejected the request", http.StatusBadGateway)
}

func Malformed(err error) *AppError {
	return Wrap(err, CodeMalformed, "upstream response could not be parsed", http.StatusBadGateway)
}

func Timeout(err error) *AppError {
	return Wrap(err, CodeTimeout, "operation timed out", http.StatusGatewayTimeout)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "internal server error", http.StatusInternalServerError)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Is reports whether err is an *AppError with the given code.
func Is(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
