package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the request lost to a newer concurrent request for the same resource.
var ErrConflict = errors.New("request conflict")

// ErrUpstream indicates that the remote exchange-rate service failed, either at the
// transport level, while decoding, or by answering with success=false.
var ErrUpstream = errors.New("upstream service error")

// ErrNetwork indicates the rate service could not be reached at all: DNS
// failure, refused connection, timeout or TLS setup problems. It wraps ErrUpstream.
var ErrNetwork = fmt.Errorf("%w: network unreachable", ErrUpstream)

// ErrFutureDate is returned when historical rates are requested for a date after now.
var ErrFutureDate = fmt.Errorf("%w: cannot select future dates", ErrValidation)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
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

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError creates a 400 AppError that matches ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// UpstreamError is a success=false answer from the rate service.
type UpstreamError struct {
	Code int
	Type string
	Info string
}

func (e *UpstreamError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("rate service error %d", e.Code)
	}
	return fmt.Sprintf("rate service error %d (%s): %s", e.Code, e.Type, e.Info)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
