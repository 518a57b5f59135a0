package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrTransport    = errors.New("transport failure")
	ErrHTTPStatus   = errors.New("unexpected http status")
	ErrDecode       = errors.New("malformed response body")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrLockHeld     = errors.New("lock already held")
)

// AppError attaches an HTTP status and the raw upstream body to a sentinel.
// Cause, when set, is the underlying failure and stays reachable through
// errors.Is/As.
type AppError struct {
	Err        error
	Cause      error
	Message    string
	StatusCode int
	Body       []byte
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Transport wraps a failed HTTP exchange. Timeouts and network errors are
// reported the same way.
func Transport(cause error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Cause:   cause,
		Message: cause.Error(),
	}
}

// FromStatus builds the error for a non-2xx response. The status class is
// reachable through a second sentinel so callers can test errors.Is(err,
// ErrNotFound) without inspecting the code.
func FromStatus(statusCode int, message string, body []byte) *AppError {
	e := &AppError{
		Err:        ErrHTTPStatus,
		Message:    message,
		StatusCode: statusCode,
		Body:       body,
	}
	if class := classify(statusCode); class != nil {
		e.Cause = class
	}
	return e
}

func classify(statusCode int) error {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidInput
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrLockHeld):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTransport), errors.Is(err, ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
