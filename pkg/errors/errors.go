package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// Upstream is the status returned by the attendance backend, when the
	// failure came from it.
	Upstream int   `json:"upstream_status,omitempty"`
	Err      error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so clones and wraps compare equal to their base.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Credential problems.
	ErrMissingCredential = New("MISSING_CREDENTIAL", http.StatusUnauthorized, "No token found. Please log in.")
	ErrDecodeFailure     = New("DECODE_FAILURE", http.StatusUnauthorized, "invalid token or missing role")

	// Backend transport and rejection.
	ErrNetwork        = New("NETWORK_ERROR", http.StatusBadGateway, "unable to reach the attendance server")
	ErrServerRejected = New("SERVER_REJECTED", http.StatusBadGateway, "request rejected by the attendance server")

	// Device capability failures.
	ErrCameraUnavailable   = New("CAMERA_UNAVAILABLE", http.StatusServiceUnavailable, "Webcam not available")
	ErrLocationDenied      = New("LOCATION_DENIED", http.StatusForbidden, "Location access denied. Please allow location permissions.")
	ErrLocationUnavailable = New("LOCATION_UNAVAILABLE", http.StatusServiceUnavailable, "Location information is unavailable. Please check your GPS signal or try outdoors.")
	ErrLocationTimeout     = New("LOCATION_TIMEOUT", http.StatusGatewayTimeout, "Location request timed out. Try again or check your GPS signal.")
	ErrLocationUnsupported = New("LOCATION_UNSUPPORTED", http.StatusServiceUnavailable, "Geolocation is not supported by this device.")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Rejected builds a SERVER_REJECTED error carrying the upstream status.
func Rejected(upstream int, message string) *Error {
	clone := Clone(ErrServerRejected, message)
	clone.Upstream = upstream
	if upstream >= 400 && upstream < 500 {
		clone.Status = upstream
	}
	return clone
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
