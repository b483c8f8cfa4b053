package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the API layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

// Error is a domain error carrying a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrValidation is returned for missing or malformed input.
	ErrValidation = &Error{Kind: KindValidation, Message: "invalid request", Code: "VALIDATION_ERROR"}
	// ErrUserAlreadyExists is returned when the email is already registered.
	ErrUserAlreadyExists = &Error{Kind: KindConflict, Message: "User already exists", Code: "USER_ALREADY_EXISTS"}
	// ErrEmailTaken is returned when an admin update collides with another user's email.
	ErrEmailTaken = &Error{Kind: KindConflict, Message: "Email already in use", Code: "EMAIL_TAKEN"}
	// ErrUserHasEvents is returned when deleting a user that still owns events.
	ErrUserHasEvents = &Error{Kind: KindConflict, Message: "User still owns events", Code: "USER_HAS_EVENTS"}
	// ErrMissingToken is returned when no bearer token is presented.
	ErrMissingToken = &Error{Kind: KindUnauthenticated, Message: "No token, authorization denied", Code: "MISSING_TOKEN"}
	// ErrInvalidToken is returned for bad, expired, revoked or stale tokens.
	ErrInvalidToken = &Error{Kind: KindUnauthenticated, Message: "Invalid or expired token", Code: "INVALID_TOKEN"}
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Message: "Invalid credentials", Code: "INVALID_CREDENTIALS"}
	// ErrInvalidAdminCredentials is the admin login variant of ErrInvalidCredentials.
	ErrInvalidAdminCredentials = &Error{Kind: KindUnauthenticated, Message: "Invalid admin credentials", Code: "INVALID_CREDENTIALS"}
	// ErrForbidden is returned when the caller lacks rights on the resource.
	ErrForbidden = &Error{Kind: KindForbidden, Message: "You are not authorized to perform this action", Code: "FORBIDDEN"}
	// ErrAdminRequired is returned by admin-only operations.
	ErrAdminRequired = &Error{Kind: KindForbidden, Message: "Admin role required", Code: "ADMIN_REQUIRED"}
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "User not found", Code: "USER_NOT_FOUND"}
	// ErrEventNotFound is returned when an event is not found.
	ErrEventNotFound = &Error{Kind: KindNotFound, Message: "Event not found", Code: "EVENT_NOT_FOUND"}
)

// NewValidation returns a validation error with a specific message.
func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Code: ErrValidation.Code}
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// domain error becomes a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
	switch e.Kind {
	case KindValidation, KindConflict:
		return NewHTTPError(http.StatusBadRequest, e.Message, e.Code)
	case KindUnauthenticated:
		return NewHTTPError(http.StatusUnauthorized, e.Message, e.Code)
	case KindForbidden:
		return NewHTTPError(http.StatusForbidden, e.Message, e.Code)
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, e.Message, e.Code)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
