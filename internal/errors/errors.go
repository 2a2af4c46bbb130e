package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// It deliberately does not distinguish which of the two failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned when a token's signature or expiry check fails.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUnknownAccount is returned when a valid token references an account
	// that no longer exists.
	ErrUnknownAccount = errors.New("account not found")
	// ErrBrokenProfileLink is returned when an employee-role account has no
	// resolvable employee record. This is a data-integrity error, not an
	// authentication failure.
	ErrBrokenProfileLink = errors.New("linked employee profile missing or invalid")
	// ErrForbidden is returned when the caller's role does not permit the operation.
	ErrForbidden = errors.New("admin access only")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidDateRange is returned when a certification's expiry date
	// precedes its issue date.
	ErrInvalidDateRange = errors.New("expiry date must not be before issue date")
	// ErrAlreadyAssigned is returned when assigning a course an employee already has.
	ErrAlreadyAssigned = errors.New("course already assigned to employee")
	// ErrStorageUnavailable is returned when the backing store cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
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
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrUnknownAccount):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNKNOWN_ACCOUNT")
	case errors.Is(err, ErrBrokenProfileLink):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "BROKEN_PROFILE_LINK")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrInvalidDateRange):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_DATE_RANGE")
	case errors.Is(err, ErrAlreadyAssigned):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_ASSIGNED")
	case errors.Is(err, ErrStorageUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, err.Error(), "STORAGE_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
