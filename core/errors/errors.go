package errors

import "fmt"

type ErrorCode string

const (
	// Generic codes
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrCreateFailed       ErrorCode = "CREATE_FAILED"
	ErrGetFailed          ErrorCode = "GET_FAILED"
	ErrUpdateFailed       ErrorCode = "UPDATE_FAILED"
	ErrDeleteFailed       ErrorCode = "DELETE_FAILED"

	// Auth codes
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Scheduling codes
	ErrInvalidRange     ErrorCode = "INVALID_TIME_RANGE"
	ErrBusy             ErrorCode = "MUTATION_IN_FLIGHT"
	ErrConflictDetected ErrorCode = "SCHEDULE_CONFLICT"
	ErrNetwork          ErrorCode = "UPSTREAM_UNREACHABLE"
	ErrUpstreamRejected ErrorCode = "UPSTREAM_REJECTED"
)

// AppError is the error type carried across service boundaries. Code drives
// HTTP status mapping in the base controller, Details carries the underlying
// cause or structured payload (e.g. conflicting entries).
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func NewAppError(code ErrorCode, message string, details any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if cause, ok := e.Details.(error); ok {
			return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, cause)
		}
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is supports errors.Is matching on the code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the caller may retry the failed command.
// Busy and transport-level failures clear up on their own; contract
// violations and rejections do not.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case ErrBusy, ErrNetwork:
		return true
	}
	return false
}
