package errors

import "fmt"

type ErrorCode string

const (
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrCreateFailed               ErrorCode = "CREATE_FAILED"
	ErrGetFailed                  ErrorCode = "GET_FAILED"
	ErrUpdateFailed               ErrorCode = "UPDATE_FAILED"
	ErrDeleteFailed               ErrorCode = "DELETE_FAILED"

	// Booking
	ErrSlotNotAvailable  ErrorCode = "SLOT_NOT_AVAILABLE"
	ErrBookingInFlight   ErrorCode = "BOOKING_IN_FLIGHT"
	ErrSessionExpired    ErrorCode = "BOOKING_SESSION_EXPIRED"
	ErrInvalidTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrRateLimited       ErrorCode = "RATE_LIMITED"

	// Outbound collaborator failures. The four kinds are kept distinct so
	// callers can log precisely, but all of them are recoverable: controllers
	// surface them through the envelope, never as a crash.
	ErrUpstreamNetwork     ErrorCode = "UPSTREAM_NETWORK_ERROR"
	ErrUpstreamHTTP        ErrorCode = "UPSTREAM_HTTP_ERROR"
	ErrUpstreamApplication ErrorCode = "UPSTREAM_APPLICATION_ERROR"
	ErrUpstreamDataShape   ErrorCode = "UPSTREAM_DATA_SHAPE_ERROR"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func New(message string) error {
	return fmt.Errorf("%s", message)
}

// IsUpstream reports whether the error came from an external collaborator.
func IsUpstream(e *AppError) bool {
	switch e.Code {
	case ErrUpstreamNetwork, ErrUpstreamHTTP, ErrUpstreamApplication, ErrUpstreamDataShape:
		return true
	}
	return false
}
