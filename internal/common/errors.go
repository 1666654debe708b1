package common

import (
	"errors"
	"net/http"
)

// Error kinds. Match with errors.Is; the concrete error carries the
// client-facing message.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrToxicContent     = errors.New("toxic content")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidToken     = errors.New("invalid token")
	ErrForbidden        = errors.New("forbidden")
	ErrCannotDeleteSelf = errors.New("cannot delete self")
)

// Error pairs an error kind with the message returned to the client.
type Error struct {
	Kind error
	Msg  string
}

func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

type ValidationReason string

const (
	ReasonEmpty           ValidationReason = "empty"
	ReasonTooLong         ValidationReason = "too_long"
	ReasonSpam            ValidationReason = "spam"
	ReasonUnsafeLink      ValidationReason = "unsafe_link"
	ReasonInappropriate   ValidationReason = "inappropriate"
	ReasonInvalidCategory ValidationReason = "invalid_category"
)

// ValidationError is a user-correctable rejection of submitted text.
type ValidationError struct {
	Reason  ValidationReason `json:"reason"`
	Message string           `json:"error"`
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(reason ValidationReason, msg string) *ValidationError {
	return &ValidationError{Reason: reason, Message: msg}
}

// HTTPStatus maps an error to its response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	var verr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrToxicContent),
		errors.Is(err, ErrCannotDeleteSelf):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
