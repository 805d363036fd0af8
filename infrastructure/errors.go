package infrastructure

import "errors"

var (
	ErrNotAuthorized  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrTransientStore = errors.New("store temporarily unavailable")

	ErrMissingToken = errors.New("missing access token")
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token has expired")
)

// Validation wraps ErrValidation with a human readable reason.
func Validation(reason string) error {
	return &reasonError{reason: reason, kind: ErrValidation}
}

// NotAuthorized wraps ErrNotAuthorized with a human readable reason.
func NotAuthorized(reason string) error {
	return &reasonError{reason: reason, kind: ErrNotAuthorized}
}

// NotFound wraps ErrNotFound with a human readable reason.
func NotFound(reason string) error {
	return &reasonError{reason: reason, kind: ErrNotFound}
}

type reasonError struct {
	reason string
	kind   error
}

func (e *reasonError) Error() string { return e.reason }

func (e *reasonError) Unwrap() error { return e.kind }
