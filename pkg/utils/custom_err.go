package utils

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUpstreamUnavailable = errors.New("completion service unavailable")
	ErrTimeout             = errors.New("completion service timed out")
	ErrMalformedResponse   = errors.New("malformed completion response")
	ErrInvalidShape        = errors.New("completion response has invalid shape")
)

// InputError describes a rejected inbound field. It matches ErrBadRequest.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *InputError) Is(target error) bool {
	return target == ErrBadRequest
}

func BadInput(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}
