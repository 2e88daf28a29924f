package llm

import (
	"fmt"

	"lovematch/pkg/utils"
)

// ResponseError is returned by the gateway and its providers. Kind is one of
// the upstream sentinels in pkg/utils, so callers can match it with errors.Is.
type ResponseError struct {
	Kind       error
	StatusCode int
	Content    string
	Err        error
}

func (e *ResponseError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%v (status %d): %v", e.Kind, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *ResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Payload returns the raw completion text that caused the error, if any.
func (e *ResponseError) Payload() string { return e.Content }

func upstreamError(status int, err error) *ResponseError {
	return &ResponseError{Kind: utils.ErrUpstreamUnavailable, StatusCode: status, Err: err}
}

func timeoutError(err error) *ResponseError {
	return &ResponseError{Kind: utils.ErrTimeout, Err: err}
}

func malformedError(content string, err error) *ResponseError {
	return &ResponseError{Kind: utils.ErrMalformedResponse, Content: content, Err: err}
}

func invalidShapeError(content string, err error) *ResponseError {
	return &ResponseError{Kind: utils.ErrInvalidShape, Content: content, Err: err}
}

// ShapeError reports a reply that parsed and passed the schema but failed a
// caller's own checks.
func ShapeError(content string, err error) error {
	return invalidShapeError(content, err)
}
