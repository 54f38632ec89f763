package dashboard

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned when a newer trigger for the same region started
// while this one was waiting on the backend. Its result was discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// ValidationError means required input was missing. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// TransportError wraps a failed or undecodable backend call. Message is the
// text shown to the user.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EmptyResultError means the call worked but matched nothing.
type EmptyResultError struct {
	Op      string
	Message string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// UserMessage returns the text the UI should show for err, or "" if err
// carries none.
func UserMessage(err error) string {
	var ve *ValidationError
	var te *TransportError
	var ee *EmptyResultError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &te):
		return te.Message
	case errors.As(err, &ee):
		return ee.Message
	default:
		return ""
	}
}
