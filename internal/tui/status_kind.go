package tui

import (
	"errors"

	"github.com/pders01/newsdash/internal/dashboard"
)

// StatusKind indicates severity for status messages/spinners.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// kindOf maps an operation error to a status severity. Missing input and
// empty results are warnings; everything else is an error.
func kindOf(err error) StatusKind {
	var ve *dashboard.ValidationError
	var ee *dashboard.EmptyResultError
	switch {
	case err == nil:
		return StatusSuccess
	case errors.As(err, &ve), errors.As(err, &ee):
		return StatusWarn
	default:
		return StatusError
	}
}
