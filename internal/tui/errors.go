package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/newsdash/internal/dashboard"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// superseded reports whether err only says a newer trigger won.
func superseded(err error) bool {
	return errors.Is(err, dashboard.ErrSuperseded)
}
