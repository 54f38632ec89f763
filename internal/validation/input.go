package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// DateLayout is the date format the backend expects.
const DateLayout = "2006-01-02"

// ValidateDate checks that s is a calendar date in YYYY-MM-DD form.
func ValidateDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("date cannot be empty")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("date %q must look like %s", s, DateLayout)
	}
	return s, nil
}

// ValidateEmail checks for a single bare address and returns it trimmed.
func ValidateEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("email cannot be empty")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return "", fmt.Errorf("invalid email address %q", s)
	}
	if addr.Name != "" || addr.Address != s {
		return "", fmt.Errorf("email must be a bare address, got %q", s)
	}
	return addr.Address, nil
}
