package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxErrorWidth caps the raw body text kept in a StatusError.
const maxErrorWidth = 200

// StatusError is returned for any response with a status code of 400 or more.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error: %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP error: %d %s", e.Code, http.StatusText(e.Code))
}

// newStatusError pulls a message out of a JSON {message} or {error} body and
// falls back to the raw text.
func newStatusError(code int, body []byte) *StatusError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	} else {
		msg = runewidth.Truncate(strings.TrimSpace(string(body)), maxErrorWidth, "")
	}
	return &StatusError{Code: code, Message: msg}
}
