package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NewsItem is one article as the backend returns it. Source is optional and
// only present on some deployments.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source,omitempty"`
}

// Count is one labelled value of a count mapping.
type Count struct {
	Label string
	Value float64
}

// Counts is a label to count mapping in the order the server wrote it.
type Counts []Count

// UnmarshalJSON decodes a JSON object token by token so key order survives.
func (c *Counts) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("counts: expected object, got %v", tok)
	}

	out := Counts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("counts: expected string key, got %v", keyTok)
		}

		var value *float64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("counts: value for %q: %w", key, err)
		}
		var v float64
		if value != nil {
			v = *value
		}
		out = append(out, Count{Label: key, Value: v})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// Labels returns the keys in order.
func (c Counts) Labels() []string {
	labels := make([]string, len(c))
	for i, item := range c {
		labels[i] = item.Label
	}
	return labels
}

// Values returns the counts in order.
func (c Counts) Values() []float64 {
	values := make([]float64, len(c))
	for i, item := range c {
		values[i] = item.Value
	}
	return values
}

// ReportResult is the body of /send-report. The backend puts user text in
// Message and exception text in Error.
type ReportResult struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Text is whichever of Message and Error is set.
func (r ReportResult) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

type chatRequest struct {
	Message  string `json:"message"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

type chatResponse struct {
	Response string `json:"response"`
}
