// Package api is the HTTP client for the news backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pders01/newsdash/internal/config"
	"github.com/pders01/newsdash/internal/debuglog"
	"github.com/pders01/newsdash/internal/validation"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "newsdash/1.0"
	maxBodyBytes     = 4 << 20
)

// Client talks to one backend. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// NewClient builds a client from the api section of cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	base, err := validation.NewBackendURLValidator().Validate(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api.base_url: %w", err)
	}

	timeout := cfg.API.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.API.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout},
		userAgent: ua,
	}, nil
}

// BaseURL returns the backend address the client was built for.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends req and decodes a JSON body into out. A status of 400 or more
// becomes a *StatusError.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", req.URL.Path, err)
	}

	debuglog.WithFields(map[string]any{
		"method":  req.Method,
		"path":    req.URL.Path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debugf("backend request")

	if resp.StatusCode >= 400 {
		return newStatusError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) getNews(ctx context.Context, path string, query url.Values) ([]NewsItem, error) {
	var items []NewsItem
	if err := c.get(ctx, path, query, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []NewsItem{}
	}
	return items, nil
}

// WeeklyCounts fetches news counts per day.
func (c *Client) WeeklyCounts(ctx context.Context) (Counts, error) {
	var counts Counts
	if err := c.get(ctx, "/weekly-data", nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// DailyCounts fetches news counts per category for date.
func (c *Client) DailyCounts(ctx context.Context, date string) (Counts, error) {
	var counts Counts
	if err := c.get(ctx, "/daily-data", url.Values{"date": {date}}, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// NewsByCategoryAndDate fetches the items of one category published on date.
func (c *Client) NewsByCategoryAndDate(ctx context.Context, category, date string) ([]NewsItem, error) {
	return c.getNews(ctx, "/news-by-category-and-date", url.Values{"category": {category}, "date": {date}})
}

// NewsByDate fetches every item published on date.
func (c *Client) NewsByDate(ctx context.Context, date string) ([]NewsItem, error) {
	return c.getNews(ctx, "/news-by-date", url.Values{"date": {date}})
}

// Search runs a backend search. An empty date searches all dates.
func (c *Client) Search(ctx context.Context, query, date string) ([]NewsItem, error) {
	q := url.Values{"q": {query}}
	if date != "" {
		q.Set("date", date)
	}
	return c.getNews(ctx, "/search", q)
}

// SendReport asks the backend to mail the report for date to email.
// A non-2xx reply still yields the server's text through *StatusError.
func (c *Client) SendReport(ctx context.Context, date, email string) (*ReportResult, error) {
	form := url.Values{"date": {date}, "email": {email}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/send-report", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result ReportResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat sends one message and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, message, date, category string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: message, Date: date, Category: category})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/chat", nil), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp chatResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}
