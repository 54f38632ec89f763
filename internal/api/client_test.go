package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdash/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	cfg := config.TestConfig()
	cfg.API.BaseURL = "127.0.0.1:5000"
	cfg.API.Timeout = 0
	cfg.API.UserAgent = ""

	client, err := NewClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", client.BaseURL())
	assert.Equal(t, defaultTimeout, client.http.Timeout)
	assert.Equal(t, defaultUserAgent, client.userAgent)

	cfg.API.BaseURL = "ftp://example.org"
	_, err = NewClient(cfg)
	assert.Error(t, err)
}

func TestWeeklyCounts_PreservesOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weekly-data", r.URL.Path)
		assert.Equal(t, "newsdash-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"2024-05-03": 4, "2024-04-29": 9, "2024-05-01": 0}`))
	})

	counts, err := client.WeeklyCounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-05-03", "2024-04-29", "2024-05-01"}, counts.Labels())
	assert.Equal(t, []float64{4, 9, 0}, counts.Values())
}

func TestDailyCounts_Query(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/daily-data", r.URL.Path)
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("date"))
		_, _ = w.Write([]byte(`{"tech": 3, "sport": 1.5}`))
	})

	counts, err := client.DailyCounts(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, Counts{{Label: "tech", Value: 3}, {Label: "sport", Value: 1.5}}, counts)
}

func TestNewsEndpoints(t *testing.T) {
	body := `[{"title":"Chip launch","description":"A new chip","url":"https://news.example.org/chip","source":"wire","published_at":"2024-05-01"}]`

	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(body))
	})
	want := []NewsItem{{Title: "Chip launch", Description: "A new chip", URL: "https://news.example.org/chip", Source: "wire"}}

	items, err := client.NewsByCategoryAndDate(context.Background(), "tech & science", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, want, items)
	assert.Equal(t, "/news-by-category-and-date", gotPath)
	assert.Equal(t, "category=tech+%26+science&date=2024-05-01", gotQuery)

	items, err = client.NewsByDate(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, want, items)
	assert.Equal(t, "/news-by-date", gotPath)

	_, err = client.Search(context.Background(), "a&b=c", "")
	require.NoError(t, err)
	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "q=a%26b%3Dc", gotQuery, "date omitted when empty")

	_, err = client.Search(context.Background(), "chip", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "date=2024-05-01&q=chip", gotQuery)
}

func TestNewsEndpoints_NullIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	items, err := client.NewsByDate(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSendReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/send-report", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2024-05-01", r.PostForm.Get("date"))
		assert.Equal(t, "reader+news@example.org", r.PostForm.Get("email"))
		_, _ = w.Write([]byte(`{"message":"Report sent!"}`))
	})

	res, err := client.SendReport(context.Background(), "2024-05-01", "reader+news@example.org")
	require.NoError(t, err)
	assert.Equal(t, "Report sent!", res.Text())
}

func TestSendReport_ErrorBodies(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"not found message", http.StatusNotFound, `{"message":"No data for this date."}`, "No data for this date."},
		{"server error field", http.StatusInternalServerError, `{"error":"smtp timeout"}`, "smtp timeout"},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down"},
		{"empty", http.StatusServiceUnavailable, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.SendReport(context.Background(), "2024-05-01", "a@example.org")

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Code)
			assert.Equal(t, tt.message, se.Message)
			assert.Contains(t, se.Error(), "HTTP error")
		})
	}
}

func TestStatusError_LongBodyKeepsWholeRunes(t *testing.T) {
	body := strings.Repeat("сервер недоступний ", 30)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(body))
	})

	_, err := client.SendReport(context.Background(), "2024-05-01", "a@example.org")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, utf8.ValidString(se.Message))
	assert.Equal(t, 200, utf8.RuneCountInString(se.Message))
	assert.True(t, strings.HasPrefix(body, se.Message))
}

func TestChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]string{"message": "hi", "date": "2024-01-01", "category": ""}, req)

		_, _ = w.Write([]byte(`{"response":"hello","extra":true}`))
	})

	reply, err := client.Chat(context.Background(), "hi", "2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
}

func TestChat_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.Chat(context.Background(), "hi", "2024-01-01", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestClient_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.WeeklyCounts(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCounts_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Counts
		wantErr bool
	}{
		{"empty object", `{}`, Counts{}, false},
		{"null", `null`, nil, false},
		{"null value", `{"a": null}`, Counts{{Label: "a", Value: 0}}, false},
		{"array", `[1,2]`, nil, true},
		{"string value", `{"a": "x"}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Counts
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportResult_Text(t *testing.T) {
	assert.Equal(t, "a", ReportResult{Message: "a", Error: "b"}.Text())
	assert.Equal(t, "b", ReportResult{Error: "b"}.Text())
	assert.Empty(t, ReportResult{}.Text())
	assert.True(t, strings.HasPrefix((&StatusError{Code: 500}).Error(), "HTTP error: 500"))
}
