package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/chart"
)

func TestApplyCategoryDateFilter_MissingInput(t *testing.T) {
	tests := []struct {
		name     string
		category string
		date     string
		field    string
	}{
		{"empty category", "", "2024-05-01", "category"},
		{"empty date", "tech", "", "date"},
		{"both empty", "", "", "category"},
		{"whitespace category", "   ", "2024-05-01", "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestController(t, "")

			err := c.ApplyCategoryDateFilter(context.Background(), tt.category, tt.date)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, 0, fake.total(), "no network call")
			assert.Equal(t, "Select category and date", c.Snapshot().Alert)

			c.DismissAlert()
			assert.Empty(t, c.Snapshot().Alert)
		})
	}
}

func TestApplyCategoryDateFilter_EmptyResultShowsPlaceholder(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.news = []api.NewsItem{}

	require.NoError(t, c.ApplyCategoryDateFilter(context.Background(), "tech", "2024-05-01"))

	news := c.Snapshot().News
	assert.True(t, news.Visible)
	assert.Empty(t, news.Items)
	assert.Equal(t, "No data", news.Placeholder)
}

func TestApplyCategoryDateFilter_OneItemOneCard(t *testing.T) {
	c, fake := newTestController(t, "")
	item := api.NewsItem{Title: "Chip launch", Description: "A new chip", URL: "https://news.example.org/chip"}
	fake.news = []api.NewsItem{item}

	require.NoError(t, c.ApplyCategoryDateFilter(context.Background(), "tech", "2024-05-01"))

	news := c.Snapshot().News
	assert.True(t, news.Visible)
	require.Len(t, news.Items, 1)
	assert.Equal(t, item, news.Items[0])
	assert.Empty(t, news.Placeholder)
}

func TestApplyCategoryDateFilter_Idempotent(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.news = []api.NewsItem{{Title: "a"}, {Title: "b"}}

	require.NoError(t, c.ApplyCategoryDateFilter(context.Background(), "tech", "2024-05-01"))
	first := c.Snapshot().News
	require.NoError(t, c.ApplyCategoryDateFilter(context.Background(), "tech", "2024-05-01"))

	assert.Equal(t, first, c.Snapshot().News, "replace, never append")
}

func TestApplyCategoryDateFilter_TransportError(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.setErr("filter", errBackendDown)

	err := c.ApplyCategoryDateFilter(context.Background(), "tech", "2024-05-01")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, c.Labels().LoadFailed, c.Snapshot().Status)
}

func TestLoadNewsForDate_ClearsThenFills(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.news = []api.NewsItem{{Title: "old"}}
	require.NoError(t, c.ApplyCategoryDateFilter(context.Background(), "tech", "2024-05-01"))

	gate := fake.gate("by-date")
	done := make(chan error, 1)
	go func() { done <- c.LoadNewsForDate(context.Background(), "2024-05-02") }()

	require.Eventually(t, func() bool { return fake.count("by-date") == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, c.Snapshot().News.Items, "region cleared before the request returns")

	fake.news = nil
	close(gate)
	require.NoError(t, <-done)

	news := c.Snapshot().News
	assert.True(t, news.Visible)
	assert.Equal(t, "No data", news.Placeholder)
}

func TestLoadDay_ChartFailureStillLoadsNews(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.setErr("daily", errBackendDown)
	fake.news = []api.NewsItem{{Title: "x"}}

	err := c.LoadDay(context.Background(), "2024-05-01")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, fake.count("daily"))
	assert.Equal(t, 1, fake.count("by-date"))
	assert.Len(t, c.Snapshot().News.Items, 1)
	assert.Equal(t, 0, c.Charts().Live(chart.RegionDaily))
}

func TestLoadDay_EmptyDate(t *testing.T) {
	c, fake := newTestController(t, "")

	err := c.LoadDay(context.Background(), "")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, fake.total())
}
