package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/debuglog"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ApplyCategoryDateFilter replaces the news list with the items matching
// both category and date. Either input missing raises the alert and sends
// nothing.
func (c *Controller) ApplyCategoryDateFilter(ctx context.Context, category, date string) error {
	if isBlank(category) || isBlank(date) {
		field := "category"
		if !isBlank(category) {
			field = "date"
		}
		c.setAlert(c.variant.Labels.FilterRequired)
		return &ValidationError{Field: field, Message: c.variant.Labels.FilterRequired}
	}

	c.mu.Lock()
	gen := c.begin(regionNews)
	c.mu.Unlock()

	items, err := c.api.NewsByCategoryAndDate(ctx, category, date)
	return c.commitNews(gen, "filter", items, err, map[string]any{"category": category, "date": date})
}

// LoadNewsForDate clears the news list and fills it with every item
// published on date.
func (c *Controller) LoadNewsForDate(ctx context.Context, date string) error {
	if isBlank(date) {
		c.setAlert(c.variant.Labels.DateRequired)
		return &ValidationError{Field: "date", Message: c.variant.Labels.DateRequired}
	}

	c.mu.Lock()
	gen := c.begin(regionNews)
	c.news = NewsRegion{Visible: c.news.Visible}
	c.mu.Unlock()
	c.notify()

	items, err := c.api.NewsByDate(ctx, date)
	return c.commitNews(gen, "news by date", items, err, map[string]any{"date": date})
}

// LoadDay is the day trigger: the daily chart, then that day's news. A chart
// failure does not stop the news load.
func (c *Controller) LoadDay(ctx context.Context, date string) error {
	if isBlank(date) {
		c.setAlert(c.variant.Labels.DateRequired)
		return &ValidationError{Field: "date", Message: c.variant.Labels.DateRequired}
	}
	chartErr := c.RenderDailyChart(ctx, date)
	newsErr := c.LoadNewsForDate(ctx, date)
	return errors.Join(chartErr, newsErr)
}

func (c *Controller) commitNews(gen uint64, op string, items []api.NewsItem, err error, fields map[string]any) error {
	c.mu.Lock()
	if !c.current(regionNews, gen) {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		c.status = c.variant.Labels.LoadFailed
		c.mu.Unlock()
		fields["op"] = op
		debuglog.WithFields(fields).Warnf("news request failed: %v", err)
		c.notify()
		return &TransportError{Op: op, Message: c.variant.Labels.LoadFailed, Err: err}
	}

	region := NewsRegion{Visible: true, Items: append([]api.NewsItem(nil), items...)}
	if len(region.Items) == 0 {
		region.Placeholder = c.variant.Labels.NoData
	}
	c.news = region
	c.mu.Unlock()
	c.notify()
	return nil
}
