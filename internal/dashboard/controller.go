// Package dashboard holds the view state of the news dashboard and the
// operations that change it. It knows nothing about terminals; the TUI reads
// snapshots and calls operations.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/chart"
	"github.com/pders01/newsdash/internal/config"
	"github.com/pders01/newsdash/internal/debuglog"
)

// API is the part of the backend client the controller uses.
type API interface {
	WeeklyCounts(ctx context.Context) (api.Counts, error)
	DailyCounts(ctx context.Context, date string) (api.Counts, error)
	NewsByCategoryAndDate(ctx context.Context, category, date string) ([]api.NewsItem, error)
	NewsByDate(ctx context.Context, date string) ([]api.NewsItem, error)
	Search(ctx context.Context, query, date string) ([]api.NewsItem, error)
	SendReport(ctx context.Context, date, email string) (*api.ReportResult, error)
	Chat(ctx context.Context, message, date, category string) (string, error)
}

// region keys the generation counters.
type region int

const (
	regionWeekly region = iota
	regionDaily
	regionNews
	regionSearch
	regionReport
)

// NewsRegion is the card list filled by the filter and the day trigger.
type NewsRegion struct {
	Visible     bool
	Items       []api.NewsItem
	Placeholder string
}

// ReportRegion is the status line under the report form. Gen identifies the
// submission that wrote Status.
type ReportRegion struct {
	Status string
	Gen    uint64
}

// Snapshot is a copy of the view state at one instant.
type Snapshot struct {
	Weekly      *chart.Handle
	Daily       *chart.Handle
	DailyActive bool
	News        NewsRegion
	Search      SearchRegion
	Report      ReportRegion
	ReportBusy  bool
	ChatBusy    bool
	Transcript  []ChatEntry
	ChatDraft   string
	Status      string
	Alert       string
}

// Controller owns every piece of mutable view state. All methods are safe for
// concurrent use; each operation reads state under the lock, calls the
// backend without it, and commits only if no newer trigger for the same
// region has started since.
type Controller struct {
	api     API
	variant config.Variant
	charts  *chart.Registry

	mu          sync.Mutex
	gens        map[region]uint64
	weekly      *chart.Handle
	daily       *chart.Handle
	dailyActive bool
	news        NewsRegion
	search      SearchRegion
	report      ReportRegion
	reportBusy  int
	chatBusy    int
	chat        chatState
	status      string
	alert       string
	onChange    func()
}

// New returns a controller with every region empty and search collapsed.
func New(client API, variant config.Variant) *Controller {
	return &Controller{
		api:     client,
		variant: variant,
		charts:  chart.NewRegistry(),
		gens:    make(map[region]uint64),
		search:  SearchRegion{State: SearchCollapsed},
		chat:    newChatState(),
	}
}

// Labels returns the copy strings of the active variant.
func (c *Controller) Labels() config.Labels { return c.variant.Labels }

// Behavior returns the behavior switches of the active variant.
func (c *Controller) Behavior() config.Behavior { return c.variant.Behavior }

// Charts exposes the handle registry.
func (c *Controller) Charts() *chart.Registry { return c.charts }

// SetOnChange registers fn to run after every state change. fn is called
// without the controller lock held and may call Snapshot.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Snapshot copies the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft := ""
	if c.chatBusy > 0 {
		draft = c.variant.Labels.ChatPending
	}

	return Snapshot{
		Weekly:      c.weekly,
		Daily:       c.daily,
		DailyActive: c.dailyActive,
		News: NewsRegion{
			Visible:     c.news.Visible,
			Items:       append([]api.NewsItem(nil), c.news.Items...),
			Placeholder: c.news.Placeholder,
		},
		Search: SearchRegion{
			State: c.search.State,
			Query: c.search.Query,
			Items: append([]api.NewsItem(nil), c.search.Items...),
			Error: c.search.Error,
		},
		Report:     c.report,
		ReportBusy: c.reportBusy > 0,
		ChatBusy:   c.chatBusy > 0,
		Transcript: append([]ChatEntry(nil), c.chat.entries...),
		ChatDraft:  draft,
		Status:     c.status,
		Alert:      c.alert,
	}
}

// begin starts a new generation for r. Callers hold c.mu.
func (c *Controller) begin(r region) uint64 {
	c.gens[r]++
	return c.gens[r]
}

// current reports whether gen is still the newest for r. Callers hold c.mu.
func (c *Controller) current(r region, gen uint64) bool {
	return c.gens[r] == gen
}

// busy increments counter and returns the matching release. Callers hold
// c.mu. The release takes the lock itself and is safe to call twice.
func (c *Controller) busy(counter *int) func() {
	*counter++
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			*counter--
			c.mu.Unlock()
			c.notify()
		})
	}
}

// DismissAlert clears the blocking validation message.
func (c *Controller) DismissAlert() {
	c.mu.Lock()
	c.alert = ""
	c.mu.Unlock()
	c.notify()
}

// ClearStatus clears the global status line.
func (c *Controller) ClearStatus() {
	c.mu.Lock()
	c.status = ""
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) setAlert(msg string) {
	c.mu.Lock()
	c.alert = msg
	c.mu.Unlock()
	c.notify()
}

// InitialLoad draws the weekly line chart.
func (c *Controller) InitialLoad(ctx context.Context) error {
	c.mu.Lock()
	gen := c.begin(regionWeekly)
	c.mu.Unlock()

	counts, err := c.api.WeeklyCounts(ctx)

	c.mu.Lock()
	if !c.current(regionWeekly, gen) {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		if c.variant.Behavior.InitialLoadErrors == config.SurfaceStatus {
			c.status = c.variant.Labels.InitialLoadFailed
		}
		c.mu.Unlock()
		debuglog.WithFields(map[string]any{"op": "initial_load"}).Warnf("weekly counts failed: %v", err)
		c.notify()
		return &TransportError{Op: "initial load", Message: c.variant.Labels.InitialLoadFailed, Err: err}
	}

	c.weekly.Release()
	c.weekly = c.charts.New(chart.RegionWeekly, chart.KindLine, chart.Dataset{
		Label:  c.variant.Labels.WeeklySeries,
		Labels: counts.Labels(),
		Values: counts.Values(),
	})
	c.mu.Unlock()
	c.notify()
	return nil
}

// RenderDailyChart replaces the daily bar chart with the counts for date.
// The old handle is released and the new one created under one lock, so the
// daily region never holds more than one live handle.
func (c *Controller) RenderDailyChart(ctx context.Context, date string) error {
	if isBlank(date) {
		c.setAlert(c.variant.Labels.DateRequired)
		return &ValidationError{Field: "date", Message: c.variant.Labels.DateRequired}
	}

	c.mu.Lock()
	gen := c.begin(regionDaily)
	c.mu.Unlock()

	counts, err := c.api.DailyCounts(ctx, date)

	c.mu.Lock()
	if !c.current(regionDaily, gen) {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		c.status = c.variant.Labels.LoadFailed
		c.mu.Unlock()
		debuglog.WithFields(map[string]any{"op": "daily_chart", "date": date}).Warnf("daily counts failed: %v", err)
		c.notify()
		return &TransportError{Op: "daily chart", Message: c.variant.Labels.LoadFailed, Err: err}
	}

	c.daily.Release()
	c.daily = c.charts.New(chart.RegionDaily, chart.KindBar, chart.Dataset{
		Label:  dailyLabel(c.variant.Labels.DailySeries, date),
		Labels: counts.Labels(),
		Values: counts.Values(),
	})
	c.dailyActive = true
	c.mu.Unlock()
	c.notify()
	return nil
}

func dailyLabel(format, date string) string {
	if !strings.Contains(format, "%s") {
		return strings.TrimSpace(format + " " + date)
	}
	return fmt.Sprintf(format, date)
}
