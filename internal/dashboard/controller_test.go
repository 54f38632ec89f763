package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/chart"
)

func TestNew_InitialState(t *testing.T) {
	c, _ := newTestController(t, "")

	s := c.Snapshot()
	assert.Nil(t, s.Weekly)
	assert.Nil(t, s.Daily)
	assert.False(t, s.DailyActive)
	assert.False(t, s.News.Visible)
	assert.Equal(t, SearchCollapsed, s.Search.State)
	assert.False(t, s.ReportBusy)
	assert.False(t, s.ChatBusy)
	assert.Empty(t, s.Transcript)
}

func TestInitialLoad_RendersWeeklyLine(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.weekly = api.Counts{{Label: "2024-04-29", Value: 4}, {Label: "2024-04-30", Value: 9}}

	require.NoError(t, c.InitialLoad(context.Background()))

	s := c.Snapshot()
	require.NotNil(t, s.Weekly)
	assert.Equal(t, chart.KindLine, s.Weekly.Kind())
	assert.Equal(t, chart.RegionWeekly, s.Weekly.Region())
	assert.Equal(t, []string{"2024-04-29", "2024-04-30"}, s.Weekly.Dataset().Labels)
	assert.Equal(t, "Number of news", s.Weekly.Dataset().Label)
	assert.Equal(t, 1, c.Charts().Live(chart.RegionWeekly))
}

func TestInitialLoad_FailureSurface(t *testing.T) {
	tests := []struct {
		variant    string
		wantStatus bool
	}{
		{"standard", false},
		{"classic", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			c, fake := newTestController(t, tt.variant)
			fake.setErr("weekly", errBackendDown)

			err := c.InitialLoad(context.Background())

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.ErrorIs(t, err, errBackendDown)

			s := c.Snapshot()
			assert.Nil(t, s.Weekly, "chart stays unrendered")
			if tt.wantStatus {
				assert.Equal(t, c.Labels().InitialLoadFailed, s.Status)
			} else {
				assert.Empty(t, s.Status)
			}
		})
	}
}

func TestRenderDailyChart_TwiceLeavesOneHandle(t *testing.T) {
	dates := []string{"2024-05-01", "2024-05-02", "1999-12-31"}

	for _, date := range dates {
		t.Run(date, func(t *testing.T) {
			c, fake := newTestController(t, "")
			fake.daily[date] = api.Counts{{Label: "tech", Value: 3}, {Label: "sport", Value: 1}}

			require.NoError(t, c.RenderDailyChart(context.Background(), date))
			first := c.Snapshot().Daily
			require.NoError(t, c.RenderDailyChart(context.Background(), date))
			second := c.Snapshot().Daily

			assert.Equal(t, 1, c.Charts().Live(chart.RegionDaily))
			assert.False(t, first.Live(), "previous handle must be released")
			assert.True(t, second.Live())
			assert.Equal(t, chart.KindBar, second.Kind())
			assert.Equal(t, "News for "+date, second.Dataset().Label)
			assert.True(t, c.Snapshot().DailyActive)
		})
	}
}

func TestRenderDailyChart_EmptyDate(t *testing.T) {
	c, fake := newTestController(t, "")

	err := c.RenderDailyChart(context.Background(), "  ")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, fake.total())
	assert.Equal(t, c.Labels().DateRequired, c.Snapshot().Alert)
}

func TestRenderDailyChart_StaleResponseDiscarded(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.daily["2024-05-01"] = api.Counts{{Label: "old", Value: 1}}
	fake.daily["2024-05-02"] = api.Counts{{Label: "new", Value: 2}}

	gate := fake.gate("daily")
	slow := make(chan error, 1)
	go func() {
		slow <- c.RenderDailyChart(context.Background(), "2024-05-01")
	}()

	require.Eventually(t, func() bool { return fake.count("daily") == 1 }, time.Second, time.Millisecond)

	fake.ungate("daily")
	require.NoError(t, c.RenderDailyChart(context.Background(), "2024-05-02"))
	close(gate)

	assert.ErrorIs(t, <-slow, ErrSuperseded)
	assert.Equal(t, 1, c.Charts().Live(chart.RegionDaily))
	assert.Equal(t, []string{"new"}, c.Snapshot().Daily.Dataset().Labels)
}

func TestRenderDailyChart_ConcurrentTriggers(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.daily["2024-05-01"] = api.Counts{{Label: "tech", Value: 1}}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.RenderDailyChart(context.Background(), "2024-05-01")
			if err != nil && !errors.Is(err, ErrSuperseded) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Charts().Live(chart.RegionDaily))
}

func TestRenderDailyChart_FailureKeepsPreviousChart(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.daily["2024-05-01"] = api.Counts{{Label: "tech", Value: 1}}
	require.NoError(t, c.RenderDailyChart(context.Background(), "2024-05-01"))
	before := c.Snapshot().Daily

	fake.setErr("daily", errBackendDown)
	err := c.RenderDailyChart(context.Background(), "2024-05-01")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Same(t, before, c.Snapshot().Daily)
	assert.True(t, before.Live())
	assert.Equal(t, c.Labels().LoadFailed, c.Snapshot().Status)
}

func TestOnChangeFires(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.weekly = api.Counts{{Label: "Mon", Value: 1}}

	var mu sync.Mutex
	calls := 0
	c.SetOnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
		_ = c.Snapshot()
	})

	require.NoError(t, c.InitialLoad(context.Background()))
	c.DismissAlert()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, calls, 2)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "need", UserMessage(&ValidationError{Field: "x", Message: "need"}))
	assert.Equal(t, "down", UserMessage(&TransportError{Op: "x", Message: "down", Err: errBackendDown}))
	assert.Equal(t, "none", UserMessage(&EmptyResultError{Op: "x", Message: "none"}))
	assert.Equal(t, "", UserMessage(errBackendDown))
	assert.Equal(t, "", UserMessage(nil))
}
