package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdash/internal/api"
)

func TestSubmitReport_Success(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.report = &api.ReportResult{Message: "Report sent!"}

	status, gen, err := c.SubmitReport(context.Background(), "2024-05-01", "reader@example.org")
	require.NoError(t, err)

	assert.Equal(t, "Report sent!", status)
	s := c.Snapshot()
	assert.False(t, s.ReportBusy)
	assert.Equal(t, ReportRegion{Status: "Report sent!", Gen: gen}, s.Report)
}

func TestSubmitReport_BusyDuringRequest(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.report = &api.ReportResult{Message: "ok"}
	gate := fake.gate("report")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = c.SubmitReport(context.Background(), "2024-05-01", "reader@example.org")
	}()

	require.Eventually(t, func() bool { return c.Snapshot().ReportBusy }, time.Second, time.Millisecond)
	close(gate)
	<-done
	assert.False(t, c.Snapshot().ReportBusy)
}

func TestSubmitReport_ServerMessageOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{"no data 404", &api.StatusError{Code: 404, Message: "No data for this date."}, "No data for this date."},
		{"exception 500", &api.StatusError{Code: 500, Message: "smtp timeout"}, "smtp timeout"},
		{"bare 502", &api.StatusError{Code: 502}, "Could not send the report"},
		{"transport", errBackendDown, "Could not send the report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestController(t, "")
			fake.setErr("report", tt.err)

			status, _, err := c.SubmitReport(context.Background(), "2024-05-01", "reader@example.org")

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.status, status)
			s := c.Snapshot()
			assert.False(t, s.ReportBusy, "busy flag cleared on failure")
			assert.Equal(t, tt.status, s.Report.Status)
		})
	}
}

func TestClearReportStatus_Generation(t *testing.T) {
	c, fake := newTestController(t, "")
	fake.report = &api.ReportResult{Message: "first"}
	_, firstGen, err := c.SubmitReport(context.Background(), "2024-05-01", "a@example.org")
	require.NoError(t, err)

	fake.report = &api.ReportResult{Message: "second"}
	_, secondGen, err := c.SubmitReport(context.Background(), "2024-05-02", "a@example.org")
	require.NoError(t, err)

	assert.False(t, c.ClearReportStatus(firstGen), "an old timer must not clear a newer status")
	assert.Equal(t, "second", c.Snapshot().Report.Status)

	assert.True(t, c.ClearReportStatus(secondGen))
	assert.Empty(t, c.Snapshot().Report.Status)
	assert.False(t, c.ClearReportStatus(secondGen))
}
