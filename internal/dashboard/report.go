package dashboard

import (
	"context"
	"errors"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/debuglog"
)

// SubmitReport posts one report request. The report busy flag is set for the
// duration of the call. The returned status is also written to the report
// region under the returned generation; pass that generation to
// ClearReportStatus to clear it later. Input checks are the caller's job.
func (c *Controller) SubmitReport(ctx context.Context, date, email string) (string, uint64, error) {
	c.mu.Lock()
	gen := c.begin(regionReport)
	release := c.busy(&c.reportBusy)
	c.mu.Unlock()
	defer release()
	c.notify()

	res, err := c.api.SendReport(ctx, date, email)

	status, result := c.reportOutcome(res, err)
	if err != nil {
		debuglog.WithFields(map[string]any{"op": "report", "date": date}).Warnf("report failed: %v", err)
	}

	c.mu.Lock()
	if c.current(regionReport, gen) {
		c.report = ReportRegion{Status: status, Gen: gen}
	} else {
		result = errors.Join(result, ErrSuperseded)
	}
	c.mu.Unlock()
	c.notify()

	return status, gen, result
}

// reportOutcome picks the text shown for a finished report request. The
// backend explains its own failures in the body, so that text wins.
func (c *Controller) reportOutcome(res *api.ReportResult, err error) (string, error) {
	if err != nil {
		status := c.variant.Labels.ReportFailed
		var se *api.StatusError
		if errors.As(err, &se) && se.Message != "" {
			status = se.Message
		}
		return status, &TransportError{Op: "report", Message: status, Err: err}
	}
	if res == nil || res.Text() == "" {
		return c.variant.Labels.ReportFailed, nil
	}
	return res.Text(), nil
}

// ClearReportStatus clears the report status if it was written by gen.
// It reports whether anything was cleared.
func (c *Controller) ClearReportStatus(gen uint64) bool {
	c.mu.Lock()
	if c.report.Gen != gen || c.report.Status == "" {
		c.mu.Unlock()
		return false
	}
	c.report = ReportRegion{Gen: gen}
	c.mu.Unlock()
	c.notify()
	return true
}
