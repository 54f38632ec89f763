package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsdash/internal/dashboard"
	"github.com/pders01/newsdash/internal/debuglog"
	"github.com/pders01/newsdash/internal/storage"
)

// stateChangedMsg tells the model to take a fresh controller snapshot.
type stateChangedMsg struct{}

// opDoneMsg reports the end of a controller operation started by a key.
type opDoneMsg struct {
	op     string
	search dashboard.SearchState
	err    error
}

type reportDoneMsg struct {
	status string
	gen    uint64
	err    error
}

// reportClearMsg fires when a report status has been shown long enough.
type reportClearMsg struct {
	gen uint64
}

type linkOpenedMsg struct {
	url string
	err error
}

type sessionSavedMsg struct {
	err error
}

// onChange runs on whatever goroutine changed the controller. It never
// blocks; one pending signal is enough to trigger a fresh snapshot.
func (a *App) onChange() {
	select {
	case a.changes <- struct{}{}:
	default:
	}
}

func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.changes:
			return stateChangedMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) initialLoad() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "initial", err: a.ctrl.InitialLoad(a.ctx)}
	}
}

func (a *App) applyFilter(category, date string) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "filter", err: a.ctrl.ApplyCategoryDateFilter(a.ctx, category, date)}
	}
}

func (a *App) loadDay(date string) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "day", err: a.ctrl.LoadDay(a.ctx, date)}
	}
}

func (a *App) toggleSearch(query, date string) tea.Cmd {
	return func() tea.Msg {
		state, err := a.ctrl.ToggleSearch(a.ctx, query, date)
		return opDoneMsg{op: "search", search: state, err: err}
	}
}

func (a *App) submitReport(date, email string) tea.Cmd {
	return func() tea.Msg {
		status, gen, err := a.ctrl.SubmitReport(a.ctx, date, email)
		return reportDoneMsg{status: status, gen: gen, err: err}
	}
}

// scheduleReportClear clears the status written by gen after the variant's
// delay. Variants without a delay keep the status.
func (a *App) scheduleReportClear(gen uint64) tea.Cmd {
	d := a.ctrl.Behavior().ReportClearAfter()
	if d <= 0 {
		return nil
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return reportClearMsg{gen: gen} })
}

func (a *App) sendChat(message, date, category string) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "chat", err: a.ctrl.SendChatMessage(a.ctx, message, date, category)}
	}
}

func (a *App) retryChat(id int) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "chat", err: a.ctrl.RetryChat(a.ctx, id)}
	}
}

func (a *App) openLink(url string) tea.Cmd {
	return func() tea.Msg {
		return linkOpenedMsg{url: url, err: a.opener.Open(url)}
	}
}

// saveSession stores the current form inputs and transcript. Values are
// captured before the command runs.
func (a *App) saveSession() tea.Cmd {
	if a.store == nil {
		return nil
	}
	prefs := a.currentPrefs()
	entries := toStored(a.ctrl.Snapshot().Transcript)
	limit := a.config.Database.TranscriptLimit
	store := a.store

	return func() tea.Msg {
		if err := retryOperation(func() error { return store.SavePrefs(prefs) }); err != nil {
			return sessionSavedMsg{err: wrapErr("saving inputs", err)}
		}
		if err := retryOperation(func() error { return store.SaveTranscript(entries, limit) }); err != nil {
			return sessionSavedMsg{err: wrapErr("saving chat", err)}
		}
		return sessionSavedMsg{}
	}
}

func (a *App) currentPrefs() *storage.Prefs {
	return &storage.Prefs{
		ChartDate:    a.value(fieldDayDate),
		Category:     a.value(fieldCategory),
		FilterDate:   a.value(fieldFilterDate),
		ReportDate:   a.value(fieldReportDate),
		Email:        a.value(fieldReportEmail),
		SearchDate:   a.value(fieldSearchDate),
		ChatDate:     a.value(fieldChatDate),
		ChatCategory: a.value(fieldChatCategory),
	}
}

// restoreSession fills the inputs and transcript from the last session.
func (a *App) restoreSession() {
	if a.store == nil {
		return
	}

	prefs, err := a.store.GetPrefs()
	switch {
	case err == nil:
		for f, v := range map[field]string{
			fieldDayDate:      prefs.ChartDate,
			fieldCategory:     prefs.Category,
			fieldFilterDate:   prefs.FilterDate,
			fieldReportDate:   prefs.ReportDate,
			fieldReportEmail:  prefs.Email,
			fieldSearchDate:   prefs.SearchDate,
			fieldChatDate:     prefs.ChatDate,
			fieldChatCategory: prefs.ChatCategory,
		} {
			a.inputs[f].SetValue(v)
		}
	case !errors.Is(err, storage.ErrNoPrefs):
		debuglog.Warnf("restoring inputs: %v", err)
	}

	entries, err := a.store.GetTranscript(a.config.Database.TranscriptLimit)
	if err != nil {
		debuglog.Warnf("restoring chat: %v", err)
		return
	}
	if len(entries) > 0 {
		a.ctrl.RestoreTranscript(fromStored(entries))
	}
}

func toStored(entries []dashboard.ChatEntry) []storage.ChatEntry {
	out := make([]storage.ChatEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, storage.ChatEntry{Exchange: e.Exchange, Role: string(e.Role), Text: e.Text})
	}
	return out
}

func fromStored(entries []storage.ChatEntry) []dashboard.ChatEntry {
	out := make([]dashboard.ChatEntry, 0, len(entries))
	for _, e := range entries {
		role := dashboard.ChatRole(e.Role)
		switch role {
		case dashboard.RoleUser, dashboard.RoleReply, dashboard.RoleError:
		default:
			continue
		}
		out = append(out, dashboard.ChatEntry{Exchange: e.Exchange, Role: role, Text: e.Text})
	}
	return out
}

// retryOperation retries a database operation up to 3 times with exponential backoff
func retryOperation(operation func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := operation(); err != nil {
			lastErr = err
			if i < maxRetries-1 {
				time.Sleep(baseDelay * time.Duration(1<<i))
			}
			continue
		}
		return nil
	}
	return lastErr
}
