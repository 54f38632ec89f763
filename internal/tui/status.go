package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingWeek   = "Loading week…"
	MsgLoadingDay    = "Loading day…"
	MsgFiltering     = "Filtering…"
	MsgSearching     = "Searching…"
	MsgSendingReport = "Sending report…"
	MsgWaitingReply  = "Waiting for reply…"
	MsgOpeningLink   = "Opening link…"
	MsgNoCard        = "No card selected"
	MsgNoRetry       = "Nothing to retry"
	MsgChatCleared   = "Chat cleared"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgCardsCount(n int) string {
	if n == 1 {
		return "1 news item"
	}
	return fmt.Sprintf("%d news items", n)
}

// statusClearMsg clears the status line if nothing newer replaced it.
type statusClearMsg struct {
	seq int
}

// setStatus shows msg in the status bar. A positive ttl clears it again.
func (a *App) setStatus(msg string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.statusSeq++
	a.statusMsg = msg
	a.statusKind = kind
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (a *App) clearStatus(seq int) {
	if seq == a.statusSeq {
		a.statusMsg = ""
		a.statusKind = StatusInfo
	}
}

func (a *App) renderStatus() string {
	if a.statusMsg == "" {
		return ""
	}
	switch a.statusKind {
	case StatusSuccess:
		return StatusSuccessStyle.Render("✓ " + a.statusMsg)
	case StatusWarn:
		return StatusWarnStyle.Render("! " + a.statusMsg)
	case StatusError:
		return StatusErrorStyle.Render("✗ " + a.statusMsg)
	default:
		return StatusInfoStyle.Render(a.statusMsg)
	}
}
