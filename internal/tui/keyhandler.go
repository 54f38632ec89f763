package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsdash/internal/validation"
)

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Enter      key.Binding
	Filter     key.Binding
	Day        key.Binding
	Search     key.Binding
	Report     key.Binding
	Retry      key.Binding
	Open       key.Binding
	ClearChat  key.Binding
	Up         key.Binding
	Down       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Dismiss    key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run panel")),
		Filter:     key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "filter")),
		Day:        key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "day")),
		Search:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "search")),
		Report:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "report")),
		Retry:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "retry chat")),
		Open:       key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open link")),
		ClearChat:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear chat")),
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev card")),
		Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next card")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll chat")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll chat")),
		Dismiss:    key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "dismiss")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Enter, k.Filter, k.Day, k.Search, k.Report, k.Open, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Enter, k.Up, k.Down},
		{k.Filter, k.Day, k.Search, k.Report},
		{k.Retry, k.ClearChat, k.ScrollUp, k.ScrollDown},
		{k.Open, k.Dismiss, k.Quit},
	}
}

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app, keys: defaultKeyMap()}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, kh.keys.Quit) {
		return kh.app, kh.app.quit()
	}

	// An open alert swallows every key until it is dismissed.
	if kh.app.snap.Alert != "" {
		if key.Matches(msg, kh.keys.Dismiss) {
			kh.app.ctrl.DismissAlert()
			kh.app.refresh()
		}
		return kh.app, nil
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToTextInput(msg)
}

// handleCustomKeys handles the dashboard's action keys
func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Next):
		return a, a.focusField(a.focus + 1), true
	case key.Matches(msg, kh.keys.Prev):
		return a, a.focusField(a.focus - 1), true
	case key.Matches(msg, kh.keys.Enter):
		return a, kh.trigger(a.focus.panel()), true
	case key.Matches(msg, kh.keys.Filter):
		return a, kh.trigger(PanelFilter), true
	case key.Matches(msg, kh.keys.Day):
		return a, kh.trigger(PanelDay), true
	case key.Matches(msg, kh.keys.Search):
		return a, kh.trigger(PanelSearch), true
	case key.Matches(msg, kh.keys.Report):
		return a, kh.trigger(PanelReport), true
	case key.Matches(msg, kh.keys.Retry):
		return a, kh.retryLastChat(), true
	case key.Matches(msg, kh.keys.Open):
		return a, kh.openSelected(), true
	case key.Matches(msg, kh.keys.ClearChat):
		a.ctrl.ClearTranscript()
		a.refresh()
		return a, tea.Batch(a.setStatus(MsgChatCleared, StatusInfo, 2*time.Second), a.saveSession()), true
	case key.Matches(msg, kh.keys.Up):
		if a.selected > 0 {
			a.selected--
		}
		return a, nil, true
	case key.Matches(msg, kh.keys.Down):
		if a.selected < len(a.cards())-1 {
			a.selected++
		}
		return a, nil, true
	case key.Matches(msg, kh.keys.ScrollUp):
		a.transcript.HalfPageUp()
		return a, nil, true
	case key.Matches(msg, kh.keys.ScrollDown):
		a.transcript.HalfPageDown()
		return a, nil, true
	}
	return a, nil, false
}

// delegateToTextInput passes the key to the focused input
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	return a, cmd
}

// trigger starts the operation behind panel p with the panel's current inputs.
func (kh *KeyHandler) trigger(p Panel) tea.Cmd {
	a := kh.app
	switch p {
	case PanelFilter:
		return tea.Batch(a.startOp(MsgFiltering), a.applyFilter(a.value(fieldCategory), a.value(fieldFilterDate)))

	case PanelDay:
		return tea.Batch(a.startOp(MsgLoadingDay), a.loadDay(a.value(fieldDayDate)))

	case PanelSearch:
		return tea.Batch(a.startOp(MsgSearching), a.toggleSearch(a.value(fieldSearchQuery), a.value(fieldSearchDate)))

	case PanelReport:
		date, err := validation.ValidateDate(a.value(fieldReportDate))
		if err != nil {
			return a.setStatus(wrapErr("report", err).Error(), StatusWarn, 3*time.Second)
		}
		email, err := validation.ValidateEmail(a.value(fieldReportEmail))
		if err != nil {
			return a.setStatus(wrapErr("report", err).Error(), StatusWarn, 3*time.Second)
		}
		return tea.Batch(a.startSpinner(), a.submitReport(date, email))

	case PanelChat:
		message := a.inputs[fieldChatMessage].Value()
		a.inputs[fieldChatMessage].Reset()
		return tea.Batch(a.startSpinner(), a.sendChat(message, a.value(fieldChatDate), a.value(fieldChatCategory)))
	}
	return nil
}

func (kh *KeyHandler) retryLastChat() tea.Cmd {
	id, ok := kh.app.ctrl.LastFailedExchange()
	if !ok {
		return kh.app.setStatus(MsgNoRetry, StatusInfo, 2*time.Second)
	}
	return tea.Batch(kh.app.startSpinner(), kh.app.retryChat(id))
}

// openSelected opens the selected card's link in the browser.
func (kh *KeyHandler) openSelected() tea.Cmd {
	cards := kh.app.cards()
	if len(cards) == 0 || cards[kh.app.selected].item.URL == "" {
		return kh.app.setStatus(MsgNoCard, StatusWarn, 2*time.Second)
	}
	url := cards[kh.app.selected].item.URL
	return tea.Batch(kh.app.setStatus(MsgOpeningLink, StatusInfo, 0), kh.app.openLink(url))
}
