package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/browser"
	"github.com/pders01/newsdash/internal/chart"
	"github.com/pders01/newsdash/internal/config"
	"github.com/pders01/newsdash/internal/dashboard"
	"github.com/pders01/newsdash/internal/debuglog"
	"github.com/pders01/newsdash/internal/storage"
)

const (
	transcriptHeight = 8
	maxVisibleCards  = 5
)

type App struct {
	config     *config.Config
	ctrl       *dashboard.Controller
	store      *storage.Store
	opener     *browser.Opener
	keyHandler *KeyHandler

	ctx     context.Context
	cancel  context.CancelFunc
	changes chan struct{}

	inputs     []textinput.Model
	focus      field
	spinner    spinner.Model
	spinning   bool
	transcript viewport.Model
	help       help.Model

	snap     dashboard.Snapshot
	selected int
	pending  int

	width  int
	height int

	statusMsg  string
	statusKind StatusKind
	statusSeq  int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// card is one entry of the selectable card list. Query is set for search
// results so matches can be highlighted.
type card struct {
	item  api.NewsItem
	query string
}

// NewApp wires the model to ctrl. store may be nil, in which case nothing
// is persisted.
func NewApp(ctrl *dashboard.Controller, store *storage.Store, cfg *config.Config) *App {
	ApplyTheme(cfg.UI.Colors)

	inputs := make([]textinput.Model, fieldCount)
	for f := field(0); f < fieldCount; f++ {
		spec := fieldSpecs[f]
		ti := textinput.New()
		ti.Prompt = spec.label + ": "
		ti.Placeholder = spec.placeholder
		ti.CharLimit = spec.charLimit
		ti.PromptStyle = lipgloss.NewStyle().Foreground(MutedColor)
		inputs[f] = ti
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(AccentColor)),
	)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:     cfg,
		ctrl:       ctrl,
		store:      store,
		opener:     browser.New(cfg.UI.Opener),
		ctx:        ctx,
		cancel:     cancel,
		changes:    make(chan struct{}, 1),
		inputs:     inputs,
		spinner:    sp,
		transcript: viewport.New(80, transcriptHeight),
		help:       help.New(),
		width:      100,
		height:     40,
	}
	app.keyHandler = NewKeyHandler(app)
	app.focusField(fieldCategory)

	app.restoreSession()
	ctrl.SetOnChange(app.onChange)
	app.refresh()

	return app
}

func (a *App) Init() tea.Cmd {
	a.pending++
	return tea.Batch(
		a.waitForChange(),
		a.initialLoad(),
		a.startSpinner(),
		textinput.Blink,
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.transcript.Width = msg.Width - 4
		a.transcript.Height = transcriptHeight
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case stateChangedMsg:
		a.refresh()
		cmds := []tea.Cmd{a.waitForChange()}
		if a.busy() {
			cmds = append(cmds, a.startSpinner())
		}
		return a, tea.Batch(cmds...)

	case opDoneMsg:
		return a, a.finishOp(msg)

	case reportDoneMsg:
		a.refresh()
		if superseded(msg.err) {
			return a, nil
		}
		return a, tea.Batch(a.scheduleReportClear(msg.gen), a.saveSession())

	case reportClearMsg:
		a.ctrl.ClearReportStatus(msg.gen)
		a.refresh()
		return a, nil

	case linkOpenedMsg:
		if msg.err != nil {
			return a, a.setStatus(msg.err.Error(), kindOf(msg.err), 5*time.Second)
		}
		return a, a.setStatus("Opened "+truncateMiddle(msg.url, 60), kindOf(nil), 3*time.Second)

	case sessionSavedMsg:
		if msg.err != nil {
			debuglog.Warnf("%v", msg.err)
			return a, a.setStatus(msg.err.Error(), StatusWarn, 5*time.Second)
		}
		return a, nil

	case statusClearMsg:
		a.clearStatus(msg.seq)
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	return a, cmd
}

// finishOp updates the status line once an operation has returned. Failures
// the controller already shows are not repeated.
func (a *App) finishOp(msg opDoneMsg) tea.Cmd {
	if msg.op != "chat" && a.pending > 0 {
		a.pending--
	}
	a.refresh()

	var status tea.Cmd
	switch {
	case msg.err != nil:
		if a.pending == 0 {
			a.statusMsg = ""
		}
		if dashboard.UserMessage(msg.err) == "" && !superseded(msg.err) {
			status = a.setStatus(msg.err.Error(), kindOf(msg.err), 3*time.Second)
		}
	case msg.op == "filter" || msg.op == "day":
		status = a.setStatus(MsgCardsCount(len(a.snap.News.Items)), StatusSuccess, 3*time.Second)
	case msg.op == "search" && msg.search == dashboard.SearchExpanded:
		status = a.setStatus(MsgResultsCount(len(a.snap.Search.Items)), StatusSuccess, 3*time.Second)
	default:
		if a.pending == 0 {
			a.statusMsg = ""
		}
	}

	if msg.op == "initial" || superseded(msg.err) {
		return status
	}
	return tea.Batch(status, a.saveSession())
}

// startOp marks a keyed operation in flight and shows label in the status bar.
func (a *App) startOp(label string) tea.Cmd {
	a.pending++
	return tea.Batch(a.setStatus(label, StatusInfo, 0), a.startSpinner())
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

func (a *App) busy() bool {
	return a.pending > 0 || a.snap.ReportBusy || a.snap.ChatBusy
}

// refresh copies the controller state and rebuilds derived views.
func (a *App) refresh() {
	a.snap = a.ctrl.Snapshot()

	if n := len(a.cards()); a.selected >= n {
		a.selected = n - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}

	chat := &a.inputs[fieldChatMessage]
	if a.snap.ChatDraft != "" {
		chat.Placeholder = a.snap.ChatDraft
	} else {
		chat.Placeholder = fieldSpecs[fieldChatMessage].placeholder
	}

	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
}

// cards lists search results first, then the news region.
func (a *App) cards() []card {
	var out []card
	if a.snap.Search.State == dashboard.SearchExpanded {
		for _, it := range a.snap.Search.Items {
			out = append(out, card{item: it, query: a.snap.Search.Query})
		}
	}
	if a.snap.News.Visible {
		for _, it := range a.snap.News.Items {
			out = append(out, card{item: it})
		}
	}
	return out
}

func (a *App) value(f field) string {
	return strings.TrimSpace(a.inputs[f].Value())
}

func (a *App) focusField(f field) tea.Cmd {
	f = (f%fieldCount + fieldCount) % fieldCount
	a.inputs[a.focus].Blur()
	a.focus = f
	return a.inputs[f].Focus()
}

// quit stops background waits and saves the session before exiting.
func (a *App) quit() tea.Cmd {
	save := a.saveSession()
	a.cancel()
	if save == nil {
		return tea.Quit
	}
	return tea.Sequence(save, tea.Quit)
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := a.transcript.Width - 8
	if wordWrapWidth > 120 {
		wordWrapWidth = 120
	}
	if wordWrapWidth < 20 {
		wordWrapWidth = 20
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// renderReply renders a chat reply as markdown, falling back to plain text.
func (a *App) renderReply(text string) string {
	r, err := a.getRenderer()
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n ")
}

func (a *App) renderTranscript() string {
	labels := a.ctrl.Labels()
	rows := make([]string, 0, len(a.snap.Transcript))
	for _, e := range a.snap.Transcript {
		switch e.Role {
		case dashboard.RoleUser:
			rows = append(rows, UserEntryStyle.Render(labels.UserPrefix)+" "+e.Text)
		case dashboard.RoleReply:
			rows = append(rows, ReplyEntryStyle.Render(labels.ReplyPrefix)+"\n"+a.renderReply(e.Text))
		case dashboard.RoleError:
			rows = append(rows, ErrorMessageStyle.Render(labels.ErrorPrefix+" "+e.Text))
		}
	}
	return strings.Join(rows, "\n")
}

func (a *App) View() string {
	var content string
	if a.snap.Alert != "" {
		content = renderCentered(a.width, a.height-3, renderAlert(a.snap.Alert, a.width))
	} else {
		content = ContentWrapper(a.width, a.height-3).Render(a.renderDashboard())
	}

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width-1, 0)))
	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.renderStatusBar())
}

func (a *App) renderDashboard() string {
	sections := []string{
		renderHeader(CompactLogo, fmt.Sprintf("variant: %s • %s", a.config.UI.Variant, a.config.API.BaseURL), a.width),
		a.renderCharts(),
	}
	if a.snap.Status != "" {
		sections = append(sections, ErrorMessageStyle.Render("✗ "+a.snap.Status))
	}
	sections = append(sections, a.renderPanels())
	if cards := a.renderCards(); cards != "" {
		sections = append(sections, cards)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) chartOptions(width int) chart.RenderOptions {
	return chart.RenderOptions{
		Width:      width,
		Height:     a.config.UI.Charts.Height,
		Color:      string(SeriesColor),
		LabelColor: string(MutedColor),
		NoData:     a.ctrl.Labels().NoData,
	}
}

func (a *App) renderCharts() string {
	if a.snap.Weekly == nil && !a.snap.DailyActive {
		return renderCentered(a.width, len(LogoLines)+3, GetWelcomeMessage())
	}

	var parts []string
	if a.snap.Weekly != nil {
		parts = append(parts, chart.Render(a.snap.Weekly, a.chartOptions(a.chartWidth())))
	}
	if a.snap.DailyActive && a.snap.Daily != nil {
		parts = append(parts, chart.Render(a.snap.Daily, a.chartOptions(a.chartWidth())))
	}
	if len(parts) == 2 && a.width >= 100 {
		return lipgloss.JoinHorizontal(lipgloss.Top, parts[0], "  ", parts[1])
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) chartWidth() int {
	if a.snap.Weekly != nil && a.snap.DailyActive && a.width >= 100 {
		return a.width/2 - 2
	}
	return a.width - 2
}

func (a *App) renderPanels() string {
	cols := 3
	if a.width < 90 {
		cols = 1
	}
	w := a.width / cols

	panel := func(p Panel, extra ...string) string {
		var rows []string
		for _, f := range panelFields(p) {
			rows = append(rows, a.inputs[f].View())
		}
		rows = append(rows, extra...)
		return renderPanel(p.String(), strings.Join(rows, "\n"), a.focus.panel() == p, w)
	}

	var searchExtra []string
	if a.snap.Search.Error != "" {
		searchExtra = append(searchExtra, StatusWarnStyle.Render(a.snap.Search.Error))
	}

	var reportExtra []string
	switch {
	case a.snap.ReportBusy:
		reportExtra = append(reportExtra, a.spinner.View()+" "+MsgSendingReport)
	case a.snap.Report.Status != "":
		reportExtra = append(reportExtra, StatusInfoStyle.Render(a.snap.Report.Status))
	}

	var chatExtra []string
	if a.snap.ChatBusy {
		chatExtra = append(chatExtra, a.spinner.View()+" "+MsgWaitingReply)
	}

	top := []string{panel(PanelFilter), panel(PanelDay), panel(PanelSearch, searchExtra...)}
	bottom := []string{panel(PanelReport, reportExtra...), panel(PanelChat, chatExtra...)}
	transcript := renderPanel("transcript", a.transcript.View(), false, a.width)

	if cols == 1 {
		return lipgloss.JoinVertical(lipgloss.Left, append(append(top, bottom...), transcript)...)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, top...),
		lipgloss.JoinHorizontal(lipgloss.Top, bottom...),
		transcript,
	)
}

func (a *App) renderCards() string {
	labels := a.ctrl.Labels()
	cards := a.cards()

	var rows []string
	if a.snap.Search.State == dashboard.SearchExpanded {
		rows = append(rows, renderHeader("› search: "+a.snap.Search.Query, MsgResultsCount(len(a.snap.Search.Items)), a.width))
	}
	if a.snap.News.Visible && len(a.snap.News.Items) == 0 {
		rows = append(rows, renderMuted(a.snap.News.Placeholder))
	}
	if len(cards) == 0 {
		return strings.Join(rows, "\n")
	}

	start := a.selected - maxVisibleCards/2
	if start > len(cards)-maxVisibleCards {
		start = len(cards) - maxVisibleCards
	}
	if start < 0 {
		start = 0
	}
	end := min(start+maxVisibleCards, len(cards))

	for i := start; i < end; i++ {
		rows = append(rows, a.renderCard(cards[i], i == a.selected, labels.ReadMore))
	}
	if end-start < len(cards) {
		rows = append(rows, renderMuted(fmt.Sprintf("%d/%d", a.selected+1, len(cards))))
	}
	return strings.Join(rows, "\n")
}

func (a *App) renderCard(c card, selected bool, readMore string) string {
	width := a.width - 4
	title := truncateEnd(oneLine(c.item.Title), width-2)
	desc := truncateEnd(oneLine(c.item.Description), min(a.config.UI.Cards.MaxDescriptionLength, width))

	marker := "  "
	titleStyle := CardTitleStyle
	if selected {
		marker = "▸ "
		titleStyle = SelectedItemStyle
	}

	lines := []string{marker + renderHighlighted(title, c.query, titleStyle)}
	if desc != "" {
		lines = append(lines, "  "+renderHighlighted(desc, c.query, StatusInfoStyle))
	}
	if c.item.URL != "" {
		link := readMore + ": " + truncateMiddle(c.item.URL, width-len(readMore)-4)
		lines = append(lines, "  "+renderMuted(link))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderStatusBar() string {
	left := a.renderStatus()
	if a.busy() && a.statusMsg != "" {
		left = a.spinner.View() + " " + left
	}
	if left == "" {
		left = a.help.View(a.keyHandler.keys)
	}
	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(MutedColor).
		Render(left)
}
