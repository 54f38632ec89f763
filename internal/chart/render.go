package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// RenderOptions sizes and colors a terminal chart.
type RenderOptions struct {
	Width      int
	Height     int
	Color      string
	LabelColor string
	NoData     string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width < 20 {
		o.Width = 20
	}
	if o.Height < 3 {
		o.Height = 3
	}
	if o.Color == "" {
		o.Color = "#4F46E5"
	}
	if o.LabelColor == "" {
		o.LabelColor = "#94A3B8"
	}
	if o.NoData == "" {
		o.NoData = "No data"
	}
	return o
}

const (
	barRune   = '█'
	pointRune = '●'
	traceRune = '·'
)

// Render draws h as text. A nil handle renders nothing.
func Render(h *Handle, opts RenderOptions) string {
	if h == nil {
		return ""
	}
	opts = opts.withDefaults()
	data := h.data

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(opts.LabelColor))
	title := lipgloss.NewStyle().Bold(true).Render(data.Label)

	if data.Empty() {
		return lipgloss.JoinVertical(lipgloss.Left, title, muted.Render(opts.NoData))
	}

	var body string
	switch h.kind {
	case KindBar:
		body = renderBars(data, opts, muted)
	default:
		body = renderLine(data, opts, muted)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// renderBars draws one horizontal bar per label.
func renderBars(data Dataset, opts RenderOptions, muted lipgloss.Style) string {
	labelWidth := 0
	for _, l := range data.Labels {
		labelWidth = max(labelWidth, runewidth.StringWidth(l))
	}
	labelWidth = min(labelWidth, opts.Width/3)

	valueWidth := 0
	for _, v := range data.Values {
		valueWidth = max(valueWidth, len(formatValue(v)))
	}

	barSpace := max(opts.Width-labelWidth-valueWidth-2, 1)
	maxV := data.Max()
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(opts.Color))

	lines := make([]string, 0, len(data.Values))
	for i, v := range data.Values {
		label := ""
		if i < len(data.Labels) {
			label = data.Labels[i]
		}
		label = runewidth.FillRight(runewidth.Truncate(label, labelWidth, "…"), labelWidth)

		n := 0
		if maxV > 0 && v > 0 {
			n = max(int(math.Round(v/maxV*float64(barSpace))), 1)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			muted.Render(label),
			bar.Render(strings.Repeat(string(barRune), n))+strings.Repeat(" ", barSpace-n),
			formatValue(v)))
	}
	return strings.Join(lines, "\n")
}

// renderLine plots points on a grid and traces straight segments between them.
func renderLine(data Dataset, opts RenderOptions, muted lipgloss.Style) string {
	maxV := data.Max()
	axisWidth := len(formatValue(maxV))
	plotWidth := max(opts.Width-axisWidth-2, len(data.Values))
	rows := opts.Height

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", plotWidth))
	}

	col := func(i int) int {
		if len(data.Values) == 1 {
			return plotWidth / 2
		}
		return i * (plotWidth - 1) / (len(data.Values) - 1)
	}
	row := func(v float64) int {
		if maxV <= 0 {
			return rows - 1
		}
		r := rows - 1 - int(math.Round(v/maxV*float64(rows-1)))
		return min(max(r, 0), rows-1)
	}

	for i := 1; i < len(data.Values); i++ {
		x0, y0 := col(i-1), row(data.Values[i-1])
		x1, y1 := col(i), row(data.Values[i])
		for x := x0 + 1; x < x1; x++ {
			t := float64(x-x0) / float64(x1-x0)
			y := int(math.Round(float64(y0) + t*float64(y1-y0)))
			grid[y][x] = traceRune
		}
	}
	for i, v := range data.Values {
		grid[row(v)][col(i)] = pointRune
	}

	line := lipgloss.NewStyle().Foreground(lipgloss.Color(opts.Color))
	out := make([]string, 0, rows+2)
	for r := range grid {
		axis := strings.Repeat(" ", axisWidth)
		switch r {
		case 0:
			axis = fmt.Sprintf("%*s", axisWidth, formatValue(maxV))
		case rows - 1:
			axis = fmt.Sprintf("%*s", axisWidth, "0")
		}
		out = append(out, muted.Render(axis+" │")+line.Render(string(grid[r])))
	}
	out = append(out, muted.Render(strings.Repeat(" ", axisWidth)+" └"+strings.Repeat("─", plotWidth)))
	out = append(out, muted.Render(strings.Repeat(" ", axisWidth+2)+xLabels(data.Labels, plotWidth, col)))
	return strings.Join(out, "\n")
}

// xLabels places as many labels under their points as fit without overlap.
func xLabels(labels []string, width int, col func(int) int) string {
	buf := []rune(strings.Repeat(" ", width))
	next := 0
	for i, l := range labels {
		start := col(i)
		if start < next {
			continue
		}
		r := []rune(l)
		if start+len(r) > width {
			start = width - len(r)
			if start < next {
				continue
			}
		}
		if start < 0 {
			continue
		}
		copy(buf[start:], r)
		next = start + len(r) + 1
	}
	return strings.TrimRight(string(buf), " ")
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
