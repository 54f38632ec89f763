package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyDataset is returned when there is nothing to export.
var ErrEmptyDataset = errors.New("chart has no data")

// ExportOptions sizes and colors a PNG export.
type ExportOptions struct {
	Width  int
	Height int
	Color  string
}

func (o ExportOptions) withDefaults() ExportOptions {
	if o.Width <= 0 {
		o.Width = 1024
	}
	if o.Height <= 0 {
		o.Height = 480
	}
	if o.Color == "" {
		o.Color = "#4F46E5"
	}
	return o
}

// ExportPNG writes h as a PNG image to w.
func ExportPNG(w io.Writer, h *Handle, opts ExportOptions) error {
	if h == nil || h.data.Empty() {
		return ErrEmptyDataset
	}
	opts = opts.withDefaults()
	color := hexColor(opts.Color)

	var err error
	switch h.kind {
	case KindBar:
		err = barChart(h.data, opts, color).Render(gochart.PNG, w)
	default:
		err = lineChart(h.data, opts, color).Render(gochart.PNG, w)
	}
	if err != nil {
		return fmt.Errorf("rendering %s chart: %w", h.kind, err)
	}
	return nil
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

// yRange keeps the axis non-degenerate when every value is zero.
func yRange(data Dataset) *gochart.ContinuousRange {
	top := data.Max()
	if top <= 0 {
		top = 1
	}
	return &gochart.ContinuousRange{Min: 0, Max: math.Ceil(top * 1.1)}
}

func barChart(data Dataset, opts ExportOptions, color drawing.Color) gochart.BarChart {
	bars := make([]gochart.Value, len(data.Values))
	for i, v := range data.Values {
		label := ""
		if i < len(data.Labels) {
			label = data.Labels[i]
		}
		bars[i] = gochart.Value{
			Label: label,
			Value: v,
			Style: gochart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1},
		}
	}

	barWidth := max(opts.Width/(len(bars)*2+1), 4)
	return gochart.BarChart{
		Title:      data.Label,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis:      gochart.YAxis{Range: yRange(data)},
		Bars:       bars,
	}
}

func lineChart(data Dataset, opts ExportOptions, color drawing.Color) gochart.Chart {
	xs := make([]float64, len(data.Values))
	ticks := make([]gochart.Tick, len(data.Values))
	for i := range data.Values {
		xs[i] = float64(i)
		label := ""
		if i < len(data.Labels) {
			label = data.Labels[i]
		}
		ticks[i] = gochart.Tick{Value: float64(i), Label: label}
	}
	ys := data.Values

	// A single point has a zero-width x range; stretch it over two positions.
	xMax := float64(len(xs) - 1)
	if len(xs) == 1 {
		xs = []float64{0, 1}
		ys = []float64{ys[0], ys[0]}
		xMax = 1
	}

	return gochart.Chart{
		Title:      data.Label,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: gochart.XAxis{
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: 0, Max: xMax},
		},
		YAxis: gochart.YAxis{Range: yRange(data)},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    data.Label,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					DotColor:    color,
					DotWidth:    4,
				},
			},
		},
	}
}
