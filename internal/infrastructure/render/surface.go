package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	charts "InsightsDashboard/internal/chart"
	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/ports"
)

// Format is the encoding of a rendered chart.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// BarColor is the translucent teal used for every bar.
var BarColor = drawing.Color{R: 75, G: 192, B: 192, A: 102}

// ParseFormat accepts "svg" and "png"; empty means svg.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown chart format %q", name)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Write draws result into w. An empty result yields a blank frame of the layout size.
func Write(w io.Writer, format Format, result domain.AggregationResult, layout domain.Layout) error {
	if result.Empty() {
		return writeBlank(w, format, layout)
	}

	provider := chart.SVG
	if format == FormatPNG {
		provider = chart.PNG
	}

	graph := BarChart(result, layout)
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// BarChart maps the aggregation onto a go-chart bar chart. Bars of a repeated category
// share one band, so only the tallest of them is visible and only that one is drawn.
func BarChart(result domain.AggregationResult, layout domain.Layout) chart.BarChart {
	axes := charts.Axes(result, layout)

	tallest := make(map[string]float64, len(axes.X.Domain))
	for _, bar := range result.Bars {
		if v, ok := tallest[bar.Category]; !ok || bar.Value > v {
			tallest[bar.Category] = bar.Value
		}
	}

	style := chart.Style{FillColor: BarColor, StrokeColor: BarColor, StrokeWidth: 1}
	bars := make([]chart.Value, 0, len(axes.X.Domain))
	for _, category := range axes.X.Domain {
		bars = append(bars, chart.Value{Label: category, Value: tallest[category], Style: style})
	}

	lo, hi := result.Min, result.Max
	ticks := axes.Y.Ticks
	if hi <= lo {
		hi = lo + 1
		ticks = charts.Ticks(lo, hi, layout.Ticks)
	}
	yTicks := make([]chart.Tick, 0, len(ticks))
	for _, t := range ticks {
		yTicks = append(yTicks, chart.Tick{Value: t.Value, Label: t.Label})
	}

	return chart.BarChart{
		Width:  layout.Width,
		Height: layout.Height,
		Background: chart.Style{Padding: chart.Box{
			Top:    layout.Margins.Top,
			Left:   layout.Margins.Left,
			Right:  layout.Margins.Right,
			Bottom: layout.Margins.Bottom,
		}},
		BarWidth:   int(math.Max(1, math.Round(axes.X.Bandwidth))),
		BarSpacing: int(math.Max(0, math.Round(axes.X.Step-axes.X.Bandwidth))),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks: yTicks,
		},
		Bars: bars,
	}
}

func writeBlank(w io.Writer, format Format, layout domain.Layout) error {
	if format == FormatPNG {
		img := image.NewNRGBA(image.Rect(0, 0, layout.Width, layout.Height))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		return png.Encode(w, img)
	}

	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"></svg>`, layout.Width, layout.Height)
	return err
}

// Surface renders every result to a writer.
type Surface struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
}

var _ ports.ChartSurface = (*Surface)(nil)

// NewSurface wraps w.
func NewSurface(w io.Writer, format Format) *Surface {
	return &Surface{w: w, format: format}
}

func (s *Surface) Render(ctx context.Context, result domain.AggregationResult, layout domain.Layout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Write(s.w, s.format, result, layout)
}

// FileSurface replaces the file at Path with each new render.
type FileSurface struct {
	Path   string
	Format Format

	mu sync.Mutex
}

var _ ports.ChartSurface = (*FileSurface)(nil)

// NewFileSurface picks the format from the path extension.
func NewFileSurface(path string) *FileSurface {
	format := FormatSVG
	if strings.EqualFold(filepath.Ext(path), ".png") {
		format = FormatPNG
	}
	return &FileSurface{Path: path, Format: format}
}

func (s *FileSurface) Render(ctx context.Context, result domain.AggregationResult, layout domain.Layout) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Write(&buf, s.Format, result, layout); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".chart-*")
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write chart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close chart file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace chart file: %w", err)
	}
	return nil
}
