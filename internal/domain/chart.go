package domain

// AggregationMode selects how records become bars.
type AggregationMode string

const (
	// ModePerRecord draws one bar per record; repeated categories share an x position.
	ModePerRecord AggregationMode = "per_record"
	// ModeSum draws one bar per distinct category with summed intensity.
	ModeSum AggregationMode = "sum"
	// ModeMean draws one bar per distinct category with mean intensity.
	ModeMean AggregationMode = "mean"
)

// Bar is one (category, value) pair of the chart.
type Bar struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// AggregationResult holds everything needed to draw the bar chart.
type AggregationResult struct {
	Mode       AggregationMode `json:"mode"`
	Bars       []Bar           `json:"bars"`
	Categories []string        `json:"categories"`
	Min        float64         `json:"min"`
	Max        float64         `json:"max"`
}

// Empty reports whether there is nothing to draw.
func (a AggregationResult) Empty() bool {
	return len(a.Bars) == 0
}

// Margins is the chart inset in pixels.
type Margins struct {
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
	Left   int `json:"left" yaml:"left"`
}

// Layout is the fixed drawing frame handed to the chart surface.
type Layout struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Margins Margins `json:"margins"`
	Padding float64 `json:"padding"`
	Ticks   int     `json:"ticks"`
}

// DefaultLayout is the 800x400 frame of the dashboard.
func DefaultLayout() Layout {
	return Layout{
		Width:   800,
		Height:  400,
		Margins: Margins{Top: 20, Right: 30, Bottom: 30, Left: 40},
		Padding: 0.1,
		Ticks:   10,
	}
}

// InnerWidth is the plotting width inside the margins.
func (l Layout) InnerWidth() int {
	return l.Width - l.Margins.Left - l.Margins.Right
}

// InnerHeight is the plotting height inside the margins.
func (l Layout) InnerHeight() int {
	return l.Height - l.Margins.Top - l.Margins.Bottom
}

// Tick is one labelled axis position.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// BandScale maps distinct categories to x offsets.
type BandScale struct {
	Domain    []string           `json:"domain"`
	Step      float64            `json:"step"`
	Bandwidth float64            `json:"bandwidth"`
	Offsets   map[string]float64 `json:"offsets"`
}

// Position returns the x offset of category and whether it is in the domain.
func (b BandScale) Position(category string) (float64, bool) {
	x, ok := b.Offsets[category]
	return x, ok
}

// LinearScale maps the numeric domain to pixel heights.
type LinearScale struct {
	Domain [2]float64 `json:"domain"`
	Range  [2]float64 `json:"range"`
	Ticks  []Tick     `json:"ticks"`
}

// Scale converts v to a y pixel offset; a zero-width domain maps to the baseline.
func (s LinearScale) Scale(v float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	if d1 == d0 {
		return s.Range[0]
	}
	return s.Range[0] + (v-d0)/(d1-d0)*(s.Range[1]-s.Range[0])
}

// Axes carries the derived scale and tick data for a result.
type Axes struct {
	X BandScale   `json:"x"`
	Y LinearScale `json:"y"`
}

// ChartView bundles a result with its layout and axes for transport.
type ChartView struct {
	Result AggregationResult `json:"result"`
	Layout Layout            `json:"layout"`
	Axes   Axes              `json:"axes"`
}
