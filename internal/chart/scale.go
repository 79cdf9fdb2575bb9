package chart

import (
	"math"
	"strconv"

	"InsightsDashboard/internal/domain"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Axes derives the band scale and the linear scale for result inside layout.
func Axes(result domain.AggregationResult, layout domain.Layout) domain.Axes {
	count := layout.Ticks
	if count <= 0 {
		count = 10
	}
	return domain.Axes{
		X: Band(result.Categories, float64(layout.InnerWidth()), layout.Padding),
		Y: domain.LinearScale{
			Domain: [2]float64{result.Min, result.Max},
			Range:  [2]float64{float64(layout.InnerHeight()), 0},
			Ticks:  Ticks(result.Min, result.Max, count),
		},
	}
}

// View bundles result, layout and axes.
func View(result domain.AggregationResult, layout domain.Layout) domain.ChartView {
	return domain.ChartView{Result: result, Layout: layout, Axes: Axes(result, layout)}
}

// Band lays out the distinct categories over width with equal inner and outer padding.
// Repeated categories share one band.
func Band(categories []string, width, padding float64) domain.BandScale {
	seen := map[string]bool{}
	domainValues := make([]string, 0, len(categories))
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			domainValues = append(domainValues, c)
		}
	}

	n := float64(len(domainValues))
	step := width / math.Max(1, n-padding+padding*2)
	start := (width - step*(n-padding)) * 0.5

	scale := domain.BandScale{
		Domain:    domainValues,
		Step:      step,
		Bandwidth: step * (1 - padding),
		Offsets:   make(map[string]float64, len(domainValues)),
	}
	for i, c := range domainValues {
		scale.Offsets[c] = start + step*float64(i)
	}
	return scale
}

// Ticks returns roughly count evenly spaced round values within [start, stop],
// stepping by 1, 2 or 5 times a power of ten.
func Ticks(start, stop float64, count int) []domain.Tick {
	if count <= 0 {
		return nil
	}
	if start == stop {
		return []domain.Tick{tick(start)}
	}

	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	i1, i2, inc := tickSpec(start, stop, float64(count))
	if i2 < i1 {
		return nil
	}

	ticks := make([]domain.Tick, 0, int(i2-i1)+1)
	for i := i1; i <= i2; i++ {
		var v float64
		if inc < 0 {
			v = i / -inc
		} else {
			v = i * inc
		}
		ticks = append(ticks, tick(v))
	}

	if reverse {
		for l, r := 0, len(ticks)-1; l < r; l, r = l+1, r-1 {
			ticks[l], ticks[r] = ticks[r], ticks[l]
		}
	}
	return ticks
}

func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		return i1, i2, -inc
	}

	inc = math.Pow(10, power) * factor
	i1 = math.Round(start / inc)
	i2 = math.Round(stop / inc)
	if i1*inc < start {
		i1++
	}
	if i2*inc > stop {
		i2--
	}
	return i1, i2, inc
}

func tick(v float64) domain.Tick {
	return domain.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)}
}
