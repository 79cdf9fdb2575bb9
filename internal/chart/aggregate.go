// Package chart derives bar-chart data from a record set.
package chart

import (
	"fmt"

	"InsightsDashboard/internal/domain"
)

// Aggregate maps each record to one (published, intensity) bar. Categories keep
// duplicates in input order and the numeric domain is [0, max intensity].
func Aggregate(records []domain.Record) domain.AggregationResult {
	result := domain.AggregationResult{
		Mode:       domain.ModePerRecord,
		Bars:       make([]domain.Bar, 0, len(records)),
		Categories: make([]string, 0, len(records)),
	}

	for _, r := range records {
		value := float64(r.Intensity)
		result.Bars = append(result.Bars, domain.Bar{Category: r.Published, Value: value})
		result.Categories = append(result.Categories, r.Published)
		if value > result.Max {
			result.Max = value
		}
	}
	return result
}

// AggregateBy runs the requested mode. Sum and mean group by distinct published value
// in first-seen order.
func AggregateBy(records []domain.Record, mode domain.AggregationMode) (domain.AggregationResult, error) {
	switch mode {
	case "", domain.ModePerRecord:
		return Aggregate(records), nil
	case domain.ModeSum, domain.ModeMean:
		return grouped(records, mode), nil
	default:
		return domain.AggregationResult{}, fmt.Errorf("unknown aggregation mode %q", mode)
	}
}

// ParseMode validates a mode name; empty means per-record.
func ParseMode(name string) (domain.AggregationMode, error) {
	mode := domain.AggregationMode(name)
	switch mode {
	case "":
		return domain.ModePerRecord, nil
	case domain.ModePerRecord, domain.ModeSum, domain.ModeMean:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown aggregation mode %q", name)
	}
}

func grouped(records []domain.Record, mode domain.AggregationMode) domain.AggregationResult {
	sums := map[string]float64{}
	counts := map[string]int{}
	order := make([]string, 0)

	for _, r := range records {
		if _, seen := counts[r.Published]; !seen {
			order = append(order, r.Published)
		}
		sums[r.Published] += float64(r.Intensity)
		counts[r.Published]++
	}

	result := domain.AggregationResult{
		Mode:       mode,
		Bars:       make([]domain.Bar, 0, len(order)),
		Categories: make([]string, 0, len(order)),
	}
	for _, key := range order {
		value := sums[key]
		if mode == domain.ModeMean {
			value /= float64(counts[key])
		}
		result.Bars = append(result.Bars, domain.Bar{Category: key, Value: value})
		result.Categories = append(result.Categories, key)
		if value > result.Max {
			result.Max = value
		}
	}
	return result
}
