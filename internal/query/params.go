package query

import (
	"net/url"
	"sort"
	"strings"

	"InsightsDashboard/internal/domain"
)

const (
	valueSuffix = "[value]"
	labelSuffix = "[label]"
	arraySuffix = "[]"
)

// ParseValues reads query parameters into a filter state keyed by the raw UI keys.
// Repeated keys and "[]" keys become sets, "[value]" keys become {label, value} pairs,
// and blank values become the empty sentinel. reserved keys are skipped.
func ParseValues(values url.Values, reserved ...string) domain.FilterState {
	skip := map[string]bool{}
	for _, r := range reserved {
		skip[r] = true
	}

	state := map[string]domain.FilterValue{}
	for key, raw := range values {
		if skip[key] {
			continue
		}
		nonBlank := make([]string, 0, len(raw))
		for _, v := range raw {
			if strings.TrimSpace(v) != "" {
				nonBlank = append(nonBlank, v)
			}
		}

		switch {
		case len(nonBlank) == 0:
			state[key] = domain.Empty()
		case strings.HasSuffix(key, arraySuffix) || len(nonBlank) > 1:
			state[key] = domain.Set(nonBlank...)
		case strings.HasSuffix(key, valueSuffix):
			base := strings.TrimSuffix(key, valueSuffix)
			label := values.Get(base + labelSuffix)
			if label == "" {
				label = nonBlank[0]
			}
			state[key] = domain.Pair(label, nonBlank[0])
		default:
			state[key] = domain.Scalar(nonBlank[0])
		}
	}
	return domain.NewFilterState(state, 0)
}

// Encode renders a predicate as query parameters accepted by ParseValues and Build.
// Invalid clauses have no wire form; ok is false when the predicate holds one.
func Encode(p domain.Predicate) (url.Values, bool) {
	values := url.Values{}
	for _, field := range p.Fields() {
		m := p[field]
		switch m.Kind {
		case domain.MatchText, domain.MatchYear:
			values.Set(string(field), m.String())
		case domain.MatchAny:
			vals := append([]string(nil), m.Values...)
			sort.Strings(vals)
			values[string(field)+arraySuffix] = vals
		default:
			return nil, false
		}
	}
	return values, true
}
