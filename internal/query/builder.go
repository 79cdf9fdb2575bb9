// Package query turns dashboard filter selections into repository predicates.
package query

import (
	"log/slog"
	"time"

	"InsightsDashboard/internal/domain"
)

// MultiValuePolicy decides how multi-select selections become clauses.
type MultiValuePolicy string

const (
	// MultiValueScalar keeps scalar equality only; a selection of several values matches nothing.
	MultiValueScalar MultiValuePolicy = "scalar"
	// MultiValueAny matches records equal to any selected value.
	MultiValueAny MultiValuePolicy = "any"
)

// Option configures a Builder.
type Option func(*Builder)

// WithMultiValuePolicy selects the multi-select handling.
func WithMultiValuePolicy(p MultiValuePolicy) Option {
	return func(b *Builder) {
		if p == MultiValueAny {
			b.policy = MultiValueAny
		}
	}
}

// WithLogger attaches a logger for dropped keys and unusable clauses.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// Builder converts filter state snapshots into predicates. It holds no mutable state.
type Builder struct {
	aliases *AliasTable
	policy  MultiValuePolicy
	logger  *slog.Logger
}

// NewBuilder creates a builder over a validated alias table; nil uses the built-in table.
func NewBuilder(aliases *AliasTable, opts ...Option) *Builder {
	if aliases == nil {
		aliases = MustAliasTable()
	}
	b := &Builder{aliases: aliases, policy: MultiValueScalar}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces a fresh predicate. Empty selections and unknown keys never appear in it,
// so an all-empty state yields an empty predicate that matches every record.
func (b *Builder) Build(state domain.FilterState) domain.Predicate {
	predicate := domain.Predicate{}
	owner := map[domain.Field]string{}

	for _, key := range state.Keys() {
		value := state.Get(key)
		if value.IsEmpty() {
			continue
		}

		field, ok := b.aliases.Resolve(key)
		if !ok {
			if !b.aliases.Known(key) {
				b.debug("drop unknown filter key", "key", key)
			}
			continue
		}

		// The plain field key wins over its aliases; otherwise the first key in order holds.
		if prev, taken := owner[field]; taken && (b.aliases.Canonical(prev) || !b.aliases.Canonical(key)) {
			continue
		}

		matcher := b.matcher(field, value)
		if !matcher.Valid() {
			b.debug("unusable filter clause", "key", key, "field", field, "error", matcher.Err)
		}
		predicate[field] = matcher
		owner[field] = key
	}

	return predicate
}

func (b *Builder) matcher(field domain.Field, value domain.FilterValue) domain.Matcher {
	if field == domain.FieldEndYear {
		return yearMatcher(value)
	}

	switch value.Kind() {
	case domain.KindSet:
		return b.setMatcher(value.Values())
	case domain.KindDate:
		return domain.TextMatcher(value.Time().UTC().Format("2006-01-02"))
	default:
		// scalars and {label, value} pairs both compare on the value component
		return domain.TextMatcher(value.Text())
	}
}

func (b *Builder) setMatcher(values []string) domain.Matcher {
	if len(values) == 1 {
		return domain.TextMatcher(values[0])
	}
	if b.policy == MultiValueAny {
		return domain.AnyMatcher(values...)
	}
	return domain.InvalidMatcher(domain.ErrMultiValueUnsupported)
}

func yearMatcher(value domain.FilterValue) domain.Matcher {
	var raw string
	switch value.Kind() {
	case domain.KindDate:
		return domain.YearMatcher(value.Time().In(time.UTC).Year())
	case domain.KindSet:
		values := value.Values()
		if len(values) != 1 {
			return domain.InvalidMatcher(domain.ErrMultiValueUnsupported)
		}
		raw = values[0]
	default:
		raw = value.Text()
	}

	year, err := ParseYear(raw)
	if err != nil {
		return domain.InvalidMatcher(err)
	}
	return domain.YearMatcher(year)
}

func (b *Builder) debug(msg string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}
