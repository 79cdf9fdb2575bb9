package query

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/filter"
)

func TestBuildEmptyStateYieldsEmptyPredicate(t *testing.T) {
	t.Parallel()

	b := NewBuilder(nil)
	state := filter.NewModel(nil).Get()

	predicate := b.Build(state)

	assert.Empty(t, predicate)
	assert.True(t, predicate.Matches(domain.Record{Sector: "Energy"}))
}

func TestBuildSkipsEmptySentinels(t *testing.T) {
	t.Parallel()

	m := filter.NewModel(nil)
	m.Set("sector", domain.Scalar("Energy"))
	m.Set("topics", domain.Set())
	m.Set("region", domain.Empty())
	state := m.Set("pestle", domain.Scalar(""))

	predicate := NewBuilder(nil).Build(state)

	assert.Equal(t, domain.Predicate{domain.FieldSector: domain.TextMatcher("Energy")}, predicate)
}

func TestBuildEndYear(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value domain.FilterValue
		want  int
	}{
		{name: "plain year", value: domain.Scalar("2025"), want: 2025},
		{name: "iso timestamp", value: domain.Scalar("2030-01-01T00:00:00.000Z"), want: 2030},
		{name: "picker date", value: domain.Date(time.Date(2027, time.June, 3, 0, 0, 0, 0, time.UTC)), want: 2027},
		{name: "pair", value: domain.Pair("2040", "2040"), want: 2040},
		{name: "single element set", value: domain.Set("2019"), want: 2019},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state := filter.NewModel(nil).Set("end_year", tc.value)
			predicate := NewBuilder(nil).Build(state)

			assert.Equal(t, domain.Predicate{domain.FieldEndYear: domain.YearMatcher(tc.want)}, predicate)
		})
	}
}

func TestBuildEndYearInvalidDate(t *testing.T) {
	t.Parallel()

	state := filter.NewModel(nil).Set("end_year", domain.Scalar("not a date"))
	predicate := NewBuilder(nil).Build(state)

	matcher, ok := predicate[domain.FieldEndYear]
	require.True(t, ok, "invalid clause is kept so that nothing matches")
	assert.False(t, matcher.Valid())
	assert.True(t, errors.Is(matcher.Err, domain.ErrInvalidDateFilter))
	assert.False(t, predicate.Satisfiable())

	year := 2025
	assert.False(t, predicate.Matches(domain.Record{EndYear: &year}))
	assert.False(t, predicate.Matches(domain.Record{}))
}

func TestBuildPairUsesValueComponent(t *testing.T) {
	t.Parallel()

	state := filter.NewModel(nil).Set("sector", domain.Pair("X", "X"))
	predicate := NewBuilder(nil).Build(state)

	assert.Equal(t, domain.TextMatcher("X"), predicate[domain.FieldSector])
}

func TestBuildStripsAliasSuffixes(t *testing.T) {
	t.Parallel()

	m := filter.NewModel(nil)
	m.Set("region[value]", domain.Scalar("Asia"))
	m.Set("region[label]", domain.Scalar("Asia (label)"))
	m.Set("topics", domain.Set("oil"))
	state := m.Set("endYear", domain.Scalar("2022"))

	predicate := NewBuilder(nil).Build(state)

	assert.Equal(t, domain.Predicate{
		domain.FieldRegion:  domain.TextMatcher("Asia"),
		domain.FieldTopic:   domain.TextMatcher("oil"),
		domain.FieldEndYear: domain.YearMatcher(2022),
	}, predicate)
}

func TestBuildCanonicalKeyWinsOverAlias(t *testing.T) {
	t.Parallel()

	m := filter.NewModel(nil)
	m.Set("country[value]", domain.Scalar("India"))
	state := m.Set("country", domain.Scalar("Nigeria"))

	predicate := NewBuilder(nil).Build(state)

	assert.Equal(t, domain.TextMatcher("Nigeria"), predicate[domain.FieldCountry])
}

func TestBuildDropsUnknownKeys(t *testing.T) {
	t.Parallel()

	m := filter.NewModel(nil)
	m.Set("swot", domain.Scalar("strength"))
	state := m.Set("city", domain.Scalar("Lagos"))

	assert.Empty(t, NewBuilder(nil).Build(state))
}

func TestBuildMultiValue(t *testing.T) {
	t.Parallel()

	state := filter.NewModel(nil).Set("topic", domain.Set("oil", "gas"))

	scalar := NewBuilder(nil).Build(state)
	require.Contains(t, scalar, domain.FieldTopic)
	assert.True(t, errors.Is(scalar[domain.FieldTopic].Err, domain.ErrMultiValueUnsupported))
	assert.False(t, scalar.Matches(domain.Record{Topic: "oil"}))

	anyPred := NewBuilder(nil, WithMultiValuePolicy(MultiValueAny)).Build(state)
	assert.Equal(t, domain.AnyMatcher("oil", "gas"), anyPred[domain.FieldTopic])
	assert.True(t, anyPred.Matches(domain.Record{Topic: "gas"}))
	assert.False(t, anyPred.Matches(domain.Record{Topic: "coal"}))
}

func TestBuildIsIdempotent(t *testing.T) {
	t.Parallel()

	m := filter.NewModel(nil)
	m.Set("sector", domain.Pair("Energy", "Energy"))
	m.Set("end_year", domain.Scalar("garbage"))
	state := m.Set("topics", domain.Set("oil"))

	b := NewBuilder(nil)
	assert.Equal(t, b.Build(state), b.Build(state))
}

func TestParseValuesAndBuild(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("sector[value]=Energy&sector[label]=Energy+Sector&topic=oil&topic=gas&region=&mode=sum")
	require.NoError(t, err)

	state := ParseValues(values, "mode")

	pair := state.Get("sector[value]")
	assert.Equal(t, domain.KindPair, pair.Kind())
	assert.Equal(t, "Energy Sector", pair.Label())
	assert.Equal(t, []string{"oil", "gas"}, state.Get("topic").Values())
	assert.True(t, state.Get("region").IsEmpty())
	_, hasMode := state.Lookup("mode")
	assert.False(t, hasMode)

	predicate := NewBuilder(nil, WithMultiValuePolicy(MultiValueAny)).Build(state)
	assert.Equal(t, domain.TextMatcher("Energy"), predicate[domain.FieldSector])
	assert.Equal(t, domain.MatchAny, predicate[domain.FieldTopic].Kind)
	assert.NotContains(t, predicate, domain.FieldRegion)
}

func TestEncodeRoundTripsThroughBuilder(t *testing.T) {
	t.Parallel()

	original := domain.Predicate{
		domain.FieldSector:  domain.TextMatcher("Energy"),
		domain.FieldEndYear: domain.YearMatcher(2025),
		domain.FieldTopic:   domain.AnyMatcher("gas", "oil"),
	}

	values, ok := Encode(original)
	require.True(t, ok)
	assert.Equal(t, "2025", values.Get("end_year"))

	rebuilt := NewBuilder(nil, WithMultiValuePolicy(MultiValueAny)).Build(ParseValues(values))
	assert.Equal(t, original, rebuilt)

	_, ok = Encode(domain.Predicate{domain.FieldEndYear: domain.InvalidMatcher(domain.ErrInvalidDateFilter)})
	assert.False(t, ok)
}
