package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightsDashboard/internal/domain"
)

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	result := Aggregate(nil)

	assert.True(t, result.Empty())
	assert.Empty(t, result.Categories)
	assert.Equal(t, 0.0, result.Min)
	assert.Equal(t, 0.0, result.Max)

	axes := Axes(result, domain.DefaultLayout())
	assert.Empty(t, axes.X.Domain)
	assert.Equal(t, [2]float64{0, 0}, axes.Y.Domain)
	assert.Equal(t, []domain.Tick{{Value: 0, Label: "0"}}, axes.Y.Ticks)
}

func TestAggregateKeepsOneBarPerRecord(t *testing.T) {
	t.Parallel()

	records := []domain.Record{
		{Published: "2020", Intensity: 5},
		{Published: "2020", Intensity: 9},
	}

	result := Aggregate(records)

	assert.Equal(t, []domain.Bar{{Category: "2020", Value: 5}, {Category: "2020", Value: 9}}, result.Bars)
	assert.Equal(t, []string{"2020", "2020"}, result.Categories)
	assert.Equal(t, 0.0, result.Min)
	assert.Equal(t, 9.0, result.Max)
}

func TestAggregateByGroupedModes(t *testing.T) {
	t.Parallel()

	records := []domain.Record{
		{Published: "January, 20 2017", Intensity: 6},
		{Published: "February, 01 2017", Intensity: 2},
		{Published: "January, 20 2017", Intensity: 10},
	}

	sum, err := AggregateBy(records, domain.ModeSum)
	require.NoError(t, err)
	assert.Equal(t, []domain.Bar{
		{Category: "January, 20 2017", Value: 16},
		{Category: "February, 01 2017", Value: 2},
	}, sum.Bars)
	assert.Equal(t, 16.0, sum.Max)

	mean, err := AggregateBy(records, domain.ModeMean)
	require.NoError(t, err)
	assert.Equal(t, 8.0, mean.Bars[0].Value)
	assert.Equal(t, 8.0, mean.Max)

	literal, err := AggregateBy(records, "")
	require.NoError(t, err)
	assert.Len(t, literal.Bars, 3)

	_, err = AggregateBy(records, "median")
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, domain.ModePerRecord, mode)

	mode, err = ParseMode("mean")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeMean, mode)

	_, err = ParseMode("avg")
	assert.Error(t, err)
}
