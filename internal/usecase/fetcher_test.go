package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightsDashboard/internal/domain"
)

type repoFunc func(ctx context.Context, p domain.Predicate) ([]domain.Record, error)

func (f repoFunc) Find(ctx context.Context, p domain.Predicate) ([]domain.Record, error) {
	return f(ctx, p)
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{Published: "January, 20 2017", Intensity: 6, Region: "Asia", Sector: "Energy", Country: "India"},
		{Published: "January, 21 2017", Intensity: 2, Region: "Europe", Sector: "Energy"},
		{Published: "January, 22 2017", Intensity: 9, Region: "Asia", Sector: "Retail", Country: "Japan"},
	}
}

// matchingRepo filters sampleRecords in memory, counting calls.
func matchingRepo(calls *int) repoFunc {
	return func(_ context.Context, p domain.Predicate) ([]domain.Record, error) {
		*calls++
		var out []domain.Record
		for _, r := range sampleRecords() {
			if p.Matches(r) {
				out = append(out, r)
			}
		}
		return out, nil
	}
}

func TestFetchReturnsEmptySliceOnNoMatches(t *testing.T) {
	t.Parallel()

	calls := 0
	f := NewFetcher(matchingRepo(&calls), nil)

	records, err := f.Fetch(context.Background(), domain.Predicate{domain.FieldRegion: domain.TextMatcher("Mars")})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, 1, calls)
}

func TestFetchDoesNotCache(t *testing.T) {
	t.Parallel()

	calls := 0
	f := NewFetcher(matchingRepo(&calls), nil)

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), domain.Predicate{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestSnapshotKeepsFirstSuccessfulResult(t *testing.T) {
	t.Parallel()

	calls := 0
	f := NewFetcher(matchingRepo(&calls), nil)
	assert.False(t, f.Captured())

	all, err := f.Fetch(context.Background(), domain.Predicate{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	for _, region := range []string{"Asia", "Europe", "Asia"} {
		_, err := f.Fetch(context.Background(), domain.Predicate{domain.FieldRegion: domain.TextMatcher(region)})
		require.NoError(t, err)
	}

	assert.True(t, f.Captured())
	assert.Equal(t, all, f.Snapshot())

	snap := f.Snapshot()
	snap[0].Region = "changed"
	assert.Equal(t, "Asia", f.Snapshot()[0].Region)

	options := f.Options()
	assert.Equal(t, []string{"Asia", "Europe"}, options[domain.FieldRegion])
	assert.Equal(t, []string{"Energy", "Retail"}, options[domain.FieldSector])
	assert.Equal(t, []string{"India", "Japan"}, options[domain.FieldCountry])
	assert.Empty(t, options[domain.FieldEndYear])
}

func TestPrimeFetchesOnlyOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	f := NewFetcher(matchingRepo(&calls), nil)

	require.NoError(t, f.Prime(context.Background()))
	require.NoError(t, f.Prime(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Len(t, f.Snapshot(), 3)
}

func TestFetchWrapsRepositoryErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	f := NewFetcher(repoFunc(func(context.Context, domain.Predicate) ([]domain.Record, error) {
		return nil, boom
	}), nil)

	_, err := f.Fetch(context.Background(), domain.Predicate{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Empty(t, fetchErr.Predicate)
	assert.False(t, f.Captured())
}

func TestFetchReportsCancellation(t *testing.T) {
	t.Parallel()

	f := NewFetcher(repoFunc(func(ctx context.Context, _ domain.Predicate) ([]domain.Record, error) {
		<-ctx.Done()
		return nil, errors.New("aborted")
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, domain.Predicate{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrFetchFailed)
}

func TestFetchWithoutRepository(t *testing.T) {
	t.Parallel()

	_, err := NewFetcher(nil, nil).Fetch(context.Background(), domain.Predicate{})
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestQueryLeavesNoSnapshot(t *testing.T) {
	t.Parallel()

	calls := 0
	repo := matchingRepo(&calls)

	records, err := Query(context.Background(), repo, domain.Predicate{domain.FieldRegion: domain.TextMatcher("Mars")})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	records, err = Query(context.Background(), repo, domain.Predicate{domain.FieldRegion: domain.TextMatcher("Asia")})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, calls)

	_, err = Query(context.Background(), nil, domain.Predicate{})
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestDistinctValuesSkipsBlanks(t *testing.T) {
	t.Parallel()

	year := 2025
	records := []domain.Record{
		{EndYear: &year, Topic: "oil"},
		{Topic: ""},
		{EndYear: &year, Topic: "gas"},
		{Topic: "oil"},
	}

	got := DistinctValues(records, []domain.Field{domain.FieldEndYear, domain.FieldTopic, domain.FieldSource})
	assert.Equal(t, []string{"2025"}, got[domain.FieldEndYear])
	assert.Equal(t, []string{"oil", "gas"}, got[domain.FieldTopic])
	assert.Equal(t, []string{}, got[domain.FieldSource])
}
