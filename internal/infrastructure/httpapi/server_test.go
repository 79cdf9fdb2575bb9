package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/infrastructure/storage"
	"InsightsDashboard/internal/query"
)

func intPtr(v int) *int { return &v }

func sampleRepo() *storage.MemoryRepository {
	return storage.NewMemoryRepository([]domain.Record{
		{EndYear: intPtr(2026), Published: "January, 20 2017", Intensity: 6, Region: "Asia", Sector: "Energy", Topic: "oil"},
		{Published: "January, 21 2017", Intensity: 2, Region: "Europe", Sector: "Retail", Topic: "gas"},
		{EndYear: intPtr(2030), Published: "January, 22 2017", Intensity: 9, Region: "Asia", Sector: "Energy", Topic: "gas"},
	})
}

type failingRepo struct{}

func (failingRepo) Find(context.Context, domain.Predicate) ([]domain.Record, error) {
	return nil, errors.New("database unavailable")
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeRecords(t *testing.T, rec *httptest.ResponseRecorder) []domain.Record {
	t.Helper()
	var records []domain.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	return records
}

func TestDataEndpointFilters(t *testing.T) {
	t.Parallel()

	h := NewServer(ServerOptions{Repository: sampleRepo()}).Handler()

	rec := get(t, h, "/api/data")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Len(t, decodeRecords(t, rec), 3)

	rec = get(t, h, "/api/data?region=Asia&topic=gas")
	require.Equal(t, http.StatusOK, rec.Code)
	records := decodeRecords(t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, 9, records[0].Intensity)

	rec = get(t, h, "/api/data?region%5Bvalue%5D=Europe&region%5Blabel%5D=Europe")
	assert.Len(t, decodeRecords(t, rec), 1)

	rec = get(t, h, "/api/data?end_year=2030-06-01T00:00:00Z&sector=")
	assert.Len(t, decodeRecords(t, rec), 1)
}

func TestDataEndpointEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	h := NewServer(ServerOptions{Repository: sampleRepo()}).Handler()

	rec := get(t, h, "/api/data?region=Mars")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = get(t, h, "/api/data?end_year=not-a-date")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = get(t, h, "/api/data?unknown=1")
	assert.Len(t, decodeRecords(t, rec), 3)
}

func TestDataEndpointRepositoryFailure(t *testing.T) {
	t.Parallel()

	h := NewServer(ServerOptions{Repository: failingRepo{}}).Handler()

	rec := get(t, h, "/api/data?region=Asia")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "database unavailable")
}

func TestOptionsEndpointUsesUnfilteredSnapshot(t *testing.T) {
	t.Parallel()

	h := NewServer(ServerOptions{Repository: sampleRepo()}).Handler()

	get(t, h, "/api/data?region=Europe")
	rec := get(t, h, "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var options map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &options))
	assert.Equal(t, []string{"Asia", "Europe"}, options["region"])
	assert.Equal(t, []string{"2026", "2030"}, options["end_year"])
	assert.Equal(t, []string{"oil", "gas"}, options["topic"])
}

func TestChartEndpoint(t *testing.T) {
	t.Parallel()

	h := NewServer(ServerOptions{Repository: sampleRepo()}).Handler()

	rec := get(t, h, "/api/chart?region=Asia")
	require.Equal(t, http.StatusOK, rec.Code)

	var view domain.ChartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, domain.ModePerRecord, view.Result.Mode)
	assert.Len(t, view.Result.Bars, 2)
	assert.Equal(t, 9.0, view.Result.Max)
	assert.Equal(t, 800, view.Layout.Width)
	assert.NotEmpty(t, view.Axes.Y.Ticks)

	rec = get(t, h, "/api/chart?mode=sum")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, domain.ModeSum, view.Result.Mode)

	rec = get(t, h, "/api/chart?mode=median")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartSVGEndpoint(t *testing.T) {
	t.Parallel()

	h := NewServer(ServerOptions{Repository: sampleRepo()}).Handler()

	rec := get(t, h, "/api/chart.svg?sector=Energy")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = get(t, h, "/api/chart.svg?region=Mars")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `width="800"`)
}

func TestRequestIDAndCORS(t *testing.T) {
	t.Parallel()

	h := NewServer(ServerOptions{Repository: sampleRepo()}).Handler()

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/data", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	h := NewServer(ServerOptions{Repository: sampleRepo(), RateLimit: 0.001, RateBurst: 1}).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestClientRoundTrip(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	api := NewServer(ServerOptions{
		Repository: sampleRepo(),
		Builder:    query.NewBuilder(nil, query.WithMultiValuePolicy(query.MultiValueAny)),
	}).Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		api.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", 0, nil)
	require.NoError(t, err)
	ctx := context.Background()

	records, err := client.Find(ctx, domain.Predicate{domain.FieldRegion: domain.TextMatcher("Asia")})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = client.Find(ctx, domain.Predicate{domain.FieldEndYear: domain.YearMatcher(2030)})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].EndYear)
	assert.Equal(t, 2030, *records[0].EndYear)

	records, err = client.Find(ctx, domain.Predicate{domain.FieldSector: domain.AnyMatcher("Retail", "Energy")})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = client.Find(ctx, domain.Predicate{domain.FieldRegion: domain.TextMatcher("Mars")})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	before := hits.Load()
	records, err = client.Find(ctx, domain.Predicate{domain.FieldEndYear: domain.InvalidMatcher(domain.ErrInvalidDateFilter)})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, before, hits.Load())

	options, err := client.Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Energy", "Retail"}, options[domain.FieldSector])
}

func TestClientSurfacesServerErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewServer(ServerOptions{Repository: failingRepo{}}).Handler())
	defer srv.Close()

	client, err := NewClient(srv.URL, 0, nil)
	require.NoError(t, err)

	_, err = client.Find(context.Background(), domain.Predicate{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestNewClientRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient("ftp://example.com", 0, nil)
	assert.Error(t, err)
	_, err = NewClient("://", 0, nil)
	assert.Error(t, err)
}
