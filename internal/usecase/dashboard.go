package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"InsightsDashboard/internal/chart"
	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/filter"
	"InsightsDashboard/internal/ports"
	"InsightsDashboard/internal/query"
)

// State is the orchestrator lifecycle position.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// DashboardDeps wires the collaborators of a dashboard session.
type DashboardDeps struct {
	Repository ports.RecordRepository
	Surface    ports.ChartSurface
	Filters    *filter.Model
	Builder    *query.Builder
	Layout     domain.Layout
	Mode       domain.AggregationMode
	Logger     *slog.Logger
}

// View is an immutable copy of what the dashboard currently shows.
type View struct {
	State     State
	Filters   domain.FilterState
	Predicate domain.Predicate
	Records   []domain.Record
	Chart     domain.ChartView
	Err       error
	UpdatedAt time.Time
}

// Dashboard is the reactive glue: every filter change rebuilds the predicate,
// fetches, re-aggregates and renders. Only the latest issued cycle may apply its result.
type Dashboard struct {
	fetcher *Fetcher
	surface ports.ChartSurface
	filters *filter.Model
	builder *query.Builder
	layout  domain.Layout
	mode    domain.AggregationMode
	logger  *slog.Logger

	renderMu sync.Mutex

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	current    domain.FilterState
	predicate  domain.Predicate
	records    []domain.Record
	view       domain.ChartView
	lastErr    error
	updatedAt  time.Time
}

// NewDashboard constructs an idle dashboard; call Start to issue the initial fetch.
func NewDashboard(deps DashboardDeps) *Dashboard {
	filters := deps.Filters
	if filters == nil {
		filters = filter.NewModel(nil)
	}
	builder := deps.Builder
	if builder == nil {
		builder = query.NewBuilder(nil)
	}
	layout := deps.Layout
	if layout.Width == 0 || layout.Height == 0 {
		layout = domain.DefaultLayout()
	}
	mode := deps.Mode
	if mode == "" {
		mode = domain.ModePerRecord
	}

	d := &Dashboard{
		fetcher: NewFetcher(deps.Repository, deps.Logger),
		surface: deps.Surface,
		filters: filters,
		builder: builder,
		layout:  layout,
		mode:    mode,
		logger:  deps.Logger,
		state:   StateIdle,
		current: filters.Get(),
	}
	d.view = d.aggregate(nil)
	return d
}

// Start issues the implicit first fetch with the current (normally empty) filter state.
func (d *Dashboard) Start(ctx context.Context) <-chan struct{} {
	return d.issue(ctx, d.filters.Get)
}

// SetFilter changes one selection and starts a new cycle.
func (d *Dashboard) SetFilter(ctx context.Context, key string, value domain.FilterValue) <-chan struct{} {
	return d.issue(ctx, func() domain.FilterState { return d.filters.Set(key, value) })
}

// Reset clears every selection and starts a new cycle.
func (d *Dashboard) Reset(ctx context.Context) <-chan struct{} {
	return d.issue(ctx, d.filters.Reset)
}

// Refresh re-runs the current filter state against the repository.
func (d *Dashboard) Refresh(ctx context.Context) <-chan struct{} {
	return d.issue(ctx, d.filters.Get)
}

// Close cancels any in-flight fetch.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// View returns the current dashboard contents.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	records := make([]domain.Record, len(d.records))
	copy(records, d.records)
	return View{
		State:     d.state,
		Filters:   d.current,
		Predicate: d.predicate,
		Records:   records,
		Chart:     d.view,
		Err:       d.lastErr,
		UpdatedAt: d.updatedAt,
	}
}

// State returns the current lifecycle position.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Options returns the filter option lists derived from the unfiltered snapshot.
func (d *Dashboard) Options() map[domain.Field][]string {
	return d.fetcher.Options()
}

// Snapshot returns the records captured by the first successful fetch.
func (d *Dashboard) Snapshot() []domain.Record {
	return d.fetcher.Snapshot()
}

// issue starts a cycle for the state produced by next. next runs under mu so the
// order of filter revisions and the order of generations always agree.
func (d *Dashboard) issue(parent context.Context, next func() domain.FilterState) <-chan struct{} {
	done := make(chan struct{})

	d.mu.Lock()
	state := next()
	predicate := d.builder.Build(state)
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	d.generation++
	gen := d.generation
	d.cancel = cancel
	d.state = StateLoading
	d.current = state
	d.predicate = predicate
	d.mu.Unlock()

	cycle := uuid.NewString()
	d.debug("filter cycle issued", "cycle", cycle, "generation", gen, "revision", state.Revision(), "clauses", len(predicate))

	go func() {
		defer close(done)
		defer cancel()

		records, err := d.fetcher.Fetch(ctx, predicate)
		d.settle(ctx, cycle, gen, records, err)
	}()

	return done
}

func (d *Dashboard) settle(ctx context.Context, cycle string, gen uint64, records []domain.Record, err error) {
	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		d.debug("discard stale response", "cycle", cycle, "generation", gen)
		return
	}
	d.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// cancelled from outside (Close or parent context); keep the last data
			d.state = d.restingState()
			d.mu.Unlock()
			d.debug("cycle cancelled", "cycle", cycle, "error", err)
			return
		}
		d.state = StateError
		d.lastErr = err
		d.mu.Unlock()
		d.warn("fetch failed, keeping previous data", "cycle", cycle, "error", err)
		return
	}

	view := d.aggregate(records)
	d.records = records
	d.view = view
	d.lastErr = nil
	d.state = StateReady
	d.updatedAt = time.Now()
	d.mu.Unlock()

	d.debug("cycle applied", "cycle", cycle, "records", len(records), "bars", len(view.Result.Bars))

	d.render(ctx, cycle, gen, view)
}

func (d *Dashboard) render(ctx context.Context, cycle string, gen uint64, view domain.ChartView) {
	if d.surface == nil {
		return
	}

	d.renderMu.Lock()
	defer d.renderMu.Unlock()

	d.mu.Lock()
	superseded := gen != d.generation
	d.mu.Unlock()
	if superseded {
		return
	}

	if err := d.surface.Render(ctx, view.Result, view.Layout); err != nil {
		d.warn("render chart", "cycle", cycle, "error", err)
	}
}

// caller holds mu.
func (d *Dashboard) restingState() State {
	switch {
	case d.lastErr != nil:
		return StateError
	case d.updatedAt.IsZero():
		return StateIdle
	default:
		return StateReady
	}
}

func (d *Dashboard) aggregate(records []domain.Record) domain.ChartView {
	result, err := chart.AggregateBy(records, d.mode)
	if err != nil {
		result = chart.Aggregate(records)
	}
	return chart.View(result, d.layout)
}

func (d *Dashboard) debug(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *Dashboard) warn(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
