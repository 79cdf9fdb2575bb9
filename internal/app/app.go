package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"InsightsDashboard/internal/chart"
	"InsightsDashboard/internal/config"
	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/filter"
	"InsightsDashboard/internal/infrastructure/httpapi"
	"InsightsDashboard/internal/infrastructure/scheduler"
	"InsightsDashboard/internal/infrastructure/storage"
	"InsightsDashboard/internal/logging"
	"InsightsDashboard/internal/ports"
	"InsightsDashboard/internal/query"
	"InsightsDashboard/internal/repository"
	"InsightsDashboard/internal/usecase"
)

// ErrReadOnlyRepository is returned by Import when the driver cannot write.
var ErrReadOnlyRepository = errors.New("repository does not accept writes")

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *repository.Registry
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return &Application{cfg: cfg, logger: baseLogger, registry: repository.Default()}
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Logger returns the base logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Builder constructs the predicate builder from the filters section.
func (a *Application) Builder() (*query.Builder, error) {
	aliases, err := query.NewAliasTable(a.cfg.Filters.Aliases)
	if err != nil {
		return nil, err
	}

	policy := query.MultiValuePolicy(a.cfg.Filters.MultiValue)
	switch policy {
	case "", query.MultiValueScalar, query.MultiValueAny:
	default:
		return nil, fmt.Errorf("filters.multiValue: unknown policy %q", a.cfg.Filters.MultiValue)
	}

	return query.NewBuilder(aliases,
		query.WithMultiValuePolicy(policy),
		query.WithLogger(a.logger.With("component", "query")),
	), nil
}

// Mode returns the configured aggregation variant.
func (a *Application) Mode() (domain.AggregationMode, error) {
	return chart.ParseMode(a.cfg.Chart.Mode)
}

// Layout returns the configured drawing frame.
func (a *Application) Layout() domain.Layout {
	return a.cfg.Chart.Layout()
}

// OpenRepository resolves the storage driver. The caller owns the handle.
func (a *Application) OpenRepository(ctx context.Context) (*repository.Handle, error) {
	return a.registry.Open(ctx, repository.Settings{
		Driver:        a.cfg.Storage.Driver,
		DSN:           a.cfg.Storage.DSN,
		Table:         a.cfg.Storage.Table,
		DataFile:      a.cfg.Storage.DataFile,
		Watch:         a.cfg.Storage.Watch,
		RemoteURL:     a.cfg.Remote.BaseURL,
		RemoteTimeout: a.cfg.Remote.Timeout,
		Logger:        a.logger.With("component", "storage."+a.cfg.Storage.Driver),
	})
}

// NewDashboard builds an orchestrator session over repo drawing to surface (may be nil).
// filters may carry preset selections; nil starts from the empty state.
func (a *Application) NewDashboard(repo ports.RecordRepository, surface ports.ChartSurface, filters *filter.Model) (*usecase.Dashboard, error) {
	builder, err := a.Builder()
	if err != nil {
		return nil, err
	}
	mode, err := a.Mode()
	if err != nil {
		return nil, err
	}

	return usecase.NewDashboard(usecase.DashboardDeps{
		Repository: repo,
		Surface:    surface,
		Filters:    filters,
		Builder:    builder,
		Layout:     a.Layout(),
		Mode:       mode,
		Logger:     a.logger.With("component", "dashboard"),
	}), nil
}

// NewRefresher re-runs the dashboard's filters every refresh.interval. It returns nil
// when no interval is configured.
func (a *Application) NewRefresher(d *usecase.Dashboard) *usecase.Refresher {
	if a.cfg.Refresh.Interval <= 0 {
		return nil
	}
	return usecase.NewRefresher(scheduler.NewTickerScheduler(a.cfg.Refresh.Interval, false), d)
}

// Serve opens the repository and runs the HTTP API until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	builder, err := a.Builder()
	if err != nil {
		return err
	}
	mode, err := a.Mode()
	if err != nil {
		return err
	}

	handle, err := a.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := handle.Shutdown(); cerr != nil {
			a.logger.Warn("close repository", "error", cerr)
		}
	}()

	if handle.Watch != nil {
		go func() {
			if werr := handle.Watch(ctx); werr != nil {
				a.logger.Warn("watch records file", "error", werr)
			}
		}()
	}

	server := httpapi.NewServer(httpapi.ServerOptions{
		Repository: handle.Repository,
		Builder:    builder,
		Layout:     a.Layout(),
		Mode:       mode,
		RateLimit:  a.cfg.Server.RateLimit,
		RateBurst:  a.cfg.Server.RateBurst,
		Logger:     a.logger.With("component", "http"),
	})
	return server.Serve(ctx, a.cfg.Server.Addr, a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout)
}

// Import loads a JSON records file into the configured repository.
func (a *Application) Import(ctx context.Context, path string) (int, error) {
	records, err := storage.ReadRecordsFile(path)
	if err != nil {
		return 0, err
	}

	handle, err := a.OpenRepository(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = handle.Shutdown() }()

	if handle.Writer == nil {
		return 0, fmt.Errorf("%w: driver %s", ErrReadOnlyRepository, a.cfg.Storage.Driver)
	}

	n, err := handle.Writer.Insert(ctx, records)
	if err != nil {
		return 0, err
	}
	a.logger.Info("records imported", "path", path, "count", n, "driver", a.cfg.Storage.Driver)
	return n, nil
}

// Run serves the API; it is what the binary does without a subcommand.
func (a *Application) Run(ctx context.Context) error {
	return a.Serve(ctx)
}
