package ports

import (
	"context"
	"time"

	"InsightsDashboard/internal/domain"
)

// RecordRepository evaluates a predicate over the dataset and returns the full matching set.
type RecordRepository interface {
	Find(ctx context.Context, predicate domain.Predicate) ([]domain.Record, error)
}

// OptionSource is a repository that can list filter options itself.
type OptionSource interface {
	Options(ctx context.Context) (map[domain.Field][]string, error)
}

// RecordWriter bulk-loads records into a store.
type RecordWriter interface {
	Insert(ctx context.Context, records []domain.Record) (int, error)
}

// ChartSurface draws a prepared aggregation inside a fixed layout.
type ChartSurface interface {
	Render(ctx context.Context, result domain.AggregationResult, layout domain.Layout) error
}

// Scheduler controls when periodic refreshes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
