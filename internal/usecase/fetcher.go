package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/ports"
)

// ErrFetchFailed is matched by every repository failure surfaced by Fetcher.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError wraps a repository failure for one predicate.
type FetchError struct {
	Predicate domain.Predicate
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch records (%d clauses): %v", len(e.Predicate), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// Fetcher issues predicates to the repository and keeps the first successful
// result as the unfiltered snapshot used for filter options.
type Fetcher struct {
	repo   ports.RecordRepository
	logger *slog.Logger

	mu       sync.RWMutex
	captured bool
	snapshot []domain.Record
}

// NewFetcher wires a repository.
func NewFetcher(repo ports.RecordRepository, logger *slog.Logger) *Fetcher {
	return &Fetcher{repo: repo, logger: logger}
}

// Fetch performs exactly one repository query. There is no caching across calls.
func (f *Fetcher) Fetch(ctx context.Context, predicate domain.Predicate) ([]domain.Record, error) {
	records, err := Query(ctx, f.repo, predicate)
	if err != nil {
		return nil, err
	}

	f.capture(records)
	f.debug("fetched records", "clauses", len(predicate), "count", len(records))
	return records, nil
}

// Query runs one predicate against repo without touching any snapshot. Failures come
// back as *FetchError, cancellation as the context error, and no match as an empty slice.
func Query(ctx context.Context, repo ports.RecordRepository, predicate domain.Predicate) ([]domain.Record, error) {
	if repo == nil {
		return nil, &FetchError{Predicate: predicate, Err: errors.New("repository is not configured")}
	}

	records, err := repo.Find(ctx, predicate)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FetchError{Predicate: predicate, Err: err}
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

// Prime fetches with the empty predicate when no snapshot has been captured yet.
func (f *Fetcher) Prime(ctx context.Context) error {
	if f.Captured() {
		return nil
	}
	_, err := f.Fetch(ctx, domain.Predicate{})
	return err
}

// Captured reports whether the snapshot exists.
func (f *Fetcher) Captured() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.captured
}

// Snapshot returns a copy of the first successful result.
func (f *Fetcher) Snapshot() []domain.Record {
	f.mu.RLock()
	defer f.mu.RUnlock()

	cp := make([]domain.Record, len(f.snapshot))
	copy(cp, f.snapshot)
	return cp
}

// Options lists the distinct non-empty values of each filterable field in the snapshot,
// in first-seen order.
func (f *Fetcher) Options() map[domain.Field][]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return DistinctValues(f.snapshot, domain.FilterableFields)
}

func (f *Fetcher) capture(records []domain.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.captured {
		return
	}
	f.snapshot = make([]domain.Record, len(records))
	copy(f.snapshot, records)
	f.captured = true
}

func (f *Fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

// DistinctValues collects the distinct non-empty values of fields across records.
func DistinctValues(records []domain.Record, fields []domain.Field) map[domain.Field][]string {
	options := make(map[domain.Field][]string, len(fields))
	for _, field := range fields {
		seen := map[string]struct{}{}
		values := make([]string, 0)
		for _, r := range records {
			v := r.Value(field)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		options[field] = values
	}
	return options
}
