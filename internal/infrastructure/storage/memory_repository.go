package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/ports"
)

// MemoryRepository serves records held in memory, optionally backed by a JSON array file.
type MemoryRepository struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	records []domain.Record
}

var (
	_ ports.RecordRepository = (*MemoryRepository)(nil)
	_ ports.RecordWriter     = (*MemoryRepository)(nil)
)

// NewMemoryRepository wraps a fixed record set.
func NewMemoryRepository(records []domain.Record) *MemoryRepository {
	cp := make([]domain.Record, len(records))
	copy(cp, records)
	return &MemoryRepository{records: cp}
}

// OpenMemoryRepository loads path and keeps it for Reload and Watch.
func OpenMemoryRepository(path string, logger *slog.Logger) (*MemoryRepository, error) {
	r := &MemoryRepository{path: path, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeRecords reads a JSON array of records.
func DecodeRecords(in io.Reader) ([]domain.Record, error) {
	var records []domain.Record
	if err := json.NewDecoder(in).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// ReadRecordsFile decodes the JSON array stored at path.
func ReadRecordsFile(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	records, err := DecodeRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Reload replaces the records with the file contents. A failed reload keeps the old set.
func (r *MemoryRepository) Reload() error {
	if r.path == "" {
		return nil
	}

	records, err := ReadRecordsFile(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.records = records
	r.mu.Unlock()

	r.debug("records loaded", "path", r.path, "count", len(records))
	return nil
}

// Find returns every record matching the predicate, in stored order.
func (r *MemoryRepository) Find(ctx context.Context, predicate domain.Predicate) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]domain.Record, 0)
	if !predicate.Satisfiable() {
		return result, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if predicate.Matches(rec) {
			result = append(result, rec)
		}
	}
	return result, nil
}

// Insert appends records in memory only; the backing file is never written.
func (r *MemoryRepository) Insert(ctx context.Context, records []domain.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	return len(records), nil
}

// Len reports the number of held records.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Watch reloads the backing file whenever it changes, until ctx is done.
// The parent directory is watched so editors that replace the file are noticed.
func (r *MemoryRepository) Watch(ctx context.Context) error {
	if r.path == "" {
		return fmt.Errorf("watch: repository has no backing file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(r.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := r.Reload(); err != nil {
				r.warn("reload records", "path", r.path, "error", err)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.warn("watch records file", "path", r.path, "error", werr)
		}
	}
}

func (r *MemoryRepository) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *MemoryRepository) warn(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
