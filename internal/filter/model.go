// Package filter holds the current widget selections of a dashboard session.
package filter

import (
	"sync"

	"InsightsDashboard/internal/domain"
)

// DefaultKeys are the UI keys present in a fresh dashboard.
var DefaultKeys = []string{
	"end_year",
	"topic",
	"sector",
	"region",
	"pestle",
	"source",
	"country",
}

// Model owns the filter state. Every Set or Reset yields a new snapshot with a higher revision.
type Model struct {
	mu       sync.Mutex
	keys     []string
	current  domain.FilterState
	revision uint64
}

// NewModel creates a model whose canonical empty state declares keys.
// A nil keys slice uses DefaultKeys.
func NewModel(keys []string) *Model {
	if keys == nil {
		keys = DefaultKeys
	}
	cp := make([]string, len(keys))
	copy(cp, keys)

	m := &Model{keys: cp}
	m.current = m.emptyState()
	return m
}

// Get returns the current snapshot.
func (m *Model) Get() domain.FilterState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set changes one key and carries every other key over unchanged.
// Values are not validated here.
func (m *Model) Set(key string, value domain.FilterValue) domain.FilterState {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.revision++
	m.current = m.current.With(key, value, m.revision)
	return m.current
}

// Reset replaces the state with the canonical all-empty snapshot.
func (m *Model) Reset() domain.FilterState {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = m.emptyState()
	return m.current
}

// caller holds mu, except during construction.
func (m *Model) emptyState() domain.FilterState {
	m.revision++
	return domain.NewFilterState(m.blank(), m.revision)
}

func (m *Model) blank() map[string]domain.FilterValue {
	values := make(map[string]domain.FilterValue, len(m.keys))
	for _, k := range m.keys {
		values[k] = domain.Empty()
	}
	return values
}
