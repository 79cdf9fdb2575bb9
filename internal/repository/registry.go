package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"InsightsDashboard/internal/ports"
)

// ErrUnknownDriver is returned when no driver is registered under the configured name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Settings carries everything a driver may need to open a repository.
type Settings struct {
	Driver        string
	DSN           string
	Table         string
	DataFile      string
	Watch         bool
	RemoteURL     string
	RemoteTimeout time.Duration
	Logger        *slog.Logger
}

// Handle is an opened repository. Writer, Watch and Close are optional.
type Handle struct {
	Repository ports.RecordRepository
	Writer     ports.RecordWriter
	Watch      func(ctx context.Context) error
	Close      func() error
}

// Shutdown releases the handle resources.
func (h *Handle) Shutdown() error {
	if h == nil || h.Close == nil {
		return nil
	}
	return h.Close()
}

// Driver opens one kind of record store (memory, postgres, remote).
type Driver interface {
	Name() string
	Open(ctx context.Context, s Settings) (*Handle, error)
}

// DriverFunc adapts a function to Driver.
type DriverFunc struct {
	DriverName string
	OpenFunc   func(ctx context.Context, s Settings) (*Handle, error)
}

func (d DriverFunc) Name() string { return d.DriverName }

func (d DriverFunc) Open(ctx context.Context, s Settings) (*Handle, error) {
	return d.OpenFunc(ctx, s)
}

// Registry keeps a mapping from driver names to their implementations.
type Registry struct {
	drivers map[string]Driver
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{drivers: map[string]Driver{}}
}

// Register adds or replaces a driver implementation.
func (r *Registry) Register(driver Driver) {
	if r.drivers == nil {
		r.drivers = map[string]Driver{}
	}
	r.drivers[driver.Name()] = driver
}

// Resolve returns a driver by name.
func (r *Registry) Resolve(name string) (Driver, error) {
	if driver, ok := r.drivers[name]; ok {
		return driver, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownDriver, name, r.Names())
}

// Names lists the registered drivers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open resolves s.Driver and opens it.
func (r *Registry) Open(ctx context.Context, s Settings) (*Handle, error) {
	driver, err := r.Resolve(s.Driver)
	if err != nil {
		return nil, err
	}
	handle, err := driver.Open(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("open %s repository: %w", driver.Name(), err)
	}
	return handle, nil
}
