package repository

import (
	"context"
	"fmt"

	"InsightsDashboard/internal/infrastructure/httpapi"
	"InsightsDashboard/internal/infrastructure/storage"
)

// Driver names accepted in storage.driver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRemote   = "remote"
)

// Default returns a registry with the built-in drivers.
func Default() *Registry {
	r := NewRegistry()
	r.Register(DriverFunc{DriverName: DriverMemory, OpenFunc: openMemory})
	r.Register(DriverFunc{DriverName: DriverPostgres, OpenFunc: openPostgres})
	r.Register(DriverFunc{DriverName: DriverRemote, OpenFunc: openRemote})
	return r
}

func openMemory(_ context.Context, s Settings) (*Handle, error) {
	if s.DataFile == "" {
		repo := storage.NewMemoryRepository(nil)
		return &Handle{Repository: repo, Writer: repo}, nil
	}

	repo, err := storage.OpenMemoryRepository(s.DataFile, s.Logger)
	if err != nil {
		return nil, err
	}

	handle := &Handle{Repository: repo, Writer: repo}
	if s.Watch {
		handle.Watch = repo.Watch
	}
	return handle, nil
}

func openPostgres(ctx context.Context, s Settings) (*Handle, error) {
	if s.DSN == "" {
		return nil, fmt.Errorf("storage.dsn (or DATABASE_DSN) is required")
	}

	db, err := storage.OpenPostgres(ctx, s.DSN)
	if err != nil {
		return nil, err
	}

	repo := storage.NewPostgresRepository(db, s.Table)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Handle{Repository: repo, Writer: repo, Close: db.Close}, nil
}

func openRemote(_ context.Context, s Settings) (*Handle, error) {
	if s.RemoteURL == "" {
		return nil, fmt.Errorf("remote.baseUrl (or DASHBOARD_REMOTE_URL) is required")
	}

	client, err := httpapi.NewClient(s.RemoteURL, s.RemoteTimeout, s.Logger)
	if err != nil {
		return nil, err
	}
	return &Handle{Repository: client}, nil
}
