package usecase

import (
	"context"
	"time"

	"InsightsDashboard/internal/ports"
)

// Refresher re-runs the dashboard's current filters on a schedule so that
// changes in the backing store show up without user input.
type Refresher struct {
	driver    ports.Scheduler
	dashboard *Dashboard
}

// NewRefresher pairs a scheduler driver with a dashboard.
func NewRefresher(driver ports.Scheduler, dashboard *Dashboard) *Refresher {
	return &Refresher{driver: driver, dashboard: dashboard}
}

// Start registers the refresh job with the driver.
func (s *Refresher) Start(ctx context.Context) error {
	if s.driver == nil || s.dashboard == nil {
		return nil
	}

	job := func(time.Time) {
		<-s.dashboard.Refresh(ctx)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Refresher) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
