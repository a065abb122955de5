package usecase

import (
	"context"
	"time"

	"NewsScanner/internal/ports"
)

// Scheduler wires a ticking driver with a single-run function.
type Scheduler struct {
	driver ports.Scheduler
	run    func(context.Context) error
	onErr  func(error)
}

// NewScheduler returns a helper to start/stop recurring runs. onErr may be nil.
func NewScheduler(driver ports.Scheduler, run func(context.Context) error, onErr func(error)) *Scheduler {
	return &Scheduler{driver: driver, run: run, onErr: onErr}
}

// Start registers the run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.run == nil {
		return nil
	}

	job := func(time.Time) {
		if err := s.run(ctx); err != nil && s.onErr != nil {
			s.onErr(err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// RunUntilDone starts the schedule and blocks until ctx is cancelled.
func (s *Scheduler) RunUntilDone(ctx context.Context, shutdownTimeout time.Duration) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}
