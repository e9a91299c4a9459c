package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/blueforce/skyshield/internal/airquality"
)

// Scheduler triggers collection cycles for the configured region at a fixed
// interval. Cycles run in singleton mode: a tick that fires while a cycle
// is still in flight is skipped rather than overlapped, and stopping the
// scheduler lets the in-flight cycle finish.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *airquality.Service
	location  airquality.Location
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Scheduler. The cycle timeout bounds each run so one slow
// provider cannot stall the loop across intervals.
func New(loc airquality.Location, interval, timeout time.Duration, service *airquality.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		location:  loc,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic job and runs the first cycle immediately.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().StartImmediately().Do(s.runCycle)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runCycle() {
	s.logger.Info("scheduler: starting collection cycle",
		zap.String("location", s.location.Name))

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.service.RunCycle(ctx, s.location)
	if err != nil {
		// A configuration error means misconfigured startup state, not a
		// transient condition; it aborts this cycle but never the loop.
		s.logger.Error("scheduler: collection cycle aborted", zap.Error(err))
		return
	}

	s.logger.Info("scheduler: collection cycle published",
		zap.String("cycle", res.ID),
		zap.Int("measurements", len(res.Measurements)))
}

// Stop stops the scheduler. The in-flight cycle, if any, completes;
// no further cycles are started.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
