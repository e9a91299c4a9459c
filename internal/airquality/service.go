package airquality

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blueforce/skyshield/internal/dispersion"
	"github.com/blueforce/skyshield/internal/metrics"
)

// DispersionEstimator provides the weather-based dispersion estimate
// attached to each cycle result.
type DispersionEstimator interface {
	Current(ctx context.Context, lat, lon float64) (dispersion.Estimate, error)
}

// Service runs collection cycles: it drives the aggregator, attaches the
// dispersion estimate, publishes the result atomically and hands it to the
// exporter.
type Service struct {
	aggregator *Aggregator
	estimator  DispersionEstimator
	store      Store
	exporter   Exporter
	logger     *zap.Logger
}

// NewService wires a service. Estimator and exporter may be nil, in which
// case the corresponding step is skipped.
func NewService(agg *Aggregator, estimator DispersionEstimator, store Store, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		aggregator: agg,
		estimator:  estimator,
		store:      store,
		exporter:   exporter,
		logger:     logger,
	}
}

// RunCycle performs one complete collection cycle for the location. Only a
// configuration error fails the cycle; everything else degrades and the
// (possibly empty) result is still published so consumers see fresh state.
func (s *Service) RunCycle(ctx context.Context, loc Location) (Result, error) {
	started := time.Now()

	measurements, err := s.aggregator.Collect(ctx, loc)
	if err != nil {
		metrics.CycleFailures.Inc()
		return Result{}, err
	}

	res := Result{
		ID:           uuid.NewString(),
		Location:     loc,
		Measurements: measurements,
		Timestamp:    time.Now().UTC(),
	}

	if s.estimator != nil {
		est, err := s.estimator.Current(ctx, loc.Lat, loc.Lon)
		if err != nil {
			// Best effort: a cycle without the weather estimate is
			// still a valid cycle.
			s.logger.Warn("dispersion estimate failed", zap.Error(err))
		} else {
			res.Dispersion = &est
		}
	}

	s.store.Publish(res)

	if s.exporter != nil && len(res.Measurements) > 0 {
		if err := s.exporter.Export(res); err != nil {
			s.logger.Warn("result export failed", zap.Error(err))
		}
	}

	metrics.CyclesTotal.Inc()
	metrics.CycleDuration.Observe(time.Since(started).Seconds())

	s.logger.Info("collection cycle completed",
		zap.String("cycle", res.ID),
		zap.Int("measurements", len(res.Measurements)),
		zap.Duration("took", time.Since(started)))

	return res, nil
}

// Latest returns a copy of the most recently published result.
func (s *Service) Latest() (Result, error) {
	return s.store.Latest()
}

// Range returns published results between from and to, inclusive.
func (s *Service) Range(from, to time.Time) ([]Result, error) {
	return s.store.Range(from, to)
}
