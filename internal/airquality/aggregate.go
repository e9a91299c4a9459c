package airquality

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/blueforce/skyshield/internal/metrics"
)

// Aggregator queries sources in priority order and stops as soon as enough
// measurements have accumulated. It trades completeness for fewer external
// calls once the sufficiency threshold is met.
type Aggregator struct {
	sources     []Source // priority order: index 0 is the primary
	sufficiency int
	logger      *zap.Logger
}

// NewAggregator creates an aggregator over the given sources. A sufficiency
// threshold below 1 falls back to the default of 2.
func NewAggregator(sources []Source, sufficiency int, logger *zap.Logger) *Aggregator {
	if sufficiency < 1 {
		sufficiency = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		sources:     sources,
		sufficiency: sufficiency,
		logger:      logger,
	}
}

// Collect runs the fallback chain for one cycle. Sources run sequentially
// because whether source k runs at all depends on what sources 1..k-1
// accumulated. Transport, protocol and schema failures degrade to zero
// measurements from that source; only configuration errors abort the cycle.
// An empty result with no error is a valid outcome.
func (a *Aggregator) Collect(ctx context.Context, loc Location) ([]Measurement, error) {
	var collected []Measurement

	for i, src := range a.sources {
		if i > 0 && len(collected) >= a.sufficiency {
			a.logger.Debug("sufficient measurements collected, skipping remaining sources",
				zap.Int("count", len(collected)),
				zap.Int("threshold", a.sufficiency))
			break
		}

		ms, err := src.Fetch(ctx, loc)
		if err != nil {
			var se *SourceError
			if errors.As(err, &se) && se.IsFatal() {
				return nil, err
			}
			metrics.SourceFailures.WithLabelValues(src.Name(), string(ErrorKindOf(err))).Inc()
			a.logger.Warn("source fetch failed, continuing with remaining sources",
				zap.String("source", src.Name()),
				zap.Error(err))
			continue
		}

		collected = append(collected, ms...)
		a.logger.Info("source fetch completed",
			zap.String("source", src.Name()),
			zap.Int("measurements", len(ms)))
	}

	for _, m := range collected {
		metrics.MeasurementsCollected.WithLabelValues(string(m.Pollutant), string(m.Rating)).Inc()
	}

	return collected, nil
}
