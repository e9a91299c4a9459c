package airquality

import (
	"context"
	"time"

	"github.com/blueforce/skyshield/internal/dispersion"
)

// Result is one collection cycle's consolidated output. It is owned by the
// scheduler until published and handed to consumers by value afterwards.
type Result struct {
	ID           string               `json:"id"`
	Location     Location             `json:"location"`
	Measurements []Measurement        `json:"measurements"`
	Dispersion   *dispersion.Estimate `json:"dispersion,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
}

// Clone returns a deep copy so downstream consumers never share mutable
// state with the publishing cycle.
func (r Result) Clone() Result {
	out := r
	if r.Measurements != nil {
		out.Measurements = make([]Measurement, len(r.Measurements))
		copy(out.Measurements, r.Measurements)
	}
	if r.Dispersion != nil {
		d := *r.Dispersion
		out.Dispersion = &d
	}
	return out
}

// Source abstracts one air-quality data provider (e.g. IQAir, OpenAQ,
// AirNow). Fetch returns the classified measurements the provider could
// produce; a failed fetch returns an error and no measurements, and never
// panics past its own boundary.
type Source interface {
	Name() string
	Fetch(ctx context.Context, loc Location) ([]Measurement, error)
}

// Store is the contract for the published-result cell and its history.
type Store interface {
	Publish(res Result)
	Latest() (Result, error)
	Range(from, to time.Time) ([]Result, error)
}

// Exporter persists one cycle's result for downstream consumers.
type Exporter interface {
	Export(res Result) error
}
