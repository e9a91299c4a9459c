package airquality

import (
	"fmt"
	"time"
)

// Pollutant identifies a measured substance. The set is closed and
// independent of the active regulatory standard.
type Pollutant string

const (
	PollutantPM25 Pollutant = "PM2_5"
	PollutantPM10 Pollutant = "PM10"
	PollutantNO2  Pollutant = "NO2"
	PollutantO3   Pollutant = "O3"
	PollutantSO2  Pollutant = "SO2"
	PollutantCO   Pollutant = "CO"
	PollutantCO2  Pollutant = "CO2"
)

var knownPollutants = map[Pollutant]bool{
	PollutantPM25: true,
	PollutantPM10: true,
	PollutantNO2:  true,
	PollutantO3:   true,
	PollutantSO2:  true,
	PollutantCO:   true,
	PollutantCO2:  true,
}

// Rating is the derived health classification of a measurement.
type Rating string

const (
	RatingGood          Rating = "GOOD"
	RatingModerate      Rating = "MODERATE"
	RatingUnhealthy     Rating = "UNHEALTHY"
	RatingVeryUnhealthy Rating = "VERY_UNHEALTHY"
	RatingUnknown       Rating = "UNKNOWN"
)

// Severity orders ratings from safest to most severe. UNKNOWN sorts first
// so it never dominates a real classification.
func (r Rating) Severity() int {
	switch r {
	case RatingGood:
		return 1
	case RatingModerate:
		return 2
	case RatingUnhealthy:
		return 3
	case RatingVeryUnhealthy:
		return 4
	default:
		return 0
	}
}

// Indicator is the short display tag for a rating.
func (r Rating) Indicator() string {
	switch r {
	case RatingGood:
		return "[G]"
	case RatingModerate:
		return "[M]"
	case RatingUnhealthy:
		return "[U]"
	case RatingVeryUnhealthy:
		return "[VU]"
	default:
		return "[?]"
	}
}

// Advice returns the health guidance text for a rating.
func (r Rating) Advice() string {
	switch r {
	case RatingGood:
		return "No precautions needed - ideal for outdoor activities"
	case RatingModerate:
		return "Generally acceptable for most people"
	case RatingUnhealthy:
		return "Sensitive groups should reduce outdoor activity"
	case RatingVeryUnhealthy:
		return "Everyone should reduce outdoor exertion"
	default:
		return "Check local air quality advisories"
	}
}

// Location is the geographic region the service monitors.
type Location struct {
	Name string  `json:"name"`
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Measurement is one classified pollutant reading. Instances are built
// through NewMeasurement so malformed provider data cannot enter the
// pipeline; the rating fields are always derived, never set by callers.
type Measurement struct {
	Pollutant   Pollutant `json:"pollutant"`
	Value       float64   `json:"value"`
	Unit        string    `json:"units"`
	Source      string    `json:"source"`
	Rating      Rating    `json:"rating"`
	Indicator   string    `json:"indicator"`
	Description string    `json:"description"`
	Advice      string    `json:"advice"`
	Timestamp   time.Time `json:"timestamp"`

	// RawIndex carries the original dimensionless index (e.g. AQI) when
	// the value was index-derived.
	RawIndex *float64 `json:"rawIndex,omitempty"`

	// LowConfidence marks values whose unit conversion was unsupported:
	// the reading is retained unconverted rather than silently mis-scaled.
	LowConfidence bool `json:"lowConfidence,omitempty"`
}

// NewMeasurement validates and classifies a reading against the profile.
// The rating is a pure function of (pollutant, value, profile).
func NewMeasurement(p Pollutant, value float64, unit, source string, profile *Profile, ts time.Time) (Measurement, error) {
	if !knownPollutants[p] {
		return Measurement{}, fmt.Errorf("unknown pollutant %q", p)
	}
	if value < 0 {
		return Measurement{}, fmt.Errorf("negative concentration %f for %s", value, p)
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	rating, indicator, description := Classify(p, value, profile)

	return Measurement{
		Pollutant:   p,
		Value:       value,
		Unit:        unit,
		Source:      source,
		Rating:      rating,
		Indicator:   indicator,
		Description: description,
		Advice:      rating.Advice(),
		Timestamp:   ts.UTC(),
	}, nil
}
