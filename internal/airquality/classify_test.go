package airquality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaryInclusion(t *testing.T) {
	profile, err := ProfileByID("us-epa")
	require.NoError(t, err)

	threshold := profile.Thresholds[PollutantPM25]

	// Boundary values belong to the safer bucket.
	rating, _, _ := Classify(PollutantPM25, threshold.GoodMax, profile)
	assert.Equal(t, RatingGood, rating)

	rating, _, _ = Classify(PollutantPM25, threshold.GoodMax+0.001, profile)
	assert.Equal(t, RatingModerate, rating)

	rating, _, _ = Classify(PollutantPM25, threshold.ModerateMax, profile)
	assert.Equal(t, RatingModerate, rating)

	rating, _, _ = Classify(PollutantPM25, threshold.BadMax, profile)
	assert.Equal(t, RatingUnhealthy, rating)

	rating, indicator, description := Classify(PollutantPM25, threshold.BadMax+0.001, profile)
	assert.Equal(t, RatingVeryUnhealthy, rating)
	assert.Equal(t, "[VU]", indicator)
	assert.Equal(t, "Dangerous pollution levels", description)
}

func TestClassifyUnknownPollutant(t *testing.T) {
	profile, err := ProfileByID("us-epa")
	require.NoError(t, err)

	// CO2 carries no thresholds in either built-in profile.
	rating, indicator, description := Classify(PollutantCO2, 400, profile)
	assert.Equal(t, RatingUnknown, rating)
	assert.Equal(t, "[?]", indicator)
	assert.Equal(t, "No rating available", description)
}

func TestClassifyMonotoneInValue(t *testing.T) {
	for _, id := range []string{"us-epa", "id-klhk"} {
		profile, err := ProfileByID(id)
		require.NoError(t, err)

		for pollutant := range profile.Thresholds {
			prev := 0
			for value := 0.0; value < 600; value += 0.5 {
				rating, _, _ := Classify(pollutant, value, profile)
				if rating.Severity() < prev {
					t.Fatalf("%s/%s: severity decreased at value %f", id, pollutant, value)
				}
				prev = rating.Severity()
			}
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	profile, err := ProfileByID("us-epa")
	require.NoError(t, err)

	r1, i1, d1 := Classify(PollutantO3, 60, profile)
	r2, i2, d2 := Classify(PollutantO3, 60, profile)
	assert.Equal(t, r1, r2)
	assert.Equal(t, i1, i2)
	assert.Equal(t, d1, d2)
}

func TestNewMeasurementDerivesRating(t *testing.T) {
	profile, err := ProfileByID("us-epa")
	require.NoError(t, err)

	m, err := NewMeasurement(PollutantPM25, 23.5, "µg/m³", "test", profile, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, RatingModerate, m.Rating)
	assert.Equal(t, "[M]", m.Indicator)
	assert.Equal(t, RatingModerate.Advice(), m.Advice)
	assert.False(t, m.Timestamp.IsZero())
}

func TestNewMeasurementRejectsBadInput(t *testing.T) {
	profile, err := ProfileByID("us-epa")
	require.NoError(t, err)

	_, err = NewMeasurement(Pollutant("NH3"), 1, "ppb", "test", profile, time.Time{})
	assert.Error(t, err)

	_, err = NewMeasurement(PollutantPM25, -1, "µg/m³", "test", profile, time.Time{})
	assert.Error(t, err)
}
