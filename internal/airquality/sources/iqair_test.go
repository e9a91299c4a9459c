package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueforce/skyshield/internal/airquality"
)

func fastBackoff() BackoffConfig {
	return BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func testProfile(t *testing.T) *airquality.Profile {
	t.Helper()
	profile, err := airquality.ProfileByID("us-epa")
	require.NoError(t, err)
	return profile
}

func TestIQAirFetchMapsPollution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"city": "New York",
				"current": {
					"pollution": {"aqius": 75, "no2": 40, "o3": 60, "so2": 20, "co": 2.3}
				}
			}
		}`))
	}))
	defer srv.Close()

	src := NewIQAirSource(srv.Client(), "test-key", testProfile(t), airquality.NewUnitConverter())
	src.baseURL = srv.URL
	src.httpCfg.Backoff = fastBackoff()

	ms, err := src.Fetch(context.Background(), airquality.Location{Lat: 40.7128, Lon: -74.0060})
	require.NoError(t, err)
	require.Len(t, ms, 5)

	byPollutant := map[airquality.Pollutant]airquality.Measurement{}
	for _, m := range ms {
		byPollutant[m.Pollutant] = m
	}

	// AQI 75 converts to roughly 23.5 µg/m³ and classifies MODERATE.
	pm25 := byPollutant[airquality.PollutantPM25]
	assert.InDelta(t, 23.51, pm25.Value, 0.01)
	assert.Equal(t, airquality.RatingModerate, pm25.Rating)
	require.NotNil(t, pm25.RawIndex)
	assert.Equal(t, 75.0, *pm25.RawIndex)
	assert.Equal(t, "IQAir - New York", pm25.Source)

	// CO below 10 is treated as mg/m³ and scaled to ppm.
	co := byPollutant[airquality.PollutantCO]
	assert.InDelta(t, 2.3*0.87, co.Value, 1e-9)
	assert.Equal(t, "ppm", co.Unit)
	assert.False(t, co.LowConfidence)

	no2 := byPollutant[airquality.PollutantNO2]
	assert.Equal(t, 40.0, no2.Value)
	assert.Equal(t, airquality.RatingGood, no2.Rating)
}

func TestIQAirFetchPartialPayload(t *testing.T) {
	// Missing fields yield fewer measurements, never an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"city": "New York", "current": {"pollution": {"aqius": 42}}}}`))
	}))
	defer srv.Close()

	src := NewIQAirSource(srv.Client(), "test-key", testProfile(t), airquality.NewUnitConverter())
	src.baseURL = srv.URL
	src.httpCfg.Backoff = fastBackoff()

	ms, err := src.Fetch(context.Background(), airquality.Location{})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, airquality.PollutantPM25, ms[0].Pollutant)
}

func TestIQAirFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	src := NewIQAirSource(srv.Client(), "test-key", testProfile(t), airquality.NewUnitConverter())
	src.baseURL = srv.URL
	src.httpCfg.Backoff = fastBackoff()

	ms, err := src.Fetch(context.Background(), airquality.Location{})
	require.Error(t, err)
	assert.Empty(t, ms)
	assert.Equal(t, airquality.ErrKindProtocol, airquality.ErrorKindOf(err))
}

func TestIQAirFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	src := NewIQAirSource(srv.Client(), "test-key", testProfile(t), airquality.NewUnitConverter())
	src.baseURL = srv.URL
	src.httpCfg.Backoff = fastBackoff()

	_, err := src.Fetch(context.Background(), airquality.Location{})
	require.Error(t, err)
	assert.Equal(t, airquality.ErrKindSchema, airquality.ErrorKindOf(err))
}

func TestIQAirFetchMissingKey(t *testing.T) {
	src := NewIQAirSource(http.DefaultClient, "", testProfile(t), airquality.NewUnitConverter())

	_, err := src.Fetch(context.Background(), airquality.Location{})
	require.Error(t, err)
	assert.Equal(t, airquality.ErrKindConfig, airquality.ErrorKindOf(err))
}
