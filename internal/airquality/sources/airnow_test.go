package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueforce/skyshield/internal/airquality"
)

func TestAirNowFetchConvertsAQI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"ParameterName": "PM2.5", "AQI": 75, "ReportingArea": "New York City Region"},
			{"ParameterName": "PM10", "AQI": 40, "ReportingArea": "New York City Region"},
			{"ParameterName": "O3", "AQI": 55, "ReportingArea": "New York City Region"}
		]`))
	}))
	defer srv.Close()

	src := NewAirNowSource(srv.Client(), "test-key", testProfile(t))
	src.baseURL = srv.URL
	src.httpCfg.Backoff = fastBackoff()

	ms, err := src.Fetch(context.Background(), airquality.Location{Lat: 40.7128, Lon: -74.0060})
	require.NoError(t, err)

	// O3 is dropped: the profile has no ozone breakpoint table, so its
	// AQI cannot be turned into a concentration.
	require.Len(t, ms, 2)

	byPollutant := map[airquality.Pollutant]airquality.Measurement{}
	for _, m := range ms {
		byPollutant[m.Pollutant] = m
		assert.Equal(t, "AirNow - New York City Region", m.Source)
		assert.NotNil(t, m.RawIndex)
	}

	pm25 := byPollutant[airquality.PollutantPM25]
	assert.InDelta(t, 23.51, pm25.Value, 0.01)
	assert.Equal(t, airquality.RatingModerate, pm25.Rating)

	// PM10 AQI 40 sits in the first segment: 40*54/50.
	pm10 := byPollutant[airquality.PollutantPM10]
	assert.InDelta(t, 43.2, pm10.Value, 0.01)
	assert.Equal(t, airquality.RatingGood, pm10.Rating)
}

func TestAirNowFetchZeroObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	src := NewAirNowSource(srv.Client(), "test-key", testProfile(t))
	src.baseURL = srv.URL
	src.httpCfg.Backoff = fastBackoff()

	ms, err := src.Fetch(context.Background(), airquality.Location{})
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestAirNowFetchMissingKey(t *testing.T) {
	src := NewAirNowSource(http.DefaultClient, "", testProfile(t))

	_, err := src.Fetch(context.Background(), airquality.Location{})
	require.Error(t, err)
	assert.Equal(t, airquality.ErrKindConfig, airquality.ErrorKindOf(err))
}

func TestRateLimitedSourceForwards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	inner := NewAirNowSource(srv.Client(), "test-key", testProfile(t))
	inner.baseURL = srv.URL
	inner.httpCfg.Backoff = fastBackoff()

	limited := NewRateLimitedSource(inner, 100, 1)
	assert.Equal(t, inner.Name(), limited.Name())

	ms, err := limited.Fetch(context.Background(), airquality.Location{})
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestRateLimitedSourceHonorsCancellation(t *testing.T) {
	inner := NewAirNowSource(http.DefaultClient, "test-key", testProfile(t))
	// One token per minute and no burst headroom after the first call.
	limited := NewRateLimitedSource(inner, 1.0/60, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := limited.Fetch(ctx, airquality.Location{})
	require.Error(t, err)
	assert.Equal(t, airquality.ErrKindTransport, airquality.ErrorKindOf(err))
}
