package dispersion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreConditions(t *testing.T) {
	tests := []struct {
		name                         string
		wind, humidity, visibilityMi float64
		want                         int
	}{
		{"calm humid hazy", 2, 90, 1, 90},
		{"calm only", 2, 50, 10, 30},
		{"light wind", 7, 50, 10, 15},
		{"reduced visibility", 15, 50, 4, 20},
		{"favorable", 15, 50, 10, 0},
		{"worst case", 0, 100, 0, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreConditions(tt.wind, tt.humidity, tt.visibilityMi))
		})
	}
}

func TestScoreConditionsDeterministic(t *testing.T) {
	assert.Equal(t, ScoreConditions(3, 85, 2), ScoreConditions(3, 85, 2))
}

func TestClientCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fahrenheit", r.URL.Query().Get("temperature_unit"))
		assert.Equal(t, "mph", r.URL.Query().Get("wind_speed_unit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"current": {
				"temperature_2m": 68.5,
				"relative_humidity_2m": 85,
				"pressure_msl": 1013.2,
				"wind_speed_10m": 3.1,
				"wind_direction_10m": 180,
				"cloud_cover": 75,
				"visibility": 8046.7
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	c.baseURL = srv.URL

	est, err := c.Current(context.Background(), 40.7128, -74.0060)
	require.NoError(t, err)

	assert.Equal(t, 68.5, est.TemperatureF)
	assert.Equal(t, 85.0, est.HumidityPct)
	assert.InDelta(t, 5.0, est.VisibilityMi, 0.01)

	// Calm wind (+30), high humidity (+20), visibility under 6 miles (+20).
	assert.Equal(t, 70, est.Score)
	assert.True(t, est.Stagnant())
	assert.Equal(t, "Open-Meteo", est.Source)
}

func TestClientCurrentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	c.baseURL = srv.URL

	_, err := c.Current(context.Background(), 0, 0)
	require.Error(t, err)
}
