// Package dispersion estimates how well current weather conditions disperse
// pollutants, from Open-Meteo current observations.
package dispersion

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const metersPerMile = 1609.34

// Estimate is a point-in-time qualitative dispersion assessment derived
// from weather conditions, not a measured pollutant value.
type Estimate struct {
	TemperatureF  float64   `json:"temperatureF"`
	HumidityPct   float64   `json:"humidityPercent"`
	PressureHpa   float64   `json:"pressureHpa"`
	WindSpeedMph  float64   `json:"windSpeedMph"`
	WindDirection float64   `json:"windDirectionDeg"`
	CloudCoverPct float64   `json:"cloudCoverPercent"`
	VisibilityMi  float64   `json:"visibilityMiles"`
	Score         int       `json:"score"` // 0-100, higher means worse dispersion
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

// Stagnant reports whether conditions are likely to trap pollutants.
func (e Estimate) Stagnant() bool { return e.Score > 50 }

// Client fetches current conditions from Open-Meteo. No API key required.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient builds a client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:    resty.New().SetTimeout(timeout),
		baseURL: "https://api.open-meteo.com/v1/forecast",
	}
}

type currentPayload struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		Pressure      float64 `json:"pressure_msl"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindDirection float64 `json:"wind_direction_10m"`
		CloudCover    float64 `json:"cloud_cover"`
		Visibility    float64 `json:"visibility"` // meters
	} `json:"current"`
}

// Current fetches the current conditions for the coordinates and scores
// them for pollutant dispersion.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Estimate, error) {
	var payload currentPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":         fmt.Sprintf("%f", lat),
			"longitude":        fmt.Sprintf("%f", lon),
			"current":          "temperature_2m,relative_humidity_2m,pressure_msl,wind_speed_10m,wind_direction_10m,cloud_cover,visibility",
			"temperature_unit": "fahrenheit",
			"wind_speed_unit":  "mph",
		}).
		SetResult(&payload).
		Get(c.baseURL)
	if err != nil {
		return Estimate{}, err
	}
	if resp.IsError() {
		return Estimate{}, fmt.Errorf("open-meteo returned status %d", resp.StatusCode())
	}

	cur := payload.Current
	visibilityMi := cur.Visibility / metersPerMile

	return Estimate{
		TemperatureF:  cur.Temperature,
		HumidityPct:   cur.Humidity,
		PressureHpa:   cur.Pressure,
		WindSpeedMph:  cur.WindSpeed,
		WindDirection: cur.WindDirection,
		CloudCoverPct: cur.CloudCover,
		VisibilityMi:  visibilityMi,
		Score:         ScoreConditions(cur.WindSpeed, cur.Humidity, visibilityMi),
		Source:        "Open-Meteo",
		Timestamp:     time.Now().UTC(),
	}, nil
}

// ScoreConditions rates pollutant-trapping potential on a 0-100 scale.
// Calm wind means poor dispersion, high humidity traps particulates, and
// low visibility usually indicates existing pollution.
func ScoreConditions(windMph, humidityPct, visibilityMi float64) int {
	score := 0

	if windMph < 5 {
		score += 30
	} else if windMph < 10 {
		score += 15
	}

	if humidityPct > 80 {
		score += 20
	}

	if visibilityMi < 3 {
		score += 40
	} else if visibilityMi < 6 {
		score += 20
	}

	if score > 100 {
		score = 100
	}
	return score
}
