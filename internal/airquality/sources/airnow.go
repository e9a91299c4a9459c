package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/blueforce/skyshield/internal/airquality"
)

// airnowNames maps AirNow parameter names onto the pollutant set. AirNow
// only reports AQI-indexed parameters.
var airnowNames = map[string]airquality.Pollutant{
	"PM25":  airquality.PollutantPM25,
	"PM10":  airquality.PollutantPM10,
	"O3":    airquality.PollutantO3,
	"OZONE": airquality.PollutantO3,
}

// AirNowSource is the tertiary provider: EPA AirNow current observations.
// Every reading arrives as a dimensionless AQI, so only pollutants with a
// breakpoint table in the active profile can be converted; the rest are
// dropped.
type AirNowSource struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	profile *airquality.Profile
}

func NewAirNowSource(client *http.Client, apiKey string, profile *airquality.Profile) *AirNowSource {
	return &AirNowSource{
		name:    "airnow",
		apiKey:  apiKey,
		baseURL: "https://www.airnowapi.org/aq/observation/latLong/current/",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("airnow"),
		profile: profile,
	}
}

func (s *AirNowSource) Name() string { return s.name }

type airnowObservation struct {
	ParameterName string  `json:"ParameterName"`
	AQI           float64 `json:"AQI"`
	ReportingArea string  `json:"ReportingArea"`
}

func (s *AirNowSource) Fetch(ctx context.Context, loc airquality.Location) ([]airquality.Measurement, error) {
	if s.apiKey == "" {
		return nil, &airquality.SourceError{
			Kind:   airquality.ErrKindConfig,
			Source: s.name,
			Err:    fmt.Errorf("airnow api key is not configured"),
		}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "application/json")
		values.Set("latitude", fmt.Sprintf("%f", loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", loc.Lon))
		values.Set("API_KEY", s.apiKey)

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", s.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, s.name, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var observations []airnowObservation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		return nil, &airquality.SourceError{Kind: airquality.ErrKindSchema, Source: s.name, Err: err}
	}

	return s.measurements(observations), nil
}

func (s *AirNowSource) measurements(observations []airnowObservation) []airquality.Measurement {
	var out []airquality.Measurement

	now := time.Now().UTC()

	for _, obs := range observations {
		pollutant, ok := airnowNames[normalizeParameter(obs.ParameterName)]
		if !ok || obs.AQI <= 0 {
			continue
		}

		conc, err := airquality.ConvertIndex(obs.AQI, pollutant, s.profile)
		if err != nil {
			// No breakpoint table for this pollutant under the active
			// standard; skip the field, keep the rest.
			continue
		}

		origin := fmt.Sprintf("AirNow - %s", obs.ReportingArea)
		m, err := airquality.NewMeasurement(pollutant, conc, s.profile.Unit(pollutant), origin, s.profile, now)
		if err != nil {
			continue
		}
		raw := obs.AQI
		m.RawIndex = &raw
		out = append(out, m)
	}

	return out
}

var _ airquality.Source = (*AirNowSource)(nil)
