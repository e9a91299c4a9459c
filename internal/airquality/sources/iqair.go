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

// IQAirSource is the primary provider. IQAir reports PM2.5 as a US AQI
// value plus direct gas concentrations for the nearest city.
type IQAirSource struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	profile *airquality.Profile
	units   *airquality.UnitConverter
}

func NewIQAirSource(client *http.Client, apiKey string, profile *airquality.Profile, units *airquality.UnitConverter) *IQAirSource {
	return &IQAirSource{
		name:    "iqair",
		apiKey:  apiKey,
		baseURL: "https://api.airvisual.com/v2/nearest_city",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("iqair"),
		profile: profile,
		units:   units,
	}
}

func (s *IQAirSource) Name() string { return s.name }

type iqairPayload struct {
	Data struct {
		City    string `json:"city"`
		Current struct {
			Pollution struct {
				AQIUS float64 `json:"aqius"`
				NO2   float64 `json:"no2"`
				O3    float64 `json:"o3"`
				SO2   float64 `json:"so2"`
				CO    float64 `json:"co"`
			} `json:"pollution"`
		} `json:"current"`
	} `json:"data"`
}

func (s *IQAirSource) Fetch(ctx context.Context, loc airquality.Location) ([]airquality.Measurement, error) {
	if s.apiKey == "" {
		return nil, &airquality.SourceError{
			Kind:   airquality.ErrKindConfig,
			Source: s.name,
			Err:    fmt.Errorf("iqair api key is not configured"),
		}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", loc.Lat))
		values.Set("lon", fmt.Sprintf("%f", loc.Lon))
		values.Set("key", s.apiKey)

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", s.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, s.name, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload iqairPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &airquality.SourceError{Kind: airquality.ErrKindSchema, Source: s.name, Err: err}
	}

	return s.measurements(payload), nil
}

// measurements maps the payload onto the common schema. Fields that are
// missing or fail to convert are skipped or flagged, never fatal: partial
// success beats no data.
func (s *IQAirSource) measurements(payload iqairPayload) []airquality.Measurement {
	var out []airquality.Measurement

	now := time.Now().UTC()
	origin := fmt.Sprintf("IQAir - %s", payload.Data.City)
	pollution := payload.Data.Current.Pollution

	// PM2.5 arrives as a US AQI value.
	if aqi := pollution.AQIUS; aqi > 0 {
		if conc, err := airquality.ConvertIndex(aqi, airquality.PollutantPM25, s.profile); err == nil {
			m, err := airquality.NewMeasurement(
				airquality.PollutantPM25, conc, s.profile.Unit(airquality.PollutantPM25), origin, s.profile, now)
			if err == nil {
				raw := aqi
				m.RawIndex = &raw
				out = append(out, m)
			}
		}
	}

	gases := []struct {
		pollutant airquality.Pollutant
		value     float64
	}{
		{airquality.PollutantNO2, pollution.NO2},
		{airquality.PollutantO3, pollution.O3},
		{airquality.PollutantSO2, pollution.SO2},
		{airquality.PollutantCO, pollution.CO},
	}

	for _, g := range gases {
		if g.value <= 0 {
			continue
		}

		value := g.value
		lowConfidence := false

		// IQAir reports CO in mg/m³ when the value is small; scale it to
		// the profile unit instead of classifying the wrong magnitude.
		if g.pollutant == airquality.PollutantCO && value < 10 {
			converted, err := s.units.Convert(value, "mg/m³", s.profile.Unit(g.pollutant), g.pollutant)
			if err != nil {
				lowConfidence = true
			} else {
				value = converted
			}
		}

		m, err := airquality.NewMeasurement(g.pollutant, value, s.profile.Unit(g.pollutant), origin, s.profile, now)
		if err != nil {
			continue
		}
		m.LowConfidence = lowConfidence
		out = append(out, m)
	}

	return out
}

var _ airquality.Source = (*IQAirSource)(nil)
