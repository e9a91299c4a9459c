package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/blueforce/skyshield/internal/airquality"
)

const (
	openaqRadiusMeters = 25000
	openaqLimit        = 15
	openaqMaxStations  = 8
)

// openaqNames maps OpenAQ parameter names onto the closed pollutant set.
// Unknown parameters are dropped, not errored.
var openaqNames = map[string]airquality.Pollutant{
	"PM25": airquality.PollutantPM25,
	"PM10": airquality.PollutantPM10,
	"NO2":  airquality.PollutantNO2,
	"O3":   airquality.PollutantO3,
	"SO2":  airquality.PollutantSO2,
	"CO":   airquality.PollutantCO,
	"CO2":  airquality.PollutantCO2,
}

// OpenAQSource is the secondary provider: ground-station measurements
// within a radius of the configured coordinates. Stations report mass
// concentrations, which are normalized to the profile's units.
type OpenAQSource struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	profile *airquality.Profile
	units   *airquality.UnitConverter
}

func NewOpenAQSource(client *http.Client, profile *airquality.Profile, units *airquality.UnitConverter) *OpenAQSource {
	return &OpenAQSource{
		name:    "openaq",
		baseURL: "https://api.openaq.org/v2/latest",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("openaq"),
		profile: profile,
		units:   units,
	}
}

func (s *OpenAQSource) Name() string { return s.name }

type openaqPayload struct {
	Results []struct {
		Location     string `json:"location"`
		Measurements []struct {
			Parameter string  `json:"parameter"`
			Value     float64 `json:"value"`
			Unit      string  `json:"unit"`
		} `json:"measurements"`
	} `json:"results"`
}

func (s *OpenAQSource) Fetch(ctx context.Context, loc airquality.Location) ([]airquality.Measurement, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("coordinates", fmt.Sprintf("%f,%f", loc.Lat, loc.Lon))
		values.Set("radius", fmt.Sprintf("%d", openaqRadiusMeters))
		values.Set("limit", fmt.Sprintf("%d", openaqLimit))

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", s.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, s.name, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openaqPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &airquality.SourceError{Kind: airquality.ErrKindSchema, Source: s.name, Err: err}
	}

	return s.measurements(payload), nil
}

func (s *OpenAQSource) measurements(payload openaqPayload) []airquality.Measurement {
	var out []airquality.Measurement

	now := time.Now().UTC()

	stations := payload.Results
	if len(stations) > openaqMaxStations {
		stations = stations[:openaqMaxStations]
	}

	for _, station := range stations {
		stationName := station.Location
		if stationName == "" {
			stationName = "Unknown"
		}
		origin := fmt.Sprintf("OpenAQ: %s", stationName)

		for _, reading := range station.Measurements {
			pollutant, ok := openaqNames[normalizeParameter(reading.Parameter)]
			if !ok {
				continue
			}

			value := reading.Value
			unit := normalizeUnit(reading.Unit)
			lowConfidence := false

			// Normalize station units to the active profile's units; an
			// unsupported pair keeps the raw value and flags it instead
			// of silently mis-scaling.
			if target := s.profile.Unit(pollutant); target != "" && unit != target {
				converted, err := s.units.Convert(value, unit, target, pollutant)
				if err != nil {
					lowConfidence = true
				} else {
					value = converted
					unit = target
				}
			}

			m, err := airquality.NewMeasurement(pollutant, value, unit, origin, s.profile, now)
			if err != nil {
				continue
			}
			m.LowConfidence = lowConfidence
			out = append(out, m)
		}
	}

	return out
}

// normalizeParameter uppercases and strips separators so "pm2.5", "pm25"
// and "PM2_5" all land on the same lookup key.
func normalizeParameter(p string) string {
	p = strings.ToUpper(p)
	return strings.NewReplacer(".", "", "_", "", " ", "").Replace(p)
}

// normalizeUnit maps the µ/μ spelling variants stations use onto the
// profile's canonical µg/m³ tag.
func normalizeUnit(u string) string {
	switch u {
	case "µg/m³", "μg/m³", "ug/m3", "µg/m3":
		return "µg/m³"
	case "mg/m³", "mg/m3":
		return "mg/m³"
	default:
		return u
	}
}

var _ airquality.Source = (*OpenAQSource)(nil)
