package airquality

import "fmt"

// Threshold holds the health boundaries for one pollutant under a given
// standard. Boundaries are non-decreasing: GoodMax < ModerateMax < BadMax.
type Threshold struct {
	GoodMax      float64
	ModerateMax  float64
	BadMax       float64
	Unit         string
	GoodDesc     string
	ModerateDesc string
	BadDesc      string
}

// Profile is the threshold table for one regulatory standard. It is loaded
// once at startup and treated as read-only for the process lifetime.
type Profile struct {
	ID         string
	Standard   string
	Thresholds map[Pollutant]Threshold

	// Breakpoints are the per-pollutant AQI conversion tables for this
	// standard. Pollutants without a table cannot be index-derived.
	Breakpoints map[Pollutant][]Breakpoint
}

// Unit returns the concentration unit the profile expects for a pollutant,
// or empty when the pollutant carries no thresholds.
func (p *Profile) Unit(pollutant Pollutant) string {
	if t, ok := p.Thresholds[pollutant]; ok {
		return t.Unit
	}
	return ""
}

// ProfileByID resolves a configured profile identifier. An unknown ID is a
// startup misconfiguration.
func ProfileByID(id string) (*Profile, error) {
	switch id {
	case "us-epa":
		return usEPAProfile, nil
	case "id-klhk":
		return idKLHKProfile, nil
	default:
		return nil, &SourceError{Kind: ErrKindConfig, Err: fmt.Errorf("unknown threshold profile %q", id)}
	}
}

// usEPAProfile carries the US EPA boundaries used for the New York region.
var usEPAProfile = &Profile{
	ID:       "us-epa",
	Standard: "US EPA",
	Thresholds: map[Pollutant]Threshold{
		PollutantPM25: {
			GoodMax: 12, ModerateMax: 35, BadMax: 55, Unit: "µg/m³",
			GoodDesc:     "Good - healthy air quality",
			ModerateDesc: "Moderate - acceptable air quality",
			BadDesc:      "Unhealthy - sensitive groups affected",
		},
		PollutantPM10: {
			GoodMax: 54, ModerateMax: 154, BadMax: 254, Unit: "µg/m³",
			GoodDesc:     "Good - healthy air quality",
			ModerateDesc: "Moderate - acceptable air quality",
			BadDesc:      "Unhealthy - sensitive groups affected",
		},
		PollutantNO2: {
			GoodMax: 53, ModerateMax: 100, BadMax: 360, Unit: "ppb",
			GoodDesc:     "Good - low vehicle pollution",
			ModerateDesc: "Moderate - medium vehicle pollution",
			BadDesc:      "Unhealthy - high vehicle pollution",
		},
		PollutantO3: {
			GoodMax: 54, ModerateMax: 70, BadMax: 85, Unit: "ppb",
			GoodDesc:     "Good - low ozone levels",
			ModerateDesc: "Moderate - increased ozone",
			BadDesc:      "Unhealthy - high ozone levels",
		},
		PollutantSO2: {
			GoodMax: 35, ModerateMax: 75, BadMax: 185, Unit: "ppb",
			GoodDesc:     "Good - low industrial pollution",
			ModerateDesc: "Moderate - medium industrial pollution",
			BadDesc:      "Unhealthy - high industrial pollution",
		},
		PollutantCO: {
			GoodMax: 4.4, ModerateMax: 9.4, BadMax: 12.4, Unit: "ppm",
			GoodDesc:     "Good - clean combustion",
			ModerateDesc: "Moderate - incomplete combustion",
			BadDesc:      "Unhealthy - poor combustion",
		},
	},
	Breakpoints: map[Pollutant][]Breakpoint{
		PollutantPM25: {
			{IndexLow: 0, IndexHigh: 50, ConcLow: 0, ConcHigh: 12.0},
			{IndexLow: 51, IndexHigh: 100, ConcLow: 12.1, ConcHigh: 35.4},
			{IndexLow: 101, IndexHigh: 150, ConcLow: 35.5, ConcHigh: 55.4},
			{IndexLow: 151, IndexHigh: 200, ConcLow: 55.5, ConcHigh: 150.4},
			{IndexLow: 201, IndexHigh: 300, ConcLow: 150.5, ConcHigh: 250.4},
			{IndexLow: 301, IndexHigh: 400, ConcLow: 250.5, ConcHigh: 350.4},
			{IndexLow: 401, IndexHigh: 500, ConcLow: 350.5, ConcHigh: 500.4},
		},
		PollutantPM10: {
			{IndexLow: 0, IndexHigh: 50, ConcLow: 0, ConcHigh: 54},
			{IndexLow: 51, IndexHigh: 100, ConcLow: 55, ConcHigh: 154},
			{IndexLow: 101, IndexHigh: 150, ConcLow: 155, ConcHigh: 254},
			{IndexLow: 151, IndexHigh: 200, ConcLow: 255, ConcHigh: 354},
			{IndexLow: 201, IndexHigh: 300, ConcLow: 355, ConcHigh: 424},
			{IndexLow: 301, IndexHigh: 500, ConcLow: 425, ConcHigh: 604},
		},
	},
}

// idKLHKProfile carries the Indonesian KLHK boundaries used for the
// Jakarta region. Gas thresholds are mass concentrations under this
// standard, so OpenAQ readings need no volumetric conversion here.
var idKLHKProfile = &Profile{
	ID:       "id-klhk",
	Standard: "Indonesian KLHK",
	Thresholds: map[Pollutant]Threshold{
		PollutantPM25: {
			GoodMax: 15, ModerateMax: 35, BadMax: 55, Unit: "µg/m³",
			GoodDesc:     "Good - healthy air quality",
			ModerateDesc: "Moderate - acceptable air quality",
			BadDesc:      "Unhealthy - sensitive groups affected",
		},
		PollutantPM10: {
			GoodMax: 50, ModerateMax: 100, BadMax: 250, Unit: "µg/m³",
			GoodDesc:     "Good - healthy air quality",
			ModerateDesc: "Moderate - acceptable air quality",
			BadDesc:      "Unhealthy - sensitive groups affected",
		},
		PollutantNO2: {
			GoodMax: 80, ModerateMax: 150, BadMax: 400, Unit: "µg/m³",
			GoodDesc:     "Good - low vehicle pollution",
			ModerateDesc: "Moderate - medium vehicle pollution",
			BadDesc:      "Unhealthy - high vehicle pollution",
		},
		PollutantO3: {
			GoodMax: 80, ModerateMax: 120, BadMax: 180, Unit: "µg/m³",
			GoodDesc:     "Good - low ozone levels",
			ModerateDesc: "Moderate - increased ozone",
			BadDesc:      "Unhealthy - high ozone levels",
		},
		PollutantSO2: {
			GoodMax: 50, ModerateMax: 100, BadMax: 300, Unit: "µg/m³",
			GoodDesc:     "Good - low industrial pollution",
			ModerateDesc: "Moderate - medium industrial pollution",
			BadDesc:      "Unhealthy - high industrial pollution",
		},
		PollutantCO: {
			GoodMax: 2, ModerateMax: 5, BadMax: 10, Unit: "mg/m³",
			GoodDesc:     "Good - clean combustion",
			ModerateDesc: "Moderate - incomplete combustion",
			BadDesc:      "Unhealthy - poor combustion",
		},
	},
	Breakpoints: map[Pollutant][]Breakpoint{
		// ISPU-style PM2.5 table; segments share endpoints.
		PollutantPM25: {
			{IndexLow: 0, IndexHigh: 50, ConcLow: 0, ConcHigh: 15.5},
			{IndexLow: 50, IndexHigh: 100, ConcLow: 15.5, ConcHigh: 55.4},
			{IndexLow: 100, IndexHigh: 200, ConcLow: 55.4, ConcHigh: 150.4},
			{IndexLow: 200, IndexHigh: 300, ConcLow: 150.4, ConcHigh: 250.4},
			{IndexLow: 300, IndexHigh: 500, ConcLow: 250.4, ConcHigh: 500},
		},
	},
}
