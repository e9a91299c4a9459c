package airquality

import "fmt"

// unitPair keys a registered conversion factor.
type unitPair struct {
	Pollutant Pollutant
	From      string
	To        string
}

// UnitConverter converts between mass and volumetric concentration units
// using pollutant-specific multiplicative factors. The factors are rough
// approximations at standard conditions and apply no temperature or
// pressure correction.
type UnitConverter struct {
	factors map[unitPair]float64
}

// NewUnitConverter returns a converter with the default factor registry.
func NewUnitConverter() *UnitConverter {
	c := &UnitConverter{factors: make(map[unitPair]float64)}

	c.Register(PollutantNO2, "µg/m³", "ppb", 0.53)
	c.Register(PollutantO3, "µg/m³", "ppb", 0.50)
	c.Register(PollutantSO2, "µg/m³", "ppb", 0.38)
	c.Register(PollutantCO, "µg/m³", "ppm", 0.00087)
	c.Register(PollutantCO, "mg/m³", "ppm", 0.87)

	return c
}

// Register adds or overrides a conversion factor.
func (c *UnitConverter) Register(p Pollutant, from, to string, factor float64) {
	c.factors[unitPair{Pollutant: p, From: from, To: to}] = factor
}

// Convert scales value from one unit to another. It fails with a
// conversion-kind error when no factor is registered for the pair; callers
// must keep the unconverted value and flag it rather than mis-scale.
func (c *UnitConverter) Convert(value float64, from, to string, p Pollutant) (float64, error) {
	if from == to {
		return value, nil
	}
	factor, ok := c.factors[unitPair{Pollutant: p, From: from, To: to}]
	if !ok {
		return value, &SourceError{
			Kind: ErrKindConversion,
			Err:  fmt.Errorf("unsupported conversion %s -> %s for %s", from, to, p),
		}
	}
	return value * factor, nil
}
