package airquality

import "fmt"

// Breakpoint maps one dimensionless index range linearly onto a
// concentration range.
type Breakpoint struct {
	IndexLow  float64
	IndexHigh float64
	ConcLow   float64
	ConcHigh  float64
}

// ConvertIndex converts a dimensionless air-quality index into a physical
// concentration using the profile's breakpoint table for the pollutant.
//
// An index below the first breakpoint falls into the first segment, whose
// formula extrapolates from zero. An index above the last defined
// breakpoint keeps the last segment's slope, open-ended.
func ConvertIndex(index float64, p Pollutant, profile *Profile) (float64, error) {
	table, ok := profile.Breakpoints[p]
	if !ok || len(table) == 0 {
		return 0, &SourceError{
			Kind: ErrKindConversion,
			Err:  fmt.Errorf("no %s breakpoint table for pollutant %s", profile.ID, p),
		}
	}
	if index < 0 {
		return 0, &SourceError{
			Kind: ErrKindConversion,
			Err:  fmt.Errorf("negative index %f", index),
		}
	}

	seg := table[0]
	for _, bp := range table {
		seg = bp
		if index <= bp.IndexHigh {
			break
		}
	}

	return interpolate(index, seg), nil
}

func interpolate(index float64, bp Breakpoint) float64 {
	// Discrete tables leave a one-point gap between segments; indices
	// inside it clamp to the segment floor so conversion stays monotone.
	if index < bp.IndexLow {
		index = bp.IndexLow
	}
	span := bp.IndexHigh - bp.IndexLow
	if span <= 0 {
		return bp.ConcLow
	}
	return bp.ConcLow + (index-bp.IndexLow)*(bp.ConcHigh-bp.ConcLow)/span
}

// ValidateBreakpoints checks a table for the properties conversion relies
// on: ascending segments, non-decreasing concentrations, and contiguity.
// Adjacent segments either share an endpoint or sit one index point apart
// (the discrete EPA style); any larger gap would leave indices unmapped.
func ValidateBreakpoints(table []Breakpoint) error {
	if len(table) == 0 {
		return fmt.Errorf("empty breakpoint table")
	}
	for i, bp := range table {
		if bp.IndexHigh <= bp.IndexLow {
			return fmt.Errorf("segment %d: index range [%f, %f] not ascending", i, bp.IndexLow, bp.IndexHigh)
		}
		if bp.ConcHigh < bp.ConcLow {
			return fmt.Errorf("segment %d: concentration range [%f, %f] decreasing", i, bp.ConcLow, bp.ConcHigh)
		}
		if i == 0 {
			continue
		}
		prev := table[i-1]
		gap := bp.IndexLow - prev.IndexHigh
		if gap < 0 || gap > 1 {
			return fmt.Errorf("segment %d: index gap %f after %f", i, gap, prev.IndexHigh)
		}
		if bp.ConcLow < prev.ConcHigh {
			return fmt.Errorf("segment %d: concentration overlap at boundary", i)
		}
	}
	return nil
}
