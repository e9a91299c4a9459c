package airquality

// Classify maps a (pollutant, concentration) pair to a health rating under
// the given profile. Boundary values belong to the safer bucket: a value
// exactly at GoodMax is GOOD, exactly at ModerateMax is MODERATE.
func Classify(p Pollutant, value float64, profile *Profile) (Rating, string, string) {
	t, ok := profile.Thresholds[p]
	if !ok {
		return RatingUnknown, RatingUnknown.Indicator(), "No rating available"
	}

	switch {
	case value <= t.GoodMax:
		return RatingGood, RatingGood.Indicator(), t.GoodDesc
	case value <= t.ModerateMax:
		return RatingModerate, RatingModerate.Indicator(), t.ModerateDesc
	case value <= t.BadMax:
		return RatingUnhealthy, RatingUnhealthy.Indicator(), t.BadDesc
	default:
		return RatingVeryUnhealthy, RatingVeryUnhealthy.Indicator(), "Dangerous pollution levels"
	}
}
