package core

// Classify maps a care score onto a tier. Thresholds are inclusive. A
// negative score is the sentinel for an unobtainable score and always maps
// to TierNone.
func Classify(score, redMin, blueMin float64) Tier {
	switch {
	case score < 0:
		return TierNone
	case score >= redMin:
		return TierRed
	case score >= blueMin:
		return TierBlue
	default:
		return TierNone
	}
}
