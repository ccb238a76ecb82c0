package dataprocessing

import (
	"glucli/pkg/contracts/domain"
)

// Classify maps a glucose value to its severity band. The bands
// partition the number line with no overlap; each boundary value
// belongs to the band it names (Low is exclusive at its upper edge,
// High starts at the high threshold, VeryHigh at the very-high one).
func Classify(value float64, t domain.Thresholds) domain.Band {
	switch {
	case value < t.Low:
		return domain.BandLow
	case value < t.High:
		return domain.BandNormal
	case value < t.VeryHigh:
		return domain.BandHigh
	default:
		return domain.BandVeryHigh
	}
}
