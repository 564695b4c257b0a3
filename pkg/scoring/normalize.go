package scoring

import "math"

// Per-metric rounding precision, in decimal places. These bound the
// resolution at which two normalized values compare equal, which decides
// the gap bucket a comparison falls into. Changing them changes scoring
// outcomes, so they are fixed here rather than configurable.
const (
	PrecisionEngagementRate = 3
	PrecisionReach          = 5
	PrecisionAudiencePct    = 2
	PrecisionRateCard       = 7
)

// Bounds holds the configured maxima used for normalization. Read-only at
// computation time; validated > 0 at config load.
type Bounds struct {
	MaxEngagementRate float64
	MaxReach          float64
	MaxAudiencePct    float64
	MaxRateCard       float64
}

// DefaultBounds returns the standard scale maxima.
func DefaultBounds() Bounds {
	return Bounds{
		MaxEngagementRate: 10,
		MaxReach:          100000,
		MaxAudiencePct:    100,
		MaxRateCard:       10000000,
	}
}

// Normalize maps a raw metric into [0,1] against a configured maximum.
// Values above the maximum clamp to 1, never error. With inverse set the
// scale flips (lower raw value scores higher), used for cost metrics.
func Normalize(value, max float64, inverse bool) float64 {
	ratio := value / max
	if ratio > 1 {
		ratio = 1
	}
	if inverse {
		return 1 - ratio
	}
	return ratio
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
