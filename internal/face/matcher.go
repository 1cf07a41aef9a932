package face

import "math"

// DefaultThreshold is the Euclidean distance below which two descriptors are
// considered the same face. Tuned against the upstream extractor's
// calibration; changing it invalidates every enrolled descriptor.
const DefaultThreshold = 0.5

// Matcher decides whether two descriptors represent the same face.
// Implementations must fail closed: malformed input is a non-match, never a panic.
type Matcher interface {
	Matches(live, stored Descriptor) bool
}

// Euclidean matches descriptors by straight-line distance.
type Euclidean struct {
	Threshold float64
}

// NewEuclidean returns a matcher with the calibrated default threshold.
func NewEuclidean() Euclidean {
	return Euclidean{Threshold: DefaultThreshold}
}

// Matches reports whether the distance between the two vectors is below the
// threshold. Empty or length-mismatched vectors never match.
func (m Euclidean) Matches(live, stored Descriptor) bool {
	if len(live) == 0 || len(stored) == 0 || len(live) != len(stored) {
		return false
	}
	var sum float64
	for i := range live {
		diff := live[i] - stored[i]
		sum += diff * diff
	}
	return math.Sqrt(sum) < m.Threshold
}
