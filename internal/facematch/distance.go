package facematch

import (
	"fmt"
	"math"
)

// EuclideanDistance returns sqrt(sum((a[i]-b[i])^2)), accumulated in float64.
func EuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: length %d vs %d", ErrInvalidInput, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Score converts a distance into a display score in [0, 1].
// It is never used to accept or reject a match.
func Score(distance, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	return math.Max(0, 1-distance/scale)
}

func validVector(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
