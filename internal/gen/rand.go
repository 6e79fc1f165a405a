package gen

import (
	"math/rand"
)

// weightedIndex draws an index from weights, which must sum to ~1.0.
// The draw consumes exactly one value from r so that callers can rely on a
// stable draw sequence for reproducibility.
func weightedIndex(r *rand.Rand, weights []float64) int {
	roll := r.Float64()
	var cum float64
	for i, w := range weights {
		cum += w
		if roll < cum {
			return i
		}
	}
	// Guard against floating-point underflow when the weights sum to
	// slightly less than 1.0.
	return len(weights) - 1
}
