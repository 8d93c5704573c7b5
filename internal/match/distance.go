package match

import (
	"math"

	"github.com/mstanek/rollcall/internal/gallery"
)

// EuclideanDistance computes the L2 distance between two embeddings.
// Vectors of different lengths yield +Inf, which can never win a threshold
// comparison; callers validate dimensionality before scanning.
func EuclideanDistance(a, b gallery.Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
