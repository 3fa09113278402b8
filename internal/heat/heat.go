// Package heat quantizes metric values into a fixed diverging color ramp.
package heat

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Buckets is the ramp size; Bucket always returns [0, Buckets-1].
const Buckets = 10

// Palette is the diverging ramp: deep purple (heavy puts) through teal/green
// to bright yellow (heavy calls). The exact colors are cosmetic, the shape
// (dark negative, bright positive, neutral middle) is what matters.
var Palette = [Buckets]string{
	"#3b0a57", "#572a7a", "#4f4fa0", "#2e7b8f", "#2aa198",
	"#3aa56e", "#6cc04f", "#a7d642", "#e4e13a", "#ffd41a",
}

// Bucket linearly maps value from [-maxAbs, +maxAbs] onto [0, 9], clamping at
// the window edges. A non-positive window maps everything to bucket 0. Total
// over its domain and monotonic in value.
func Bucket(value, maxAbs float64) int {
	if maxAbs <= 0 {
		return 0
	}
	x := math.Max(-maxAbs, math.Min(maxAbs, value))
	t := (x + maxAbs) / (2 * maxAbs) // 0..1
	b := int(math.Floor(t * Buckets))
	if b > Buckets-1 {
		b = Buckets - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}

// WindowMax returns the largest absolute value in the matrix, the
// normalization window Bucket expects. Empty input yields 0, which Bucket
// treats as "everything neutral".
func WindowMax(matrix [][]float64) float64 {
	var abs []float64
	for _, row := range matrix {
		for _, v := range row {
			abs = append(abs, math.Abs(v))
		}
	}
	if len(abs) == 0 {
		return 0
	}
	max, err := stats.Max(abs)
	if err != nil {
		return 0
	}
	return max
}

// BucketMatrix quantizes a whole matrix against its own window.
func BucketMatrix(matrix [][]float64) [][]int {
	maxAbs := WindowMax(matrix)
	out := make([][]int, len(matrix))
	for r, row := range matrix {
		out[r] = make([]int, len(row))
		for c, v := range row {
			out[r][c] = Bucket(v, maxAbs)
		}
	}
	return out
}
