package catalog

import "math/rand/v2"

// Synthetic metric ranges, inclusive
const (
	MaxScore   = 180
	MaxLike    = 10000
	MaxDislike = 10000
)

// MetricSource returns a value in [0, n). It must be safe for concurrent use.
type MetricSource func(n int) int

// RandomMetrics draws placeholder metrics from the shared math/rand/v2 source
func RandomMetrics(n int) int {
	return rand.IntN(n)
}

// FixedMetrics returns a MetricSource that always yields v, clamped to range
func FixedMetrics(v int) MetricSource {
	return func(n int) int {
		if v >= n {
			return n - 1
		}
		return v
	}
}
