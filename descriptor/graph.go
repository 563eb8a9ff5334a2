package descriptor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DownsampleGraph reduces an oversized sample buffer to at most max points by
// bucket-averaging, preserving the overall min/max envelope so peaks survive
// the reduction. Buffers already within the limit are returned copied but
// otherwise untouched. It is a convenience for callers feeding live telemetry
// into GraphElement; nothing applies it implicitly.
func DownsampleGraph(samples []float64, max int) []float64 {
	if max <= 0 {
		max = MaxGraphPoints
	}
	if max > MaxGraphPoints {
		max = MaxGraphPoints
	}
	if len(samples) == 0 {
		return nil
	}
	if len(samples) <= max {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}

	lo := floats.Min(samples)
	hi := floats.Max(samples)

	out := make([]float64, max)
	size := float64(len(samples)) / float64(max)
	for i := 0; i < max; i++ {
		start := int(float64(i) * size)
		end := int(float64(i+1) * size)
		if end > len(samples) {
			end = len(samples)
		}
		if start >= end {
			start = end - 1
		}
		out[i] = clamp(stat.Mean(samples[start:end], nil), lo, hi)
	}
	return out
}
