package layout

import "slices"

// Relax pushes apart neighbouring positions closer than r. Each iteration
// compares every adjacent pair, accumulates half of the overlap on each side
// and then applies all deltas at once. xs is not modified.
func Relax(xs []float64, r float64, iterations int) []float64 {
	out := slices.Clone(xs)
	delta := make([]float64, len(out))
	for range iterations {
		clear(delta)
		for i := 1; i < len(out); i++ {
			if d := (out[i] - out[i-1]) - r; d < 0 {
				delta[i-1] += 0.5 * d
				delta[i] -= 0.5 * d
			}
		}
		for i := range out {
			out[i] += delta[i]
		}
	}
	return out
}
