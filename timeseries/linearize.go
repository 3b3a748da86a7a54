package timeseries

// linearizationTimes returns the support abscissae for the continuous
// form of an average series: every interval boundary plus every
// interval midpoint, 2N+1 points for a grid of N+1 boundaries.
func linearizationTimes(bounds []float64) []float64 {
	out := make([]float64, 0, 2*len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		out = append(out, bounds[i], (bounds[i]+bounds[i+1])/2)
	}
	return append(out, bounds[len(bounds)-1])
}

// linearizationValues returns the ordinates matching linearizationTimes
// for N interval averages. Boundary values are the means of the
// adjacent intervals, linearly extrapolated at the two ends; each
// midpoint value is then fixed so that the piecewise-linear interpolant
// integrates over its interval to exactly the supplied average.
// Needs at least two values.
func linearizationValues(values []float64) []float64 {
	n := len(values)
	bounds := make([]float64, n+1)
	for j := 1; j < n; j++ {
		bounds[j] = (values[j-1] + values[j]) / 2
	}
	bounds[0] = 2*values[0] - bounds[1]
	bounds[n] = 2*values[n-1] - bounds[n-1]

	out := make([]float64, 0, 2*n+1)
	for i := 0; i < n; i++ {
		// Average over the interval is (bounds[i] + 2*mid + bounds[i+1])/4.
		mid := (4*values[i] - bounds[i] - bounds[i+1]) / 2
		out = append(out, bounds[i], mid)
	}
	return append(out, bounds[n])
}
