package timeseries

import (
	"fmt"
	"time"
)

// CreateTimePoints builds an evenly spaced time grid starting at start
// with the given period, sized for n values of the given
// representation. Point grids have n entries; average grids get the
// extra closing boundary, n+1 entries for n interval averages.
func CreateTimePoints(start time.Time, period time.Duration, n int, rep Representation) []time.Time {
	if n <= 0 {
		return nil
	}
	count := n
	if rep == Average {
		count++
	}
	points := make([]time.Time, count)
	// Step point by point. Multiplying the period overflows time.Duration
	// on multi-century grids.
	cur := start
	for i := range points {
		points[i] = cur
		cur = cur.Add(period)
	}
	return points
}

// unixSeconds maps an instant to Unix seconds with sub-second
// precision. All grid arithmetic runs on this representation.
func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// newGrid converts a time grid to Unix seconds, validating that it has
// at least two points and is strictly increasing.
func newGrid(points []time.Time) ([]float64, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 time points, got %d", ErrInvalidGrid, len(points))
	}
	grid := make([]float64, len(points))
	for i, p := range points {
		grid[i] = unixSeconds(p)
		if i > 0 && grid[i] <= grid[i-1] {
			return nil, fmt.Errorf("%w: time points must be strictly increasing at index %d", ErrInvalidGrid, i)
		}
	}
	return grid, nil
}

// valueCount is the number of values a grid carries in the given
// representation.
func valueCount(grid []float64, rep Representation) int {
	if rep == Average {
		return len(grid) - 1
	}
	return len(grid)
}
