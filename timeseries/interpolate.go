package timeseries

import (
	"math"
	"sort"
)

// interpolant is a piecewise-linear function through (xs, ys) knots,
// extended beyond the knot span according to the extrapolation type.
// Outside the span with ExtrapolationNone it evaluates to NaN; callers
// check bounds before evaluating.
type interpolant struct {
	xs     []float64
	ys     []float64
	extrap ExtrapolationType
	// area[i] is the integral of the interpolant from xs[0] to xs[i].
	area []float64
}

func newInterpolant(xs, ys []float64, extrap ExtrapolationType) *interpolant {
	area := make([]float64, len(xs))
	for i := 1; i < len(xs); i++ {
		area[i] = area[i-1] + (ys[i-1]+ys[i])/2*(xs[i]-xs[i-1])
	}
	return &interpolant{xs: xs, ys: ys, extrap: extrap, area: area}
}

// at evaluates the interpolant.
func (p *interpolant) at(x float64) float64 {
	i := sort.SearchFloat64s(p.xs, x)
	switch {
	case i == 0:
		if x == p.xs[0] {
			return p.ys[0]
		}
		return p.extendLeft(x)
	case i == len(p.xs):
		return p.extendRight(x)
	default:
		x0, x1 := p.xs[i-1], p.xs[i]
		y0, y1 := p.ys[i-1], p.ys[i]
		return y0 + (y1-y0)*(x-x0)/(x1-x0)
	}
}

// integral is the definite integral of the interpolant from a to b,
// a <= b. It is exact: every piece, extensions included, is linear.
func (p *interpolant) integral(a, b float64) float64 {
	return p.cumulative(b) - p.cumulative(a)
}

// cumulative is the signed integral from xs[0] to x.
func (p *interpolant) cumulative(x float64) float64 {
	i := sort.SearchFloat64s(p.xs, x)
	switch {
	case i == 0:
		if x == p.xs[0] {
			return 0
		}
		return -(p.at(x) + p.ys[0]) / 2 * (p.xs[0] - x)
	case i == len(p.xs):
		last := len(p.xs) - 1
		return p.area[last] + (p.ys[last]+p.at(x))/2*(x-p.xs[last])
	default:
		return p.area[i-1] + (p.ys[i-1]+p.at(x))/2*(x-p.xs[i-1])
	}
}

func (p *interpolant) extendLeft(x float64) float64 {
	switch p.extrap {
	case ExtrapolationConstant:
		return p.ys[0]
	case ExtrapolationLinear:
		slope := (p.ys[1] - p.ys[0]) / (p.xs[1] - p.xs[0])
		return p.ys[0] + slope*(x-p.xs[0])
	default:
		return math.NaN()
	}
}

func (p *interpolant) extendRight(x float64) float64 {
	last := len(p.xs) - 1
	switch p.extrap {
	case ExtrapolationConstant:
		return p.ys[last]
	case ExtrapolationLinear:
		slope := (p.ys[last] - p.ys[last-1]) / (p.xs[last] - p.xs[last-1])
		return p.ys[last] + slope*(x-p.xs[last])
	default:
		return math.NaN()
	}
}
