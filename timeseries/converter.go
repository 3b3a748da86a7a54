package timeseries

import (
	"fmt"
	"time"
)

// Converter resamples value arrays between a source and a target time
// grid sharing one representation. It is immutable after construction
// and safe for concurrent use; the grid support, including the
// linearization abscissae for average series, is computed once here and
// never per call.
type Converter struct {
	source []float64
	target []float64
	rep    Representation
	interp InterpolationType
	extrap ExtrapolationType

	sourceLin []float64
	targetLin []float64
}

// NewConverter builds a converter between two time grids. Both grids
// must hold at least two strictly increasing time points, and the
// representation, interpolation and extrapolation values must be known.
func NewConverter(source, target []time.Time, rep Representation, interp InterpolationType, extrap ExtrapolationType) (*Converter, error) {
	switch rep {
	case Point, Average:
	default:
		return nil, fmt.Errorf("unknown representation %v", rep)
	}
	if interp != InterpolationLinear {
		return nil, fmt.Errorf("unsupported interpolation type %v", interp)
	}
	switch extrap {
	case ExtrapolationNone, ExtrapolationConstant, ExtrapolationLinear:
	default:
		return nil, fmt.Errorf("unknown extrapolation type %v", extrap)
	}

	src, err := newGrid(source)
	if err != nil {
		return nil, fmt.Errorf("source grid: %w", err)
	}
	tgt, err := newGrid(target)
	if err != nil {
		return nil, fmt.Errorf("target grid: %w", err)
	}

	c := &Converter{
		source: src,
		target: tgt,
		rep:    rep,
		interp: interp,
		extrap: extrap,
	}
	if rep == Average {
		c.sourceLin = linearizationTimes(src)
		c.targetLin = linearizationTimes(tgt)
	}
	return c, nil
}

// ConvertFrom resamples values on the source grid onto the target grid.
func (c *Converter) ConvertFrom(values []float64) ([]float64, error) {
	return c.convert(values, c.source, c.sourceLin, c.target)
}

// ConvertTo resamples values on the target grid onto the source grid.
func (c *Converter) ConvertTo(values []float64) ([]float64, error) {
	return c.convert(values, c.target, c.targetLin, c.source)
}

func (c *Converter) convert(values, from, fromLin, to []float64) ([]float64, error) {
	if len(values) < 3 {
		return nil, &InsufficientDataError{
			Reason: fmt.Sprintf("timeseries too short to convert, length %d", len(values)),
		}
	}
	if want := valueCount(from, c.rep); len(values) != want {
		return nil, &ShapeMismatchError{Want: want, Got: len(values)}
	}
	if c.extrap == ExtrapolationNone &&
		(to[0] < from[0] || to[len(to)-1] > from[len(from)-1]) {
		return nil, &InsufficientDataError{
			Reason: "target time points are outside the source time points, " +
				"use an extrapolation type other than none",
		}
	}

	if c.rep == Average {
		ip := newInterpolant(fromLin, linearizationValues(values), c.extrap)
		out := make([]float64, len(to)-1)
		for j := range out {
			out[j] = ip.integral(to[j], to[j+1]) / (to[j+1] - to[j])
		}
		return out, nil
	}

	ip := newInterpolant(from, values, c.extrap)
	out := make([]float64, len(to))
	for j, x := range to {
		out[j] = ip.at(x)
	}
	return out, nil
}

// SourceLength is the number of values a source-grid series carries.
func (c *Converter) SourceLength() int { return valueCount(c.source, c.rep) }

// TargetLength is the number of values a target-grid series carries.
func (c *Converter) TargetLength() int { return valueCount(c.target, c.rep) }

// Representation returns the representation both grids share.
func (c *Converter) Representation() Representation { return c.rep }

// Interpolation returns the interpolation type.
func (c *Converter) Interpolation() InterpolationType { return c.interp }

// Extrapolation returns the extrapolation type.
func (c *Converter) Extrapolation() ExtrapolationType { return c.extrap }
