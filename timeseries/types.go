package timeseries

import (
	"fmt"
	"strings"
)

// Representation states what the values of a series mean relative to
// its time grid.
type Representation int

const (
	// Point series hold instantaneous samples, one per grid time.
	Point Representation = iota
	// Average series hold interval averages, one per pair of
	// consecutive grid boundaries. A grid of N+1 boundaries carries N
	// values.
	Average
)

func (r Representation) String() string {
	switch r {
	case Point:
		return "point"
	case Average:
		return "average"
	default:
		return fmt.Sprintf("representation(%d)", int(r))
	}
}

// ParseRepresentation resolves a configuration string to a
// Representation.
func ParseRepresentation(s string) (Representation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point":
		return Point, nil
	case "average":
		return Average, nil
	default:
		return 0, fmt.Errorf("unknown representation %q", s)
	}
}

// InterpolationType selects the continuous interpolant built over the
// source series.
type InterpolationType int

// InterpolationLinear is a piecewise-linear interpolant. It is the only
// supported interpolation type.
const InterpolationLinear InterpolationType = iota

func (i InterpolationType) String() string {
	if i == InterpolationLinear {
		return "linear"
	}
	return fmt.Sprintf("interpolation(%d)", int(i))
}

// ParseInterpolationType resolves a configuration string to an
// InterpolationType. The empty string means linear.
func ParseInterpolationType(s string) (InterpolationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return InterpolationLinear, nil
	default:
		return 0, fmt.Errorf("unknown interpolation type %q", s)
	}
}

// ExtrapolationType governs target times outside the source grid's
// span.
type ExtrapolationType int

const (
	// ExtrapolationNone fails the conversion when any target time lies
	// outside the source span.
	ExtrapolationNone ExtrapolationType = iota
	// ExtrapolationConstant clamps to the first or last source value.
	ExtrapolationConstant
	// ExtrapolationLinear extends the slope of the outermost segment.
	ExtrapolationLinear
)

func (e ExtrapolationType) String() string {
	switch e {
	case ExtrapolationNone:
		return "none"
	case ExtrapolationConstant:
		return "constant"
	case ExtrapolationLinear:
		return "linear"
	default:
		return fmt.Sprintf("extrapolation(%d)", int(e))
	}
}

// ParseExtrapolationType resolves a configuration string to an
// ExtrapolationType. The empty string means none.
func ParseExtrapolationType(s string) (ExtrapolationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ExtrapolationNone, nil
	case "constant":
		return ExtrapolationConstant, nil
	case "linear":
		return ExtrapolationLinear, nil
	default:
		return 0, fmt.Errorf("unknown extrapolation type %q", s)
	}
}
