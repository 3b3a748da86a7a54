package coupler

import (
	"errors"
	"fmt"
	"time"

	"github.com/rshade/scmkit/timeseries"
)

// ErrBadRequest marks requests that are structurally invalid before any
// engine work happens.
var ErrBadRequest = errors.New("invalid request")

// UnitRequest asks for values to be mapped from one unit to another,
// optionally through a named equivalence context such as "AR4GWP100".
// The mapping runs source to target; swap the two to invert.
type UnitRequest struct {
	Source  string
	Target  string
	Context string
	Values  []float64
}

// Validate reports structural problems with the request.
func (r UnitRequest) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("%w: source unit is empty", ErrBadRequest)
	}
	if r.Target == "" {
		return fmt.Errorf("%w: target unit is empty", ErrBadRequest)
	}
	return nil
}

// ResampleRequest asks for values on one time grid to be resampled onto
// another. Both grids carry the same representation.
type ResampleRequest struct {
	SourceGrid     []time.Time
	TargetGrid     []time.Time
	Representation timeseries.Representation
	Interpolation  timeseries.InterpolationType
	Extrapolation  timeseries.ExtrapolationType
	Values         []float64
}

// Validate reports structural problems with the request. Grid contents
// are validated by the timeseries engine.
func (r ResampleRequest) Validate() error {
	if len(r.SourceGrid) == 0 {
		return fmt.Errorf("%w: source grid is empty", ErrBadRequest)
	}
	if len(r.TargetGrid) == 0 {
		return fmt.Errorf("%w: target grid is empty", ErrBadRequest)
	}
	return nil
}
