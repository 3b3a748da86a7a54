package timeseries

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData marks conversions the source data cannot
	// support: series shorter than three values, or target times
	// outside the source span while extrapolation is none.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrShapeMismatch marks value arrays whose length does not match
	// the grid they are declared on.
	ErrShapeMismatch = errors.New("timeseries length mismatch")

	// ErrInvalidGrid marks time grids that are too short or not
	// strictly increasing.
	ErrInvalidGrid = errors.New("invalid time grid")
)

// InsufficientDataError reports why a conversion cannot be computed
// from the data given.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// ShapeMismatchError reports a value array whose length disagrees with
// the grid it belongs to.
type ShapeMismatchError struct {
	Want int
	Got  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("timeseries length mismatch: got %d values, want %d", e.Got, e.Want)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }
