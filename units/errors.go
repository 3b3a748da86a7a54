package units

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. The typed errors below wrap these
// and carry the offending units.
var (
	// ErrUndefinedUnit indicates a unit name that is not registered.
	ErrUndefinedUnit = errors.New("undefined unit")

	// ErrDimensionality indicates a conversion between incompatible
	// dimensions that no active context can bridge.
	ErrDimensionality = errors.New("incompatible dimensionality")

	// ErrExpression indicates a unit expression that could not be parsed.
	ErrExpression = errors.New("invalid unit expression")

	// ErrRedefinition indicates an attempt to redefine an existing unit
	// with a conflicting value.
	ErrRedefinition = errors.New("conflicting unit redefinition")

	// ErrUnknownContext indicates a context name that no loaded table
	// provides.
	ErrUnknownContext = errors.New("unknown context")

	// ErrContextLoad indicates that conversion contexts could not be
	// built, e.g. because a metric table is malformed.
	ErrContextLoad = errors.New("loading conversion contexts")
)

// UndefinedUnitError reports a unit name that is not registered.
type UndefinedUnitError struct {
	Unit string
}

func (e *UndefinedUnitError) Error() string {
	return fmt.Sprintf("undefined unit %q", e.Unit)
}

func (e *UndefinedUnitError) Unwrap() error { return ErrUndefinedUnit }

// DimensionalityError reports a conversion between units whose dimensions
// are incompatible.
type DimensionalityError struct {
	Source     string
	Target     string
	SourceDims Dimensionality
	TargetDims Dimensionality
}

func (e *DimensionalityError) Error() string {
	return fmt.Sprintf("cannot convert from '%s' (%s) to '%s' (%s)",
		e.Source, e.SourceDims, e.Target, e.TargetDims)
}

func (e *DimensionalityError) Unwrap() error { return ErrDimensionality }
