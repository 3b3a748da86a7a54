package units

import (
	"math"
)

// Converter converts numbers between two units. The conversion is affine:
// it is derived once at construction by converting the values +1 and -1,
// so per-value conversion is two floating point operations regardless of
// how involved the unit expressions are.
type Converter struct {
	registry *Registry
	source   string
	target   string
	context  string

	scaling   float64
	offset    float64
	available bool
}

// NewConverter builds a converter between two unit expressions on the
// default registry.
func NewConverter(source, target string) (*Converter, error) {
	return Default().NewConverter(source, target)
}

// NewConverterWithContext builds a converter on the default registry
// using the named context for cross-species conversions.
func NewConverterWithContext(source, target, context string) (*Converter, error) {
	return Default().NewConverterWithContext(source, target, context)
}

// Convert is a one-shot conversion on the default registry.
func Convert(value float64, source, target string) (float64, error) {
	c, err := NewConverter(source, target)
	if err != nil {
		return 0, err
	}
	return c.ConvertFrom(value), nil
}

// NewConverter builds a converter between two unit expressions. It fails
// with an UndefinedUnitError for unknown units and a DimensionalityError
// for incompatible ones.
func (r *Registry) NewConverter(source, target string) (*Converter, error) {
	return r.NewConverterWithContext(source, target, "")
}

// NewConverterWithContext builds a converter that may additionally apply
// the named context, e.g. "AR4GWP100" for CO2-equivalent conversions or
// "CH4_conversions" for methane/carbon. An empty context behaves like
// NewConverter.
//
// A pair the context covers only with a missing metric value builds a
// converter that is not Available: construction warns once and every
// conversion yields NaN.
func (r *Registry) NewConverterWithContext(source, target, context string) (*Converter, error) {
	srcQ, err := r.evalUnitExpr(source)
	if err != nil {
		return nil, err
	}
	tgtQ, err := r.evalUnitExpr(target)
	if err != nil {
		return nil, err
	}

	var ctx *Context
	if context != "" {
		ctx, err = r.context(context)
		if err != nil {
			return nil, err
		}
	}

	t1, err := r.convertValue(1, srcQ, tgtQ, source, target, ctx)
	if err != nil {
		return nil, err
	}
	t2, err := r.convertValue(-1, srcQ, tgtQ, source, target, ctx)
	if err != nil {
		return nil, err
	}

	// Two-point derivation of the affine map: s1=1, s2=-1.
	scaling := (t2 - t1) / (-1 - 1)
	offset := t1 - scaling*1

	c := &Converter{
		registry:  r,
		source:    source,
		target:    target,
		context:   context,
		scaling:   scaling,
		offset:    offset,
		available: true,
	}
	if math.IsNaN(t1) || math.IsNaN(t2) {
		c.available = false
		evt := r.logger.Warn()
		if context != "" {
			evt = evt.Str("context", context)
		}
		evt.Msgf("no conversion from %s to %s available, nan will be returned upon conversion", source, target)
	}
	return c, nil
}

// ConvertFrom converts a value in the source unit to the target unit.
func (c *Converter) ConvertFrom(v float64) float64 {
	return c.offset + v*c.scaling
}

// ConvertTo converts a value in the target unit back to the source unit.
func (c *Converter) ConvertTo(v float64) float64 {
	return (v - c.offset) / c.scaling
}

// ConvertFromSlice converts a series of values in the source unit to the
// target unit. A nil input returns nil.
func (c *Converter) ConvertFromSlice(values []float64) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = c.offset + v*c.scaling
	}
	return out
}

// ConvertToSlice converts a series of values in the target unit back to
// the source unit. A nil input returns nil.
func (c *Converter) ConvertToSlice(values []float64) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - c.offset) / c.scaling
	}
	return out
}

// Available reports whether the pair actually converts. It is false when
// the context connects the units but the metric value is missing, in
// which case conversions return NaN.
func (c *Converter) Available() bool { return c.available }

// Scaling returns the multiplicative part of the conversion.
func (c *Converter) Scaling() float64 { return c.scaling }

// Offset returns the additive part of the conversion, nonzero only for
// offset units such as degC.
func (c *Converter) Offset() float64 { return c.offset }

// Affine returns the scaling and offset together with the availability
// flag, letting callers branch on missing metric values instead of
// probing conversion results for NaN.
func (c *Converter) Affine() (scaling, offset float64, ok bool) {
	return c.scaling, c.offset, c.available
}

// Source returns the source unit expression.
func (c *Converter) Source() string { return c.source }

// Target returns the target unit expression.
func (c *Converter) Target() string { return c.target }

// ContextName returns the context the converter applies, or "" for none.
func (c *Converter) ContextName() string { return c.context }

// Contexts lists the names of all contexts available on the underlying
// registry.
func (c *Converter) Contexts() ([]string, error) {
	return c.registry.Contexts()
}

// Registry returns the registry the converter was built on.
func (c *Converter) Registry() *Registry { return c.registry }
