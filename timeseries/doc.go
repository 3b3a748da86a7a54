// Package timeseries resamples numeric series between time grids.
//
// A series is either a point series, whose values are instantaneous
// samples at each grid time, or an average series, whose values are
// definite averages over the intervals between consecutive grid
// boundaries. A Converter is built once per pair of grids and then
// reused for any number of value arrays.
//
// Point series are resampled by evaluating a piecewise-linear
// interpolant through the samples at the target times. Average series
// are first linearized in a mean-preserving way: the continuous
// interpolant integrates back to exactly the supplied average over
// every source interval. Target averages are then exact analytic
// integrals of that interpolant over the target intervals.
//
// Values outside the source grid's span are governed by the
// extrapolation type. ExtrapolationNone, the zero value, refuses to
// fabricate data and fails the conversion; ExtrapolationConstant clamps
// to the end values; ExtrapolationLinear extends the outermost
// segment's slope.
package timeseries
