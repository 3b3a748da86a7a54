// Package coupler is the seam between model adapters and the unit and
// timeseries engines. Adapters describe what they need as request
// values, a unit pair with an optional equivalence context or a pair of
// time grids with a representation and policies, and an Exchange
// resolves and caches the converters behind them.
//
// An Exchange is built either directly on a units.Registry or from a
// Config, which can register extra metric tables, pin the resampling
// defaults and declare the coupling run window. Converters are memoized
// per (source, target, context) triple and evenly spaced run grids are
// cached by their bounds, so repeated exchanges with unchanged settings
// do no repeated derivation work.
package coupler
