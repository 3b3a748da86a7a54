package units

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"
)

// unitDef is a registered unit: its factor into base units, an optional
// additive offset (temperature scales) and its dimensionality.
type unitDef struct {
	name   string
	scale  float64
	offset float64
	dims   Dimensionality
}

// Registry holds unit definitions and conversion contexts. A fresh
// registry knows the SI subset needed for climate data (time, mass,
// length, temperature, energy and power); AddStandards adds the emissions
// species, the year/day shorthands and the concentration units.
//
// All methods are safe for concurrent use. Conversion contexts are loaded
// lazily on first use so that constructing a registry stays cheap.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*unitDef

	ctxMu          sync.RWMutex
	contexts       map[string]*Context
	contextsLoaded bool
	extraSources   []metricSource
	skipBuiltin    bool

	loadGroup singleflight.Group

	logger zerolog.Logger
}

type baseDef struct {
	name    string
	scale   float64
	offset  float64
	dims    Dimensionality
	aliases []string
}

//nolint:gochecknoglobals // immutable SI seed table
var siBaseUnits = []baseDef{
	{name: "s", scale: 1, dims: Dimensionality{"time": 1}, aliases: []string{"second", "sec"}},
	{name: "min", scale: 60, dims: Dimensionality{"time": 1}, aliases: []string{"minute"}},
	{name: "hour", scale: 3600, dims: Dimensionality{"time": 1}, aliases: []string{"hr"}},
	{name: "day", scale: 86400, dims: Dimensionality{"time": 1}},
	{name: "week", scale: 604800, dims: Dimensionality{"time": 1}},
	// Julian year and the derived month keep century arithmetic exact.
	{name: "year", scale: 31557600, dims: Dimensionality{"time": 1}, aliases: []string{"julian_year"}},
	{name: "month", scale: 2629800, dims: Dimensionality{"time": 1}},
	{name: "g", scale: 1, dims: Dimensionality{"mass": 1}, aliases: []string{"gram"}},
	{name: "t", scale: 1e6, dims: Dimensionality{"mass": 1}, aliases: []string{"tonne", "metric_ton"}},
	{name: "m", scale: 1, dims: Dimensionality{"length": 1}, aliases: []string{"meter", "metre"}},
	{name: "K", scale: 1, dims: Dimensionality{"temperature": 1}, aliases: []string{"kelvin"}},
	{name: "degC", scale: 1, offset: 273.15, dims: Dimensionality{"temperature": 1}, aliases: []string{"celsius", "degree_Celsius"}},
	{name: "degF", scale: 5.0 / 9.0, offset: 255.37222222222223, dims: Dimensionality{"temperature": 1}, aliases: []string{"fahrenheit", "degree_Fahrenheit"}},
	{name: "delta_degC", scale: 1, dims: Dimensionality{"temperature": 1}, aliases: []string{"delta_celsius"}},
	{name: "delta_degF", scale: 5.0 / 9.0, dims: Dimensionality{"temperature": 1}, aliases: []string{"delta_fahrenheit"}},
	{name: "J", scale: 1000, dims: Dimensionality{"mass": 1, "length": 2, "time": -2}, aliases: []string{"joule"}},
	{name: "W", scale: 1000, dims: Dimensionality{"mass": 1, "length": 2, "time": -3}, aliases: []string{"watt"}},
}

type siPrefix struct {
	symbol string
	factor float64
}

//nolint:gochecknoglobals // immutable SI prefix table, longest symbols first
var siPrefixes = sortPrefixes([]siPrefix{
	{"yotta", 1e24}, {"zetta", 1e21}, {"exa", 1e18}, {"peta", 1e15},
	{"tera", 1e12}, {"giga", 1e9}, {"mega", 1e6}, {"kilo", 1e3},
	{"hecto", 1e2}, {"deka", 1e1}, {"deca", 1e1}, {"deci", 1e-1},
	{"centi", 1e-2}, {"milli", 1e-3}, {"micro", 1e-6}, {"nano", 1e-9},
	{"pico", 1e-12}, {"femto", 1e-15}, {"atto", 1e-18},
	{"Y", 1e24}, {"Z", 1e21}, {"E", 1e18}, {"P", 1e15}, {"T", 1e12},
	{"G", 1e9}, {"M", 1e6}, {"k", 1e3}, {"h", 1e2}, {"da", 1e1},
	{"d", 1e-1}, {"c", 1e-2}, {"m", 1e-3}, {"u", 1e-6}, {"μ", 1e-6},
	{"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15}, {"a", 1e-18},
})

func sortPrefixes(prefixes []siPrefix) []siPrefix {
	sort.SliceStable(prefixes, func(i, j int) bool {
		return len(prefixes[i].symbol) > len(prefixes[j].symbol)
	})
	return prefixes
}

// NewRegistry returns a registry seeded with the SI subset. Call
// AddStandards to add emissions species and the remaining conveniences,
// or use Default for the shared pre-populated registry.
func NewRegistry() *Registry {
	r := &Registry{
		defs:   make(map[string]*unitDef),
		logger: log.Logger.With().Str("component", "units").Logger(),
	}
	for _, def := range siBaseUnits {
		q := quantity{scale: def.scale, offset: def.offset, dims: def.dims.clone()}
		if err := r.register(def.name, q); err != nil {
			panic(fmt.Sprintf("units: seeding %s: %v", def.name, err))
		}
		for _, alias := range def.aliases {
			if err := r.register(alias, q); err != nil {
				panic(fmt.Sprintf("units: seeding %s: %v", alias, err))
			}
		}
	}
	return r
}

//nolint:gochecknoglobals // shared default registry
var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the shared registry with all standard units loaded.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		if err := r.AddStandards(); err != nil {
			panic(fmt.Sprintf("units: loading standard units: %v", err))
		}
		defaultReg = r
	})
	return defaultReg
}

// SetLogger replaces the registry logger. Call before the registry is
// shared between goroutines.
func (r *Registry) SetLogger(logger zerolog.Logger) {
	r.logger = logger
}

// Define registers a unit from a definition string. Supported forms:
//
//	"C = [carbon]"              new base dimension
//	"CO2 = 12/44 * C"           derived unit
//	"a = 1 * year = annum = yr" derived unit with aliases
//
// Redefining a name with the identical value is a no-op; a conflicting
// value fails with ErrRedefinition.
func (r *Registry) Define(definition string) error {
	parts := strings.Split(definition, "=")
	if len(parts) < 2 {
		return fmt.Errorf("%w: definition %q needs a name and a value", ErrExpression, definition)
	}
	name := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if name == "" {
		return fmt.Errorf("%w: definition %q has an empty name", ErrExpression, definition)
	}

	var q quantity
	if dim, ok := parseDimensionRef(value); ok {
		q = quantity{scale: 1, dims: Dimensionality{dim: 1}}
	} else {
		var err error
		q, err = r.evalUnitExpr(value)
		if err != nil {
			return fmt.Errorf("defining %q: %w", name, err)
		}
	}

	if err := r.register(name, q); err != nil {
		return err
	}
	for _, alias := range parts[2:] {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			return fmt.Errorf("%w: definition %q has an empty alias", ErrExpression, definition)
		}
		if err := r.register(alias, q); err != nil {
			return err
		}
	}
	return nil
}

// parseDimensionRef recognises a "[dimension]" value.
func parseDimensionRef(value string) (string, bool) {
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return "", false
	}
	dim := strings.TrimSpace(value[1 : len(value)-1])
	if dim == "" {
		return "", false
	}
	return dim, true
}

func (r *Registry) register(name string, q quantity) error {
	key := normalizeName(name)
	if key == "" {
		return fmt.Errorf("%w: empty unit name", ErrExpression)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.defs[key]; ok {
		if existing.quantity().equal(q) {
			return nil
		}
		return fmt.Errorf("%w: %s is already defined", ErrRedefinition, name)
	}
	r.defs[key] = &unitDef{name: name, scale: q.scale, offset: q.offset, dims: q.dims.clone()}
	return nil
}

func (d *unitDef) quantity() quantity {
	return quantity{scale: d.scale, offset: d.offset, dims: d.dims}
}

// normalizeName produces the lookup key for a unit name: Unicode
// compatibility normalization plus stripping of hyphens and underscores,
// so "HFC-134a" and "HFC134a" are the same unit. Case is significant.
func normalizeName(name string) string {
	name = norm.NFKC.String(strings.TrimSpace(name))
	if strings.ContainsAny(name, "-_") {
		name = strings.ReplaceAll(name, "-", "")
		name = strings.ReplaceAll(name, "_", "")
	}
	return name
}

// lookup resolves a single unit name, trying an exact match first and
// then an SI prefix split ("Mt" = mega + tonne). Prefixed offset units
// lose their offset, which only matters for nonsense like "kdegC".
func (r *Registry) lookup(name string) (quantity, bool) {
	key := normalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.defs[key]; ok {
		return def.quantity(), true
	}
	for _, prefix := range siPrefixes {
		rest, ok := strings.CutPrefix(key, prefix.symbol)
		if !ok || rest == "" {
			continue
		}
		if def, ok := r.defs[rest]; ok {
			return quantity{scale: prefix.factor * def.scale, dims: def.dims.clone()}, true
		}
	}
	return quantity{}, false
}

// Defined reports whether the unit expression resolves against the
// registry.
func (r *Registry) Defined(unit string) bool {
	_, err := r.evalUnitExpr(unit)
	return err == nil
}

// Dimensionality resolves a unit expression and returns its dimensions.
func (r *Registry) Dimensionality(unit string) (Dimensionality, error) {
	q, err := r.evalUnitExpr(unit)
	if err != nil {
		return nil, err
	}
	return q.dims.clone(), nil
}

// convertValue converts a magnitude from src to tgt units. Identical
// dimensionalities convert directly, honouring offsets; anything else
// needs a context transformation between the two dimensionalities.
func (r *Registry) convertValue(value float64, src, tgt quantity, srcName, tgtName string, ctx *Context) (float64, error) {
	if src.dims.Equal(tgt.dims) {
		base := value*src.scale + src.offset
		return (base - tgt.offset) / tgt.scale, nil
	}
	if ctx != nil {
		if out, ok := ctx.transform(value*src.scale, src.dims, tgt.dims); ok {
			return out / tgt.scale, nil
		}
	}
	return 0, &DimensionalityError{
		Source:     srcName,
		Target:     tgtName,
		SourceDims: src.dims,
		TargetDims: tgt.dims,
	}
}
