package units

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// The bundled metric table carries one column per global warming
// potential metric. The first line names the source, the second is the
// header and the third states the base units; species rows follow.
//
//go:embed data/metric_conversions.csv
var metricConversionsCSV []byte

const (
	builtinMetricTable = "metric_conversions"
	contextLoadKey     = "contexts"
)

// metricSource is one metric table: a name for error reporting plus the
// raw CSV bytes, kept so that ResetContexts can replay every table.
type metricSource struct {
	name string
	data []byte
}

// ensureContexts loads contexts exactly once. Concurrent first uses share
// a single load via singleflight.
func (r *Registry) ensureContexts() error {
	r.ctxMu.RLock()
	loaded := r.contextsLoaded
	r.ctxMu.RUnlock()
	if loaded {
		return nil
	}
	_, err, _ := r.loadGroup.Do(contextLoadKey, func() (any, error) {
		return nil, r.loadContexts()
	})
	return err
}

// loadContexts builds the fixed chemistry contexts and every metric table
// registered so far, then installs them atomically.
func (r *Registry) loadContexts() error {
	r.ctxMu.RLock()
	if r.contextsLoaded {
		r.ctxMu.RUnlock()
		return nil
	}
	sources := make([]metricSource, 0, len(r.extraSources)+1)
	if !r.skipBuiltin {
		sources = append(sources, metricSource{name: builtinMetricTable, data: metricConversionsCSV})
	}
	sources = append(sources, r.extraSources...)
	r.ctxMu.RUnlock()

	contexts := make(map[string]*Context)
	for _, c := range buildFixedContexts() {
		contexts[c.name] = c
	}
	for _, src := range sources {
		metricContexts, err := r.parseMetricTable(src)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrContextLoad, err)
		}
		for _, c := range metricContexts {
			if existing, ok := contexts[c.name]; ok {
				existing.merge(c)
			} else {
				contexts[c.name] = c
			}
		}
	}

	r.ctxMu.Lock()
	r.contexts = contexts
	r.contextsLoaded = true
	r.ctxMu.Unlock()

	r.logger.Debug().
		Int("contexts", len(contexts)).
		Int("tables", len(sources)).
		Msg("loaded conversion contexts")
	return nil
}

// context returns a loaded context by name, loading all contexts on first
// use.
func (r *Registry) context(name string) (*Context, error) {
	if err := r.ensureContexts(); err != nil {
		return nil, err
	}
	r.ctxMu.RLock()
	defer r.ctxMu.RUnlock()
	c, ok := r.contexts[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownContext, name)
	}
	return c, nil
}

// Contexts returns the sorted names of all available contexts, loading
// them on first use.
func (r *Registry) Contexts() ([]string, error) {
	if err := r.ensureContexts(); err != nil {
		return nil, err
	}
	r.ctxMu.RLock()
	defer r.ctxMu.RUnlock()
	names := make([]string, 0, len(r.contexts))
	for name := range r.contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadMetricTable registers an additional metric table in the same CSV
// layout as the bundled one. The table is validated immediately; if
// contexts were already loaded they are reset so the next use includes
// the new table.
func (r *Registry) LoadMetricTable(name string, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("reading metric table %q: %w", name, err)
	}
	table := metricSource{name: name, data: data}
	if _, err := r.parseMetricTable(table); err != nil {
		return fmt.Errorf("%w: %w", ErrContextLoad, err)
	}

	r.ctxMu.Lock()
	r.extraSources = append(r.extraSources, table)
	loaded := r.contextsLoaded
	r.ctxMu.Unlock()

	if loaded {
		r.ResetContexts()
	}
	r.logger.Debug().Str("table", name).Msg("registered metric table")
	return nil
}

// ResetContexts drops all loaded contexts so the next contextual
// conversion rebuilds them from the registered tables.
func (r *Registry) ResetContexts() {
	r.ctxMu.Lock()
	r.contexts = nil
	r.contextsLoaded = false
	r.ctxMu.Unlock()
	r.loadGroup.Forget(contextLoadKey)
}

// DisableBuiltinMetrics excludes the bundled metric table from context
// loading, leaving only the fixed chemistry contexts and tables
// registered through LoadMetricTable. Useful when a deployment must pin
// its own equivalence factors.
func (r *Registry) DisableBuiltinMetrics() {
	r.ctxMu.Lock()
	already := r.skipBuiltin
	r.skipBuiltin = true
	loaded := r.contextsLoaded
	r.ctxMu.Unlock()
	if loaded && !already {
		r.ResetContexts()
	}
}

// parseMetricTable builds one context per metric column. Species factors
// are rescaled by the ratio of the CO2 and species base magnitudes so the
// edges operate on base-unit magnitudes directly. Blank cells register
// NaN edges: the pair stays structurally connected but converts to NaN,
// matching the converter's not-available behaviour. Malformed cells abort
// the whole table.
func (r *Registry) parseMetricTable(src metricSource) ([]*Context, error) {
	newline := bytes.IndexByte(src.data, '\n')
	if newline < 0 {
		return nil, fmt.Errorf("table %q: missing header", src.name)
	}

	co2, ok := r.lookup("CO2")
	if !ok {
		return nil, fmt.Errorf("table %q: registry does not define CO2", src.name)
	}

	reader := csv.NewReader(bytes.NewReader(src.data[newline+1:]))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", src.name, err)
	}
	// Header, base unit row and at least one species row.
	if len(records) < 3 {
		return nil, fmt.Errorf("table %q: too few rows", src.name)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("table %q: no metric columns", src.name)
	}
	contexts := make([]*Context, 0, len(header)-1)
	for _, name := range header[1:] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("table %q: empty metric column name", src.name)
		}
		contexts = append(contexts, newContext(name))
	}

	// records[1] is the base unit row, informational only.
	for rowIdx, record := range records[2:] {
		label := strings.TrimSpace(record[0])
		if label == "" {
			return nil, fmt.Errorf("table %q row %d: empty species", src.name, rowIdx+1)
		}
		species, ok := r.lookup(label)
		if !ok {
			return nil, fmt.Errorf("table %q row %d: %w %q", src.name, rowIdx+1, ErrUndefinedUnit, label)
		}
		dim, err := singleDimension(species.dims)
		if err != nil {
			return nil, fmt.Errorf("table %q row %d (%s): %w", src.name, rowIdx+1, label, err)
		}

		for col, cell := range record[1:] {
			raw := math.NaN()
			if trimmed := strings.TrimSpace(cell); trimmed != "" {
				raw, err = strconv.ParseFloat(trimmed, 64)
				if err != nil {
					return nil, fmt.Errorf("table %q row %d (%s): invalid factor %q",
						src.name, rowIdx+1, label, cell)
				}
			}
			conv := raw * co2.scale / species.scale
			addMetricPairs(contexts[col], dim, conv)
		}
	}
	return contexts, nil
}

// addMetricPairs registers the species <-> carbon transformation at every
// granularity emissions data comes in: the bare species, mass of species,
// and both as a flux over time.
func addMetricPairs(c *Context, dim string, conv float64) {
	c.addPair(
		Dimensionality{dim: 1},
		Dimensionality{"carbon": 1},
		conv,
	)
	c.addPair(
		Dimensionality{"mass": 1, dim: 1, "time": -1},
		Dimensionality{"mass": 1, "carbon": 1, "time": -1},
		conv,
	)
	c.addPair(
		Dimensionality{"mass": 1, dim: 1},
		Dimensionality{"mass": 1, "carbon": 1},
		conv,
	)
	c.addPair(
		Dimensionality{dim: 1, "time": -1},
		Dimensionality{"carbon": 1, "time": -1},
		conv,
	)
}

// singleDimension expects a species to resolve to exactly one base
// dimension, e.g. CH4 to [methane].
func singleDimension(dims Dimensionality) (string, error) {
	if len(dims) != 1 {
		return "", fmt.Errorf("species must map to a single dimension, got %s", dims)
	}
	for name, exp := range dims {
		if exp != 1 {
			return "", fmt.Errorf("species must map to a single dimension, got %s", dims)
		}
		return name, nil
	}
	return "", fmt.Errorf("species must map to a single dimension, got %s", dims)
}
