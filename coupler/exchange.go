package coupler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/scmkit/internal/logging"
	"github.com/rshade/scmkit/timeseries"
	"github.com/rshade/scmkit/units"
)

type converterKey struct {
	source  string
	target  string
	context string
}

// Exchange resolves conversion and resampling requests against one unit
// registry. Unit converters are memoized per (source, target, context)
// triple and run grids are cached by their bounds, so adapters can ask
// for the same conversion on every exchange step without repeated
// derivation work.
type Exchange struct {
	registry *units.Registry

	interp timeseries.InterpolationType
	extrap timeseries.ExtrapolationType

	runStart time.Time
	runStop  time.Time

	mu         sync.RWMutex
	converters map[converterKey]*units.Converter

	grids *GridCache
}

// NewExchange builds an exchange on the given registry. A nil registry
// uses the shared default.
func NewExchange(registry *units.Registry) *Exchange {
	if registry == nil {
		registry = units.Default()
	}
	return &Exchange{
		registry:   registry,
		converters: make(map[converterKey]*units.Converter),
		grids:      NewGridCache(),
	}
}

// NewExchangeFromConfig builds an exchange with its own registry set up
// per the config: standard units added, extra metric tables registered,
// resampling defaults and the run window applied.
func NewExchangeFromConfig(ctx context.Context, cfg *Config) (*Exchange, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)

	reg := units.NewRegistry()
	if err := reg.AddStandards(); err != nil {
		return nil, fmt.Errorf("adding standard units: %w", err)
	}
	if cfg.Units.DisableStandardMetrics {
		reg.DisableBuiltinMetrics()
	}
	for _, path := range cfg.Units.MetricTables {
		if err := loadMetricTableFile(reg, path); err != nil {
			return nil, err
		}
		logger.Debug().
			Str("component", "coupler").
			Str("table", path).
			Msg("registered metric table")
	}

	interp, err := timeseries.ParseInterpolationType(cfg.Resample.Interpolation)
	if err != nil {
		return nil, err
	}
	extrap, err := timeseries.ParseExtrapolationType(cfg.Resample.Extrapolation)
	if err != nil {
		return nil, err
	}

	e := NewExchange(reg)
	e.interp = interp
	e.extrap = extrap
	e.runStart = cfg.Run.Start.Time
	e.runStop = cfg.Run.Stop.Time
	return e, nil
}

func loadMetricTableFile(reg *units.Registry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening metric table: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := reg.LoadMetricTable(name, f); err != nil {
		return fmt.Errorf("metric table %s: %w", path, err)
	}
	return nil
}

// Registry returns the unit registry the exchange resolves against.
func (e *Exchange) Registry() *units.Registry { return e.registry }

// SetRunWindow sets the coupling run window used by RunGrid. Call it
// during setup, before the exchange is shared.
func (e *Exchange) SetRunWindow(start, stop time.Time) {
	e.runStart = start
	e.runStop = stop
}

// Convert maps the request's values from its source to its target unit.
func (e *Exchange) Convert(ctx context.Context, req UnitRequest) ([]float64, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	conv, err := e.converter(ctx, req.Source, req.Target, req.Context)
	if err != nil {
		return nil, err
	}
	return conv.ConvertFromSlice(req.Values), nil
}

// ConvertBatch runs several unit conversions concurrently, preserving
// request order in the results. The first failure cancels the batch.
func (e *Exchange) ConvertBatch(ctx context.Context, reqs []UnitRequest) ([][]float64, error) {
	out := make([][]float64, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := e.Convert(gCtx, req)
			if err != nil {
				return fmt.Errorf("request %d (%s to %s): %w", i, req.Source, req.Target, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Resample maps the request's values from its source grid onto its
// target grid.
func (e *Exchange) Resample(ctx context.Context, req ResampleRequest) ([]float64, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	conv, err := timeseries.NewConverter(
		req.SourceGrid, req.TargetGrid,
		req.Representation, req.Interpolation, req.Extrapolation,
	)
	if err != nil {
		return nil, err
	}
	out, err := conv.ConvertFrom(req.Values)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Str("component", "coupler").
		Stringer("representation", req.Representation).
		Int("source_values", conv.SourceLength()).
		Int("target_values", conv.TargetLength()).
		Msg("resampled timeseries")
	return out, nil
}

// ResampleBatch resamples many series concurrently in fixed-size chunks,
// preserving request order in the results. A non-nil onProgress is invoked
// after each chunk completes. All chunks run; failures are collected into
// the returned error. Each batch is tagged with a run id so interleaved
// log lines from concurrent batches stay separable.
func (e *Exchange) ResampleBatch(ctx context.Context, reqs []ResampleRequest, onProgress ProgressFunc) ([][]float64, error) {
	out := make([][]float64, len(reqs))
	if len(reqs) == 0 {
		return out, nil
	}

	runID := ulid.Make().String()
	logger := logging.FromContext(ctx).With().Str("run_id", runID).Logger()
	ctx = logging.WithContext(ctx, logger)
	logger.Debug().
		Str("component", "coupler").
		Int("series", len(reqs)).
		Msg("resample batch started")

	runner := NewChunkRunnerWithDefaults[ResampleRequest]()
	if onProgress != nil {
		runner.WithProgressFunc(onProgress)
	}

	err := runner.RunConcurrent(ctx, reqs, func(ctx context.Context, chunk []ResampleRequest, chunkIndex int) error {
		base := chunkIndex * runner.ChunkSize()
		for j, req := range chunk {
			res, err := e.Resample(ctx, req)
			if err != nil {
				return fmt.Errorf("series %d: %w", base+j, err)
			}
			out[base+j] = res
		}
		return nil
	}, runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("component", "coupler").
		Int("series", len(reqs)).
		Msg("resample batch complete")
	return out, nil
}

// NewResampleRequest builds a resample request carrying the exchange's
// default interpolation and extrapolation policies.
func (e *Exchange) NewResampleRequest(source, target []time.Time, rep timeseries.Representation, values []float64) ResampleRequest {
	return ResampleRequest{
		SourceGrid:     source,
		TargetGrid:     target,
		Representation: rep,
		Interpolation:  e.interp,
		Extrapolation:  e.extrap,
		Values:         values,
	}
}

// RunGrid returns the evenly spaced grid carrying n values of the given
// representation across the configured run window. Grids are cached by
// bounds, so repeated calls with an unchanged window return the same
// slice.
func (e *Exchange) RunGrid(n int, rep timeseries.Representation) ([]time.Time, error) {
	if e.runStart.IsZero() || e.runStop.IsZero() {
		return nil, fmt.Errorf("%w: run window is not configured", ErrBadRequest)
	}
	return e.grids.Grid(e.runStart, e.runStop, n, rep)
}

// converter returns the memoized converter for the triple, deriving it
// on first use.
func (e *Exchange) converter(ctx context.Context, source, target, ctxName string) (*units.Converter, error) {
	key := converterKey{source: source, target: target, context: ctxName}
	e.mu.RLock()
	conv, ok := e.converters[key]
	e.mu.RUnlock()
	if ok {
		return conv, nil
	}

	conv, err := e.registry.NewConverterWithContext(source, target, ctxName)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	if cached, ok := e.converters[key]; ok {
		conv = cached
	} else {
		e.converters[key] = conv
	}
	e.mu.Unlock()

	logging.FromContext(ctx).Debug().
		Str("component", "coupler").
		Str("source", source).
		Str("target", target).
		Str("context", ctxName).
		Msg("derived unit converter")
	return conv, nil
}
