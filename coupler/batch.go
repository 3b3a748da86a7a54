package coupler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Chunked processing configuration.
const (
	// DefaultChunkSize is the default number of series per chunk.
	DefaultChunkSize = 100

	// MinChunkSize is the minimum allowed chunk size.
	MinChunkSize = 1

	// MaxChunkSize is the maximum allowed chunk size.
	MaxChunkSize = 1000
)

// Chunked processing errors.
var (
	ErrInvalidChunkSize = errors.New("chunk size must be between 1 and 1000")
	ErrNilChunkFunc     = errors.New("chunk callback cannot be nil")
	ErrNoSeries         = errors.New("series slice cannot be empty")
)

// ChunkFunc processes a single chunk of series. It receives the chunk items
// and the chunk index (0-based), and returns an error if processing fails.
type ChunkFunc[T any] func(ctx context.Context, chunk []T, chunkIndex int) error

// ProgressFunc is an optional callback invoked after each chunk is processed.
type ProgressFunc func(progress *Progress)

// ChunkRunner splits large sets of timeseries work into fixed-size chunks
// and runs them sequentially or concurrently. Coupled runs routinely carry
// one series per species and region, so a single exchange step can involve
// thousands of conversions.
type ChunkRunner[T any] struct {
	// chunkSize is the number of series per chunk.
	chunkSize int

	// onProgress is an optional callback for progress updates.
	onProgress ProgressFunc

	// mu protects concurrent access to progress tracking.
	mu sync.Mutex
}

// NewChunkRunner creates a runner with the given chunk size.
func NewChunkRunner[T any](chunkSize int) (*ChunkRunner[T], error) {
	if chunkSize < MinChunkSize || chunkSize > MaxChunkSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}

	return &ChunkRunner[T]{
		chunkSize: chunkSize,
	}, nil
}

// NewChunkRunnerWithDefaults creates a runner with the default chunk size.
func NewChunkRunnerWithDefaults[T any]() *ChunkRunner[T] {
	return &ChunkRunner[T]{
		chunkSize: DefaultChunkSize,
	}
}

// WithProgressFunc sets a progress callback for the runner.
func (r *ChunkRunner[T]) WithProgressFunc(fn ProgressFunc) *ChunkRunner[T] {
	r.onProgress = fn
	return r
}

// Run processes items in chunks using the provided callback. Processing is
// sequential and stops on the first error.
func (r *ChunkRunner[T]) Run(ctx context.Context, items []T, fn ChunkFunc[T]) error {
	if len(items) == 0 {
		return ErrNoSeries
	}

	if fn == nil {
		return ErrNilChunkFunc
	}

	totalChunks := r.chunkCount(len(items))
	progress := NewProgress(len(items), totalChunks, r.chunkSize)

	for chunkIndex := 0; chunkIndex < totalChunks; chunkIndex++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := chunkIndex * r.chunkSize
		end := start + r.chunkSize
		if end > len(items) {
			end = len(items)
		}

		chunk := items[start:end]

		if err := fn(ctx, chunk, chunkIndex); err != nil {
			return fmt.Errorf("chunk %d failed: %w", chunkIndex, err)
		}

		r.updateProgress(progress, len(chunk))

		if r.onProgress != nil {
			r.onProgress(progress)
		}
	}

	return nil
}

// RunConcurrent processes chunks concurrently with a maximum concurrency
// limit. All chunks run; errors from individual chunks are collected and
// returned together.
func (r *ChunkRunner[T]) RunConcurrent(
	ctx context.Context,
	items []T,
	fn ChunkFunc[T],
	maxConcurrency int,
) error {
	if len(items) == 0 {
		return ErrNoSeries
	}

	if fn == nil {
		return ErrNilChunkFunc
	}

	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	totalChunks := r.chunkCount(len(items))
	progress := NewProgress(len(items), totalChunks, r.chunkSize)

	sem := make(chan struct{}, maxConcurrency)
	errChan := make(chan error, totalChunks)
	var wg sync.WaitGroup

	for chunkIndex := 0; chunkIndex < totalChunks; chunkIndex++ {
		chunkIndex := chunkIndex
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := chunkIndex * r.chunkSize
		end := start + r.chunkSize
		if end > len(items) {
			end = len(items)
		}

		chunk := items[start:end]

		wg.Add(1)
		go func() {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := fn(ctx, chunk, chunkIndex); err != nil {
				errChan <- fmt.Errorf("chunk %d failed: %w", chunkIndex, err)
				return
			}

			r.updateProgress(progress, len(chunk))

			if r.onProgress != nil {
				r.onProgress(progress)
			}
		}()
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("chunk processing failed: %d errors occurred: %v", len(errs), errs)
	}

	return nil
}

// ChunkSize returns the configured chunk size.
func (r *ChunkRunner[T]) ChunkSize() int {
	return r.chunkSize
}

// Chunks returns the chunk boundaries for the given item count as
// [start, end) index pairs.
func (r *ChunkRunner[T]) Chunks(totalItems int) [][2]int {
	totalChunks := r.chunkCount(totalItems)
	chunks := make([][2]int, totalChunks)

	for i := 0; i < totalChunks; i++ {
		start := i * r.chunkSize
		end := start + r.chunkSize
		if end > totalItems {
			end = totalItems
		}
		chunks[i] = [2]int{start, end}
	}

	return chunks
}

// chunkCount calculates the number of chunks needed for the given item count.
func (r *ChunkRunner[T]) chunkCount(totalItems int) int {
	chunks := totalItems / r.chunkSize
	if totalItems%r.chunkSize > 0 {
		chunks++
	}
	return chunks
}

// updateProgress safely updates the progress state.
func (r *ChunkRunner[T]) updateProgress(progress *Progress, processed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	progress.AddProcessed(processed)
}

// percentMultiplier converts a ratio to a percentage (0-100).
const percentMultiplier = 100

// Progress tracks the progress of a chunked run. It is safe for concurrent
// use, so callers can poll it from a reporting goroutine while chunks are
// still in flight.
type Progress struct {
	// TotalSeries is the total number of series to process.
	TotalSeries int

	// ProcessedSeries is the number of series processed so far.
	ProcessedSeries int

	// TotalChunks is the total number of chunks.
	TotalChunks int

	// ProcessedChunks is the number of chunks processed so far.
	ProcessedChunks int

	// ChunkSize is the configured chunk size.
	ChunkSize int

	// StartTime is when processing started.
	StartTime time.Time

	// LastUpdateTime is when progress was last updated.
	LastUpdateTime time.Time

	// mu protects concurrent access to progress fields.
	mu sync.RWMutex
}

// NewProgress creates a new progress tracker.
func NewProgress(totalSeries, totalChunks, chunkSize int) *Progress {
	now := time.Now()
	return &Progress{
		TotalSeries:     totalSeries,
		ProcessedSeries: 0,
		TotalChunks:     totalChunks,
		ProcessedChunks: 0,
		ChunkSize:       chunkSize,
		StartTime:       now,
		LastUpdateTime:  now,
	}
}

// AddProcessed increments the processed series and chunk counts.
func (p *Progress) AddProcessed(seriesProcessed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ProcessedSeries += seriesProcessed
	p.ProcessedChunks++
	p.LastUpdateTime = time.Now()
}

// PercentComplete returns the completion percentage (0-100).
func (p *Progress) PercentComplete() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.TotalSeries == 0 {
		return 0
	}
	return (float64(p.ProcessedSeries) / float64(p.TotalSeries)) * percentMultiplier
}

// IsComplete returns true if all series have been processed.
func (p *Progress) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.ProcessedSeries >= p.TotalSeries
}

// ElapsedTime returns the time elapsed since processing started.
func (p *Progress) ElapsedTime() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return time.Since(p.StartTime)
}

// EstimatedTimeRemaining estimates the remaining processing time from the
// rate so far. Returns 0 if no series have been processed yet.
func (p *Progress) EstimatedTimeRemaining() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.ProcessedSeries == 0 {
		return 0
	}

	elapsed := time.Since(p.StartTime)
	avgPerSeries := elapsed / time.Duration(p.ProcessedSeries)
	remaining := p.TotalSeries - p.ProcessedSeries

	return avgPerSeries * time.Duration(remaining)
}

// SeriesPerSecond returns the processing rate in series per second.
func (p *Progress) SeriesPerSecond() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	elapsed := time.Since(p.StartTime).Seconds()
	if elapsed == 0 {
		return 0
	}

	return float64(p.ProcessedSeries) / elapsed
}

// ChunksPerSecond returns the processing rate in chunks per second.
func (p *Progress) ChunksPerSecond() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	elapsed := time.Since(p.StartTime).Seconds()
	if elapsed == 0 {
		return 0
	}

	return float64(p.ProcessedChunks) / elapsed
}

// Snapshot returns an immutable copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressSnapshot{
		TotalSeries:     p.TotalSeries,
		ProcessedSeries: p.ProcessedSeries,
		TotalChunks:     p.TotalChunks,
		ProcessedChunks: p.ProcessedChunks,
		ChunkSize:       p.ChunkSize,
		StartTime:       p.StartTime,
		LastUpdateTime:  p.LastUpdateTime,
		PercentComplete: p.percentCompleteUnsafe(),
		ElapsedTime:     time.Since(p.StartTime),
		SeriesPerSecond: p.seriesPerSecondUnsafe(),
	}
}

// ProgressSnapshot is an immutable snapshot of progress state.
type ProgressSnapshot struct {
	TotalSeries     int
	ProcessedSeries int
	TotalChunks     int
	ProcessedChunks int
	ChunkSize       int
	StartTime       time.Time
	LastUpdateTime  time.Time
	PercentComplete float64
	ElapsedTime     time.Duration
	SeriesPerSecond float64
}

// percentCompleteUnsafe calculates percent complete without locking.
// Should only be called when already holding the lock.
func (p *Progress) percentCompleteUnsafe() float64 {
	if p.TotalSeries == 0 {
		return 0
	}
	return (float64(p.ProcessedSeries) / float64(p.TotalSeries)) * percentMultiplier
}

// seriesPerSecondUnsafe calculates series per second without locking.
// Should only be called when already holding the lock.
func (p *Progress) seriesPerSecondUnsafe() float64 {
	elapsed := time.Since(p.StartTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(p.ProcessedSeries) / elapsed
}

// Reset resets the progress tracker to its initial state.
func (p *Progress) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.ProcessedSeries = 0
	p.ProcessedChunks = 0
	p.StartTime = now
	p.LastUpdateTime = now
}
