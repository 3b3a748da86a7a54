package coupler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRunner_Run(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("Sequential", func(t *testing.T) {
		r, err := NewChunkRunner[int](10)
		require.NoError(t, err)
		var processed int32
		var chunks int32

		fn := func(ctx context.Context, chunk []int, chunkIndex int) error {
			atomic.AddInt32(&chunks, 1)
			atomic.AddInt32(&processed, int32(len(chunk)))
			return nil
		}

		err = r.Run(context.Background(), items, fn)
		require.NoError(t, err)
		assert.Equal(t, int32(25), processed)
		assert.Equal(t, int32(3), chunks)
	})

	t.Run("Concurrent", func(t *testing.T) {
		r, err := NewChunkRunner[int](5)
		require.NoError(t, err)
		var processed int32

		fn := func(ctx context.Context, chunk []int, chunkIndex int) error {
			atomic.AddInt32(&processed, int32(len(chunk)))
			return nil
		}

		err = r.RunConcurrent(context.Background(), items, fn, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(25), processed)
	})

	t.Run("ErrorHandling", func(t *testing.T) {
		r, err := NewChunkRunner[int](10)
		require.NoError(t, err)
		fn := func(ctx context.Context, chunk []int, chunkIndex int) error {
			if chunkIndex == 1 {
				return errors.New("fail")
			}
			return nil
		}

		err = r.Run(context.Background(), items, fn)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "chunk 1 failed")
	})

	t.Run("ConcurrentErrorsCollected", func(t *testing.T) {
		r, err := NewChunkRunner[int](5)
		require.NoError(t, err)
		fn := func(ctx context.Context, chunk []int, chunkIndex int) error {
			if chunkIndex%2 == 0 {
				return errors.New("fail")
			}
			return nil
		}

		err = r.RunConcurrent(context.Background(), items, fn, 3)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "3 errors occurred")
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		r, err := NewChunkRunner[int](1)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = r.Run(ctx, items, func(ctx context.Context, chunk []int, chunkIndex int) error {
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		r := NewChunkRunnerWithDefaults[int]()
		err := r.Run(context.Background(), nil, nil)
		assert.Equal(t, ErrNoSeries, err)
	})

	t.Run("NilCallback", func(t *testing.T) {
		r := NewChunkRunnerWithDefaults[int]()
		err := r.Run(context.Background(), items, nil)
		assert.Equal(t, ErrNilChunkFunc, err)
	})

	t.Run("InvalidChunkSize", func(t *testing.T) {
		_, err := NewChunkRunner[int](0)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
		_, err = NewChunkRunner[int](2000)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})
}

func TestChunkRunner_Progress(t *testing.T) {
	items := make([]float64, 30)
	r, err := NewChunkRunner[float64](10)
	require.NoError(t, err)

	var calls int32
	r.WithProgressFunc(func(progress *Progress) {
		atomic.AddInt32(&calls, 1)
	})

	err = r.Run(context.Background(), items, func(ctx context.Context, chunk []float64, chunkIndex int) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls)
}

func TestProgress(t *testing.T) {
	totalSeries := 100
	totalChunks := 10
	chunkSize := 10
	p := NewProgress(totalSeries, totalChunks, chunkSize)

	assert.Equal(t, 0.0, p.PercentComplete())
	assert.False(t, p.IsComplete())

	p.AddProcessed(10)
	assert.Equal(t, 10.0, p.PercentComplete())
	assert.Equal(t, 10, p.ProcessedSeries)
	assert.Equal(t, 1, p.ProcessedChunks)

	p.AddProcessed(90)
	assert.Equal(t, 100.0, p.PercentComplete())
	assert.True(t, p.IsComplete())
	assert.Greater(t, p.ElapsedTime(), time.Duration(0))

	t.Run("Estimates", func(t *testing.T) {
		p.Reset()
		p.AddProcessed(50)
		assert.Greater(t, p.SeriesPerSecond(), 0.0)
		assert.Greater(t, p.ChunksPerSecond(), 0.0)
		assert.GreaterOrEqual(t, p.EstimatedTimeRemaining(), time.Duration(0))
	})

	t.Run("Snapshot", func(t *testing.T) {
		snap := p.Snapshot()
		assert.Equal(t, p.TotalSeries, snap.TotalSeries)
		assert.Equal(t, p.ProcessedSeries, snap.ProcessedSeries)
	})
}

func TestChunkRunner_Chunks(t *testing.T) {
	r, err := NewChunkRunner[int](10)
	require.NoError(t, err)
	chunks := r.Chunks(25)
	require.Len(t, chunks, 3)
	assert.Equal(t, [2]int{0, 10}, chunks[0])
	assert.Equal(t, [2]int{10, 20}, chunks[1])
	assert.Equal(t, [2]int{20, 25}, chunks[2])
	assert.Equal(t, 10, r.ChunkSize())
}
