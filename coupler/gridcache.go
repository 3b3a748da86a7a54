package coupler

import (
	"fmt"
	"sync"
	"time"

	"github.com/rshade/scmkit/timeseries"
)

type gridKey struct {
	startSec  int64
	startNano int
	stopSec   int64
	stopNano  int
	n         int
	rep       timeseries.Representation
}

// GridCache builds evenly spaced time grids and caches them by their
// bounds, value count and representation. Asking for the same grid
// again returns the cached slice; callers must treat it as read-only.
type GridCache struct {
	mu    sync.RWMutex
	grids map[gridKey][]time.Time
}

func NewGridCache() *GridCache {
	return &GridCache{grids: make(map[gridKey][]time.Time)}
}

// Grid returns a grid carrying n values of the given representation,
// spread evenly from start to stop inclusive. Point grids have n
// entries; average grids have n+1 boundaries, the last one exactly at
// stop.
func (c *GridCache) Grid(start, stop time.Time, n int, rep timeseries.Representation) ([]time.Time, error) {
	if !stop.After(start) {
		return nil, fmt.Errorf("%w: stop %s is not after start %s", ErrBadRequest, stop, start)
	}
	count := n
	if rep == timeseries.Average {
		count++
	}
	if count < 2 {
		return nil, fmt.Errorf("%w: need at least 2 grid points, got %d", ErrBadRequest, count)
	}

	key := gridKey{
		startSec:  start.Unix(),
		startNano: start.Nanosecond(),
		stopSec:   stop.Unix(),
		stopNano:  stop.Nanosecond(),
		n:         n,
		rep:       rep,
	}
	c.mu.RLock()
	grid, ok := c.grids[key]
	c.mu.RUnlock()
	if ok {
		return grid, nil
	}

	grid = spreadEvenly(start, stop, count)
	c.mu.Lock()
	c.grids[key] = grid
	c.mu.Unlock()
	return grid, nil
}

// Len reports how many grids are cached.
func (c *GridCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.grids)
}

// spreadEvenly places count points from start to stop inclusive.
// time.Duration saturates near 292 years and climate runs are longer,
// so the spread is computed in integer seconds with the sub-second
// remainder folded back in; the last point lands exactly on stop.
func spreadEvenly(start, stop time.Time, count int) []time.Time {
	steps := int64(count - 1)
	spanSec := stop.Unix() - start.Unix()
	spanNano := int64(stop.Nanosecond()) - int64(start.Nanosecond())

	points := make([]time.Time, count)
	for i := range points {
		k := int64(i)
		sec := spanSec * k / steps
		nano := (spanSec*k%steps)*1e9/steps + spanNano*k/steps
		points[i] = time.Unix(start.Unix()+sec, int64(start.Nanosecond())+nano).UTC()
	}
	return points
}
