package routing

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/log"
	"github.com/homeplan/scheduler/pkg/metrics"
)

// InfiniteDistance is the sentinel travel time used when the routing engine
// reports no route between two locations. It is deliberately far below
// math.MaxInt64 so that sums of a handful of these still do not overflow.
const InfiniteDistance int64 = math.MaxInt64 / 4

const unsetCell int64 = -1

// LocationCache deduplicates locations and lazily fills a symmetric
// travel-time matrix (seconds) from a RoutingEngine. Every exported method
// is safe for concurrent use.
type LocationCache struct {
	mu      sync.Mutex
	engine  RoutingEngine
	index   map[[2]int64]int
	byRow   []domain.Location
	matrix  [][]int64
}

// NewLocationCache builds an empty cache backed by engine.
func NewLocationCache(engine RoutingEngine) *LocationCache {
	return &LocationCache{
		engine: engine,
		index:  make(map[[2]int64]int),
	}
}

// Add registers a location, returning its row/column index in the matrix.
// Calling Add twice with an equal location returns the same index.
func (c *LocationCache) Add(loc domain.Location) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(loc)
}

func (c *LocationCache) addLocked(loc domain.Location) int {
	if i, ok := c.index[loc.Key()]; ok {
		return i
	}
	i := len(c.byRow)
	c.index[loc.Key()] = i
	c.byRow = append(c.byRow, loc)
	for r := range c.matrix {
		c.matrix[r] = append(c.matrix[r], unsetCell)
	}
	row := make([]int64, len(c.byRow))
	for j := range row {
		row[j] = unsetCell
	}
	row[i] = 0
	c.matrix = append(c.matrix, row)
	return i
}

// Size returns the number of distinct locations held by the cache.
func (c *LocationCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byRow)
}

// Distance returns the travel time in seconds from a to b, filling the cell
// from the routing engine on first use. distance(a,b) == distance(b,a) and
// distance(a,a) == 0 always hold.
func (c *LocationCache) Distance(ctx context.Context, a, b domain.Location) (int64, error) {
	c.mu.Lock()
	i := c.addLocked(a)
	j := c.addLocked(b)
	if cell := c.matrix[i][j]; cell != unsetCell {
		c.mu.Unlock()
		metrics.LocationCacheHits.Inc()
		return cell, nil
	}
	c.mu.Unlock()

	metrics.LocationCacheMisses.Inc()
	seconds, err := c.engine.Duration(ctx, a, b)
	if err != nil {
		if errors.Is(err, ErrNoRoute) {
			metrics.RoutingEngineFailures.Inc()
			log.WithComponent("location-cache").Warn().
				Str("from", a.String()).Str("to", b.String()).
				Msg("routing engine returned no route, treating as infinite distance")
			seconds = InfiniteDistance
		} else {
			return 0, err
		}
	}

	c.mu.Lock()
	c.matrix[i][j] = seconds
	c.matrix[j][i] = seconds
	c.mu.Unlock()
	return seconds, nil
}

// ComputeAll pre-fills every off-diagonal cell of the matrix, stopping at
// the first non-ErrNoRoute failure from the routing engine.
func (c *LocationCache) ComputeAll(ctx context.Context) error {
	c.mu.Lock()
	n := len(c.byRow)
	locs := make([]domain.Location, n)
	copy(locs, c.byRow)
	c.mu.Unlock()

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if _, err := c.Distance(ctx, locs[i], locs[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

// LargestDistances returns the k largest finite cells in the matrix's upper
// triangle, used to derive the dropped-visit penalty.
func (c *LocationCache) LargestDistances(k int) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var values []int64
	for i := range c.matrix {
		for j := i + 1; j < len(c.matrix[i]); j++ {
			cell := c.matrix[i][j]
			if cell == unsetCell || cell == InfiniteDistance {
				continue
			}
			values = append(values, cell)
		}
	}
	sort.Slice(values, func(a, b int) bool { return values[a] > values[b] })
	if k < len(values) {
		values = values[:k]
	}
	return values
}
