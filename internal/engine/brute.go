package engine

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/listener"
	"github.com/23skdu/crossbow/internal/metrics"
)

// ExactSearch scans the whole corpus and returns the exact k nearest
// neighbors under the metric's distance function. It is the deterministic
// reference the harness validates approximate engines against.
func ExactSearch(ds *dataset.Dataset, query []float32, k int, dist DistanceFunc) (core.QueryResult, error) {
	if len(query) != ds.Dimension {
		return nil, core.NewError(core.ReasonInvalidDimension, "exact.search",
			fmt.Sprintf("query dimension %d does not match corpus dimension %d", len(query), ds.Dimension))
	}
	if k <= 0 {
		return nil, core.NewError(core.ReasonInternal, "exact.search", "k must be positive")
	}

	all := make(core.QueryResult, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		id := core.VectorID(i)
		all[i] = core.Neighbor{ID: id, Distance: dist(query, ds.Vector(id))}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].ID < all[j].ID
	})
	if k < len(all) {
		all = all[:k]
	}
	return all, nil
}

// BruteForce is an exact-scan engine. It satisfies the same capability
// contract as the approximate engines, including the asynchronous
// completion protocol, so the harness can exercise both modes against it.
type BruteForce struct {
	dist   DistanceFunc
	ds     atomic.Pointer[dataset.Dataset]
	closed atomic.Bool
}

// NewBruteForce creates an unbuilt exact-scan engine.
func NewBruteForce(metric core.DistanceMetric) (*BruteForce, error) {
	if metric == "" {
		metric = core.MetricL2Squared
	}
	dist, err := Distance(metric)
	if err != nil {
		return nil, err
	}
	return &BruteForce{dist: dist}, nil
}

// Build records the dataset. The scan engine has no build work, but the
// completion is still delivered asynchronously from an engine goroutine so
// consumers see the same protocol as with a real index.
func (e *BruteForce) Build(ctx context.Context, ds *dataset.Dataset, obs listener.BuildObserver) {
	go func() {
		if e.closed.Load() {
			return
		}
		if err := ctx.Err(); err != nil {
			obs.OnBuildComplete(core.BuildFailed(core.ReasonCancelled,
				core.WrapError(err, core.ReasonCancelled, "brute.build", "build abandoned")))
			return
		}
		if ds == nil || ds.Len() < minCorpus {
			obs.OnBuildComplete(core.BuildFailed(core.ReasonInsufficientData,
				core.NewError(core.ReasonInsufficientData, "brute.build",
					fmt.Sprintf("corpus too small, need at least %d vectors", minCorpus))))
			return
		}
		e.ds.Store(ds)
		obs.OnBuildComplete(core.BuildSucceeded())
	}()
}

// Query answers a blocking exact query.
func (e *BruteForce) Query(query []float32, k int) (core.QueryResult, error) {
	start := time.Now()
	defer func() {
		metrics.QueryDurationSeconds.WithLabelValues("brute", "sync").Observe(time.Since(start).Seconds())
	}()

	if e.closed.Load() {
		return nil, core.NewError(core.ReasonInternal, "brute.query", "engine closed")
	}
	ds := e.ds.Load()
	if ds == nil {
		return nil, core.NewError(core.ReasonInternal, "brute.query", "query before build completion")
	}
	return ExactSearch(ds, query, k, e.dist)
}

// QueryAsync answers the query from an engine goroutine.
func (e *BruteForce) QueryAsync(query []float32, k int, obs listener.QueryObserver) {
	go func() {
		res, err := e.Query(query, k)
		if e.closed.Load() {
			return
		}
		if err != nil {
			obs.OnQueryComplete(core.QueryFailed(core.ReasonOf(err), err))
			return
		}
		obs.OnQueryComplete(core.QuerySucceeded(res))
	}()
}

// Close drops the dataset reference.
func (e *BruteForce) Close() {
	e.closed.Store(true)
	e.ds.Store(nil)
}
