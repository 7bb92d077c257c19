package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/hnsw"
	"go.uber.org/zap"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/listener"
	"github.com/23skdu/crossbow/internal/metrics"
)

// HNSWConfig tunes the graph index.
type HNSWConfig struct {
	Metric core.DistanceMetric
	// M is the maximum number of graph neighbors per node. Zero means 16.
	M int
	// EfSearch is the candidate list size during search. Zero means 64.
	EfSearch int
	Logger   *zap.Logger
}

// HNSW is a graph index over a Dataset, built on coder/hnsw. One instance
// serves one invocation: Build once, then any number of queries, then
// Close.
type HNSW struct {
	cfg  HNSWConfig
	dist DistanceFunc

	mu    sync.RWMutex
	graph *hnsw.Graph[core.VectorID]
	ds    *dataset.Dataset

	built  atomic.Bool
	closed atomic.Bool
	logger *zap.Logger
}

// cancelCheckStride is how many inserts happen between context checks
// during a build.
const cancelCheckStride = 256

// NewHNSW creates an unbuilt graph engine.
func NewHNSW(cfg HNSWConfig) (*HNSW, error) {
	if cfg.Metric == "" {
		cfg.Metric = core.MetricL2Squared
	}
	dist, err := Distance(cfg.Metric)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HNSW{cfg: cfg, dist: dist, logger: logger}, nil
}

// Build indexes the dataset on an engine-owned goroutine and fires obs
// exactly once with the result.
func (e *HNSW) Build(ctx context.Context, ds *dataset.Dataset, obs listener.BuildObserver) {
	go e.build(ctx, ds, obs)
}

func (e *HNSW) build(ctx context.Context, ds *dataset.Dataset, obs listener.BuildObserver) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.fireBuild(obs, core.BuildFailed(core.ReasonInternal,
				fmt.Errorf("panic during build: %v", r)))
		}
	}()

	if ds == nil || ds.Len() < minCorpus {
		e.fireBuild(obs, core.BuildFailed(core.ReasonInsufficientData,
			core.NewError(core.ReasonInsufficientData, "hnsw.build",
				fmt.Sprintf("corpus too small, need at least %d vectors", minCorpus))))
		return
	}

	graph := hnsw.NewGraph[core.VectorID]()
	switch e.cfg.Metric {
	case core.MetricCosine:
		graph.Distance = hnsw.CosineDistance
	default:
		// Squared L2 orders identically to L2.
		graph.Distance = hnsw.EuclideanDistance
	}
	if e.cfg.M > 0 {
		graph.M = e.cfg.M
	}
	graph.EfSearch = e.cfg.EfSearch
	if graph.EfSearch <= 0 {
		graph.EfSearch = 64
	}

	for i := 0; i < ds.Len(); i++ {
		if i%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				e.fireBuild(obs, core.BuildFailed(core.ReasonCancelled,
					core.WrapError(err, core.ReasonCancelled, "hnsw.build", "build abandoned")))
				return
			}
		}
		id := core.VectorID(i)
		graph.Add(hnsw.MakeNode(id, ds.Vector(id)))
	}

	e.mu.Lock()
	e.graph = graph
	e.ds = ds
	e.mu.Unlock()
	e.built.Store(true)

	metrics.BuildDurationSeconds.WithLabelValues("hnsw").Observe(time.Since(start).Seconds())
	e.logger.Debug("hnsw build complete",
		zap.String("dataset", ds.Name),
		zap.Int("vectors", ds.Len()),
		zap.Duration("elapsed", time.Since(start)))

	e.fireBuild(obs, core.BuildSucceeded())
}

// fireBuild delivers the build event unless the engine was closed first.
func (e *HNSW) fireBuild(obs listener.BuildObserver, ev core.CompletionEvent) {
	if e.closed.Load() {
		return
	}
	obs.OnBuildComplete(ev)
}

// Query answers a blocking k-NN query against the built graph.
func (e *HNSW) Query(query []float32, k int) (core.QueryResult, error) {
	start := time.Now()
	defer func() {
		metrics.QueryDurationSeconds.WithLabelValues("hnsw", "sync").Observe(time.Since(start).Seconds())
	}()

	if e.closed.Load() {
		return nil, core.NewError(core.ReasonInternal, "hnsw.query", "engine closed")
	}
	if !e.built.Load() {
		return nil, core.NewError(core.ReasonInternal, "hnsw.query", "query before build completion")
	}
	if k <= 0 {
		return nil, core.NewError(core.ReasonInternal, "hnsw.query", "k must be positive")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.graph == nil {
		return nil, core.NewError(core.ReasonInternal, "hnsw.query", "engine closed")
	}
	if len(query) != e.ds.Dimension {
		return nil, core.NewError(core.ReasonInvalidDimension, "hnsw.query",
			fmt.Sprintf("query dimension %d does not match index dimension %d", len(query), e.ds.Dimension))
	}

	nodes := e.graph.Search(query, k)
	result := make(core.QueryResult, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, core.Neighbor{ID: n.Key, Distance: e.dist(query, n.Value)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Distance < result[j].Distance })
	return result, nil
}

// QueryAsync answers the query on an engine-owned goroutine, firing obs
// exactly once.
func (e *HNSW) QueryAsync(query []float32, k int, obs listener.QueryObserver) {
	go func() {
		start := time.Now()
		res, err := e.Query(query, k)
		metrics.QueryDurationSeconds.WithLabelValues("hnsw", "async").Observe(time.Since(start).Seconds())
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

// Close tears down the index. The dataset is owned by the caller and is
// not released here.
func (e *HNSW) Close() {
	e.closed.Store(true)
	e.mu.Lock()
	e.graph = nil
	e.ds = nil
	e.mu.Unlock()
}
