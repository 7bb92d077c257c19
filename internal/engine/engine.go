// Package engine provides index engines satisfying the harness capability
// contract: build an index over a dataset, answer blocking queries, and
// answer non-blocking queries through the completion-listener protocol.
package engine

import (
	"context"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/listener"
)

// Engine is the capability contract the harness consumes. Implementations
// choose their own execution contexts for Build and QueryAsync; observers
// must therefore not assume they are invoked from the caller's goroutine.
type Engine interface {
	// Build indexes the dataset in the background and reports completion
	// through obs exactly once. The dataset must stay valid until the
	// build completes or the engine is closed. Cancelling ctx aborts the
	// build with a cancelled failure event.
	Build(ctx context.Context, ds *dataset.Dataset, obs listener.BuildObserver)

	// Query answers a blocking k-NN query. It is an error to call it
	// before a successful build has been observed.
	Query(query []float32, k int) (core.QueryResult, error)

	// QueryAsync answers the same query non-blockingly, reporting through
	// obs exactly once.
	QueryAsync(query []float32, k int, obs listener.QueryObserver)

	// Close tears the index down. Safe to call more than once; the engine
	// must not fire observers after Close returns.
	Close()
}

// minCorpus is the smallest corpus an engine will index. A graph over
// fewer vectors cannot produce a meaningful neighborhood.
const minCorpus = 2
