// Package runner drives one index engine invocation end to end and scores
// it. The Sync runner exercises the blocking path; the Async runner
// exercises the listener-driven path and cross-validates it against the
// blocking path on the same built index.
package runner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/engine"
	"github.com/23skdu/crossbow/internal/equiv"
)

// Config carries the per-invocation test parameters shared by both
// runners.
type Config struct {
	// K is the number of neighbors requested per query.
	K int
	// Metric selects the distance function for the reference scan.
	Metric core.DistanceMetric
	// Tolerance bounds cross-path distance disagreement.
	Tolerance equiv.Tolerance
	// RecallThreshold is the minimum acceptable recall against the exact
	// reference when EnforceRecall is set. Zero means 0.8.
	RecallThreshold float64
	// EnforceRecall turns the recall measurement into a pass/fail gate.
	// Off by default: an approximate index trades recall for speed, so
	// recall is reported in the diagnostic while the cross-path
	// equivalence check carries the verdict.
	EnforceRecall bool
	Logger        *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.K <= 0 {
		c.K = 10
	}
	if c.Metric == "" {
		c.Metric = core.MetricL2Squared
	}
	if c.Tolerance.Value == 0 {
		c.Tolerance = equiv.DefaultTolerance
	}
	if c.RecallThreshold == 0 {
		c.RecallThreshold = 0.8
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// scoreAgainstReference checks a query result against the exact scan of
// the same dataset. Used by both runners; the exact scan is the
// deterministic ground truth both paths must approximate.
func scoreAgainstReference(ds *dataset.Dataset, query []float32, result core.QueryResult, cfg Config) (float64, error) {
	dist, err := engine.Distance(cfg.Metric)
	if err != nil {
		return 0, err
	}
	truth, err := engine.ExactSearch(ds, query, cfg.K, dist)
	if err != nil {
		return 0, err
	}
	return equiv.Recall(result, truth), nil
}

func recallDiagnostic(recall, threshold float64) string {
	return fmt.Sprintf("recall %.4f (threshold %.4f)", recall, threshold)
}
