package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/engine"
	"github.com/23skdu/crossbow/internal/listener"
	"github.com/23skdu/crossbow/internal/metrics"
)

// Sync drives the blocking path: build, wait inline, query inline, score.
// It owns the engine it is given and tears it down before returning,
// whatever the outcome.
type Sync struct {
	eng engine.Engine
	cfg Config
}

// NewSync creates a sync runner around a freshly constructed engine. The
// runner takes ownership of the engine.
func NewSync(eng engine.Engine, cfg Config) *Sync {
	return &Sync{eng: eng, cfg: cfg.withDefaults()}
}

// Run executes the blocking test. The engine's build completion still
// arrives through the listener protocol; blocking on it inline is what
// makes this path synchronous. Failures become failing outcomes, never
// panics, and the runner does not retry.
func (r *Sync) Run(ctx context.Context, ds *dataset.Dataset) core.TestOutcome {
	start := time.Now()
	defer r.eng.Close()

	outcome := r.run(ctx, ds)

	result := "fail"
	if outcome.Passed {
		result = "pass"
	}
	metrics.RunsTotal.WithLabelValues("sync", result).Inc()
	r.cfg.Logger.Info("sync run finished",
		zap.String("dataset", ds.Name),
		zap.Bool("passed", outcome.Passed),
		zap.String("diagnostic", outcome.Diagnostic),
		zap.Duration("elapsed", time.Since(start)))
	return outcome
}

func (r *Sync) run(ctx context.Context, ds *dataset.Dataset) core.TestOutcome {
	reg := listener.New("build")
	r.eng.Build(ctx, ds, listener.BuildObserverFunc(func(ev core.CompletionEvent) {
		reg.Fire(ev)
	}))

	var ev core.CompletionEvent
	select {
	case ev = <-reg.Events():
		reg.Retire()
	case <-ctx.Done():
		reg.Cancel()
		return core.Fail(core.ReasonCancelled, "build wait abandoned: "+ctx.Err().Error())
	}

	if ev.Kind != core.EventBuildSucceeded {
		return core.Fail(ev.Reason, "build failed: "+ev.String())
	}

	query := ds.Query(0)
	result, err := r.eng.Query(query, r.cfg.K)
	if err != nil {
		return core.Fail(core.ReasonOf(err), "query failed: "+err.Error())
	}

	recall, err := scoreAgainstReference(ds, query, result, r.cfg)
	if err != nil {
		return core.Fail(core.ReasonOf(err), "reference scan failed: "+err.Error())
	}
	if r.cfg.EnforceRecall && recall < r.cfg.RecallThreshold {
		return core.Fail(core.ReasonInternal, "below threshold: "+recallDiagnostic(recall, r.cfg.RecallThreshold))
	}
	return core.Pass(recallDiagnostic(recall, r.cfg.RecallThreshold))
}
