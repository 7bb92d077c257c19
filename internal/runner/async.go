package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/engine"
	"github.com/23skdu/crossbow/internal/equiv"
	"github.com/23skdu/crossbow/internal/listener"
	"github.com/23skdu/crossbow/internal/metrics"
)

// ErrAlreadyStarted is returned by Start on reuse. A runner serves exactly
// one invocation.
var ErrAlreadyStarted = errors.New("async runner already started")

// ErrNotResolved is returned by WaitOutcome when the wait context expires
// before the asynchronous chain completes.
var ErrNotResolved = errors.New("async outcome not resolved")

// Async drives the listener path: it initiates the build, and the rest of
// the chain runs on engine- and runner-owned goroutines. The caller polls
// Outcome or parks on WaitOutcome. The runner owns its engine and closes
// it at finalization.
//
// Concurrency contract: one goroutine calls Start; completion events
// arrive from engine-chosen goroutines; Outcome/WaitOutcome/Abandon are
// safe from any goroutine. At most one outcome is ever produced, and once
// produced it never changes.
type Async struct {
	eng engine.Engine
	cfg Config

	seq    *listener.Sequence
	ds     *dataset.Dataset
	cancel context.CancelFunc

	started   atomic.Bool
	finalized atomic.Bool
	outcome   atomic.Pointer[core.TestOutcome]
	done      chan struct{}
}

// NewAsync creates an async runner around a freshly constructed engine.
// The runner takes ownership of the engine.
func NewAsync(eng engine.Engine, cfg Config) *Async {
	return &Async{
		eng:  eng,
		cfg:  cfg.withDefaults(),
		seq:  listener.NewSequence(),
		done: make(chan struct{}),
	}
}

// Start initiates the asynchronous chain and returns immediately. A nil
// error means initiation succeeded, not that the test passed. The dataset
// must stay valid until the outcome resolves or the runner is abandoned.
func (r *Async) Start(ctx context.Context, ds *dataset.Dataset) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if ds == nil || ds.Query(0) == nil {
		r.finalize(core.Fail(core.ReasonInsufficientData, "dataset has no query vector"))
		return errors.New("dataset has no query vector")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.ds = ds
	r.cancel = cancel

	r.eng.Build(runCtx, ds, listener.BuildObserverFunc(r.seq.FireBuild))
	go r.consume(runCtx)
	return nil
}

// consume observes the completion chain in order: build, then query, then
// cross-validation. It runs on a runner-owned goroutine so the engine's
// callback contexts never execute harness logic beyond firing a
// registration.
func (r *Async) consume(ctx context.Context) {
	var buildEv core.CompletionEvent
	select {
	case buildEv = <-r.seq.Build().Events():
		r.seq.Build().Retire()
	case <-ctx.Done():
		r.finalize(core.Fail(core.ReasonCancelled, "abandoned while awaiting build: "+ctx.Err().Error()))
		return
	}

	if buildEv.Kind != core.EventBuildSucceeded {
		r.finalize(core.Fail(buildEv.Reason, "build failed: "+buildEv.String()))
		return
	}

	// Build completion observed; only now may the query be issued.
	query := r.ds.Query(0)
	r.eng.QueryAsync(query, r.cfg.K, listener.QueryObserverFunc(r.seq.FireQuery))

	var queryEv core.CompletionEvent
	select {
	case queryEv = <-r.seq.Query().Events():
		r.seq.Query().Retire()
	case <-ctx.Done():
		r.finalize(core.Fail(core.ReasonCancelled, "abandoned while awaiting query: "+ctx.Err().Error()))
		return
	}

	if queryEv.Kind != core.EventQuerySucceeded {
		r.finalize(core.Fail(queryEv.Reason, "query failed: "+queryEv.String()))
		return
	}

	r.finalize(r.score(query, queryEv.Result))
}

// score cross-validates the asynchronously delivered result against the
// blocking path on the same built index, then against the exact
// reference.
func (r *Async) score(query []float32, asyncResult core.QueryResult) core.TestOutcome {
	syncResult, err := r.eng.Query(query, r.cfg.K)
	if err != nil {
		return core.Fail(core.ReasonOf(err), "blocking cross-check failed: "+err.Error())
	}

	equal, diag := equiv.Compare(syncResult, asyncResult, r.cfg.Tolerance)
	if !equal {
		return core.Fail(core.ReasonInternal, "sync/async mismatch: "+diag.String())
	}

	recall, err := scoreAgainstReference(r.ds, query, asyncResult, r.cfg)
	if err != nil {
		return core.Fail(core.ReasonOf(err), "reference scan failed: "+err.Error())
	}
	if r.cfg.EnforceRecall && recall < r.cfg.RecallThreshold {
		return core.Fail(core.ReasonInternal, "below threshold: "+recallDiagnostic(recall, r.cfg.RecallThreshold))
	}
	return core.Pass(recallDiagnostic(recall, r.cfg.RecallThreshold) + "; " + diag.String())
}

// finalize produces the single outcome of the invocation. First caller
// wins; later completion events are discarded by the retired
// registrations and recorded as anomalies, never re-processed.
func (r *Async) finalize(outcome core.TestOutcome) {
	if !r.finalized.CompareAndSwap(false, true) {
		return
	}

	// Any protocol violation observed along the way overrides the verdict.
	if anomalies := r.seq.Anomalies(); len(anomalies) > 0 {
		outcome = core.Fail(core.ReasonProtocolAnomaly,
			fmt.Sprintf("protocol anomalies %v; prior verdict: passed=%v %s", anomalies, outcome.Passed, outcome.Diagnostic))
	}

	r.seq.Cancel()
	r.eng.Close()
	if r.cancel != nil {
		r.cancel()
	}

	r.outcome.Store(&outcome)
	close(r.done)

	result := "fail"
	if outcome.Passed {
		result = "pass"
	}
	metrics.RunsTotal.WithLabelValues("async", result).Inc()
	r.cfg.Logger.Info("async run finalized",
		zap.Bool("passed", outcome.Passed),
		zap.String("reason", string(outcome.Reason)),
		zap.String("diagnostic", outcome.Diagnostic))
}

// Outcome returns the finalized outcome, or ok=false while the chain is
// still in flight. It never blocks, and once ok is true the outcome never
// changes.
func (r *Async) Outcome() (core.TestOutcome, bool) {
	if p := r.outcome.Load(); p != nil {
		return *p, true
	}
	return core.TestOutcome{}, false
}

// WaitOutcome parks until the outcome resolves or ctx expires. The wait is
// bounded by ctx; there is deliberately no unbounded variant.
func (r *Async) WaitOutcome(ctx context.Context) (core.TestOutcome, error) {
	select {
	case <-r.done:
		out, _ := r.Outcome()
		return out, nil
	case <-ctx.Done():
		return core.TestOutcome{}, fmt.Errorf("%w: %v", ErrNotResolved, ctx.Err())
	}
}

// Abandon cancels an in-flight invocation: the engine is released, pending
// registrations are retired, and any late completion event is discarded as
// a late delivery. Safe to call at any time, including after resolution.
func (r *Async) Abandon() {
	if r.cancel != nil {
		r.cancel()
	}
	r.finalize(core.Fail(core.ReasonCancelled, "invocation abandoned"))
}

// Done exposes the resolution signal for callers that compose with select.
func (r *Async) Done() <-chan struct{} { return r.done }
