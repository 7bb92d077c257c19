// Package harness orchestrates the cross-validation test surface: run the
// blocking mode, run the listener-driven mode, poll the asynchronous
// verdict. Each invocation gets a fresh engine and runner; nothing mutable
// is shared across runs.
package harness

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/engine"
	"github.com/23skdu/crossbow/internal/runner"
)

// Options configures a Controller.
type Options struct {
	Engine engine.Kind
	HNSW   engine.HNSWConfig
	Runner runner.Config
	Logger *zap.Logger
}

// Controller owns the dataset provider and exposes the harness surface.
// Safe for concurrent use; concurrent invocations operate on their own
// engines and listener registrations with no cross-talk.
type Controller struct {
	provider dataset.Provider
	opts     Options
	logger   *zap.Logger

	mu    sync.Mutex
	async *runner.Async
}

// New creates a controller over the given dataset provider.
func New(provider dataset.Provider, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Runner.Logger == nil {
		opts.Runner.Logger = logger
	}
	if opts.HNSW.Logger == nil {
		opts.HNSW.Logger = logger
	}
	return &Controller{provider: provider, opts: opts, logger: logger}
}

func (c *Controller) newEngine() (engine.Engine, error) {
	return engine.New(c.opts.Engine, c.opts.HNSW)
}

// RunTestSync executes the blocking-path test and returns its verdict.
// The reason for a failure is carried in the outcome diagnostic, which is
// logged; the boolean is the whole externally visible result.
func (c *Controller) RunTestSync(ctx context.Context) bool {
	ds, err := c.provider.Dataset()
	if err != nil {
		c.logger.Error("dataset provider failed", zap.Error(err))
		return false
	}
	defer ds.Release()

	eng, err := c.newEngine()
	if err != nil {
		c.logger.Error("engine construction failed", zap.Error(err))
		return false
	}

	outcome := runner.NewSync(eng, c.opts.Runner).Run(ctx, ds)
	return outcome.Passed
}

// RunTestAsync initiates the listener-path test and returns whether
// initiation succeeded; it says nothing about the eventual verdict. A
// previous unresolved invocation is abandoned first, so registrations
// never leak across runs.
func (c *Controller) RunTestAsync(ctx context.Context) bool {
	ds, err := c.provider.Dataset()
	if err != nil {
		c.logger.Error("dataset provider failed", zap.Error(err))
		return false
	}

	eng, err := c.newEngine()
	if err != nil {
		ds.Release()
		c.logger.Error("engine construction failed", zap.Error(err))
		return false
	}

	r := runner.NewAsync(eng, c.opts.Runner)

	c.mu.Lock()
	if prev := c.async; prev != nil {
		if _, resolved := prev.Outcome(); !resolved {
			prev.Abandon()
		}
	}
	c.async = r
	c.mu.Unlock()

	if err := r.Start(ctx, ds); err != nil {
		ds.Release()
		c.logger.Error("async initiation failed", zap.Error(err))
		return false
	}

	// The dataset must outlive the chain; release it once the outcome
	// resolves or the invocation is abandoned.
	go func() {
		<-r.Done()
		ds.Release()
	}()
	return true
}

// AsyncTestResult polls the verdict of the most recent async invocation.
// It never blocks: false until the chain resolves, then stable for the
// invocation's lifetime.
func (c *Controller) AsyncTestResult() bool {
	out, ok := c.asyncOutcome()
	return ok && out.Passed
}

// AsyncOutcome exposes the full outcome for callers that want the
// diagnostic; ok is false while unresolved.
func (c *Controller) AsyncOutcome() (core.TestOutcome, bool) {
	return c.asyncOutcome()
}

// WaitAsync parks until the current async invocation resolves or ctx
// expires.
func (c *Controller) WaitAsync(ctx context.Context) (core.TestOutcome, error) {
	c.mu.Lock()
	r := c.async
	c.mu.Unlock()
	if r == nil {
		return core.TestOutcome{}, runner.ErrNotResolved
	}
	return r.WaitOutcome(ctx)
}

// AbandonAsync abandons the current async invocation, if any. Late
// completion events are discarded safely; a fresh invocation afterwards is
// fully independent.
func (c *Controller) AbandonAsync() {
	c.mu.Lock()
	r := c.async
	c.mu.Unlock()
	if r != nil {
		r.Abandon()
	}
}

func (c *Controller) asyncOutcome() (core.TestOutcome, bool) {
	c.mu.Lock()
	r := c.async
	c.mu.Unlock()
	if r == nil {
		return core.TestOutcome{}, false
	}
	return r.Outcome()
}
