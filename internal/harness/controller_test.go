package harness_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/dataset"
	"github.com/23skdu/crossbow/internal/engine"
	"github.com/23skdu/crossbow/internal/harness"
	"github.com/23skdu/crossbow/internal/runner"
)

const resolveWait = 30 * time.Second

func newController(provider dataset.Provider) *harness.Controller {
	return harness.New(provider, harness.Options{
		Engine: engine.KindHNSW,
		HNSW:   engine.HNSWConfig{Metric: core.MetricL2Squared, EfSearch: 200},
		Runner: runner.Config{K: 10, Metric: core.MetricL2Squared},
	})
}

// Scenario: 1000 4-dimensional vectors, k=10; the blocking and listener
// paths must agree on the same identifiers with distances within 1e-6.
func TestController_BothModesAgree(t *testing.T) {
	ctrl := newController(dataset.Synthetic{Count: 1000, Dim: 4, Seed: 42})
	ctx := context.Background()

	assert.True(t, ctrl.RunTestSync(ctx))

	require.True(t, ctrl.RunTestAsync(ctx))

	// The poll is non-blocking and undetermined until resolution.
	waitCtx, cancel := context.WithTimeout(ctx, resolveWait)
	defer cancel()
	out, err := ctrl.WaitAsync(waitCtx)
	require.NoError(t, err)
	assert.True(t, out.Passed, out.Diagnostic)
	assert.True(t, ctrl.AsyncTestResult())

	// Once resolved, the answer never flips.
	for i := 0; i < 5; i++ {
		assert.True(t, ctrl.AsyncTestResult())
	}
}

// Scenario: query dimension does not match the index dimension; the build
// succeeds, the query fails with an invalid-dimension reason, and both
// mode verdicts are false.
func TestController_DimensionMismatchFailsBothModes(t *testing.T) {
	ctrl := newController(dataset.Synthetic{Count: 100, Dim: 4, Seed: 42, QueryDim: 6})
	ctx := context.Background()

	assert.False(t, ctrl.RunTestSync(ctx))

	require.True(t, ctrl.RunTestAsync(ctx))
	waitCtx, cancel := context.WithTimeout(ctx, resolveWait)
	defer cancel()
	out, err := ctrl.WaitAsync(waitCtx)
	require.NoError(t, err)
	require.False(t, out.Passed)
	assert.Equal(t, core.ReasonInvalidDimension, out.Reason)
	assert.False(t, ctrl.AsyncTestResult())
}

// Scenario: an async invocation is abandoned before completion; late
// events are discarded and a fresh invocation still succeeds.
func TestController_AbandonThenFreshRun(t *testing.T) {
	// A corpus large enough that the build is still in flight when the
	// invocation is abandoned.
	ctrl := newController(dataset.Synthetic{Count: 20000, Dim: 32, Seed: 42})
	ctx := context.Background()

	require.True(t, ctrl.RunTestAsync(ctx))
	ctrl.AbandonAsync()

	out, ok := ctrl.AsyncOutcome()
	require.True(t, ok)
	require.False(t, out.Passed)
	assert.Equal(t, core.ReasonCancelled, out.Reason)

	require.True(t, ctrl.RunTestAsync(ctx))
	waitCtx, cancel := context.WithTimeout(ctx, resolveWait)
	defer cancel()
	fresh, err := ctrl.WaitAsync(waitCtx)
	require.NoError(t, err)
	assert.True(t, fresh.Passed, fresh.Diagnostic)
	assert.True(t, ctrl.AsyncTestResult())
}

func TestController_AsyncResultFalseBeforeAnyRun(t *testing.T) {
	ctrl := newController(dataset.Synthetic{Count: 100, Dim: 4, Seed: 42})
	assert.False(t, ctrl.AsyncTestResult())
	_, ok := ctrl.AsyncOutcome()
	assert.False(t, ok)
}

// Concurrent sync invocations share only the immutable dataset source;
// each run owns its engine and registrations.
func TestController_ConcurrentSyncRunsIsolated(t *testing.T) {
	ctrl := newController(dataset.Synthetic{Count: 300, Dim: 4, Seed: 42})

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			if !ctrl.RunTestSync(context.Background()) {
				return assert.AnError
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

// The exact engine reproduces the reference scan, so the recall gate is
// attainable and enabled here.
func TestController_BruteEngineEndToEnd(t *testing.T) {
	ctrl := harness.New(dataset.Synthetic{Count: 200, Dim: 4, Seed: 7}, harness.Options{
		Engine: engine.KindBrute,
		Runner: runner.Config{K: 10, Metric: core.MetricL2Squared, EnforceRecall: true},
	})
	ctx := context.Background()

	assert.True(t, ctrl.RunTestSync(ctx))
	require.True(t, ctrl.RunTestAsync(ctx))
	waitCtx, cancel := context.WithTimeout(ctx, resolveWait)
	defer cancel()
	out, err := ctrl.WaitAsync(waitCtx)
	require.NoError(t, err)
	assert.True(t, out.Passed, out.Diagnostic)
}
