package listener

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/crossbow/internal/core"
)

func TestRegistration_Lifecycle(t *testing.T) {
	reg := New("build")
	assert.Equal(t, StateRegistered, reg.State())

	require.True(t, reg.Fire(core.BuildSucceeded()))
	assert.Equal(t, StateFired, reg.State())

	ev := <-reg.Events()
	assert.Equal(t, core.EventBuildSucceeded, ev.Kind)

	assert.True(t, reg.Retire())
	assert.Equal(t, StateRetired, reg.State())
	assert.Empty(t, reg.Anomalies())
}

func TestRegistration_ExactlyOnceUnderContention(t *testing.T) {
	const attempts = 64

	reg := New("query")
	var delivered atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.Fire(core.QuerySucceeded(nil)) {
				delivered.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly one concurrent Fire wins; exactly one event is readable.
	assert.Equal(t, int32(1), delivered.Load())
	<-reg.Events()
	select {
	case <-reg.Events():
		t.Fatal("second event delivered")
	default:
	}

	// The losers are double-fire anomalies.
	assert.Len(t, reg.Anomalies(), attempts-1)
}

func TestRegistration_DoubleFireDetected(t *testing.T) {
	reg := New("build")
	require.True(t, reg.Fire(core.BuildSucceeded()))
	require.False(t, reg.Fire(core.BuildSucceeded()))

	anomalies := reg.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, core.AnomalyDoubleFire, anomalies[0])
}

func TestRegistration_RetireWithoutFireDetected(t *testing.T) {
	reg := New("build")
	assert.False(t, reg.Retire())
	assert.Equal(t, StateRetired, reg.State())

	anomalies := reg.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, core.AnomalyNoFire, anomalies[0])
}

func TestRegistration_LateFireAfterCancelDiscarded(t *testing.T) {
	reg := New("query")
	reg.Cancel()
	assert.Equal(t, StateRetired, reg.State())

	// A late delivery must not panic, must not be readable, and must be
	// recorded.
	assert.NotPanics(t, func() {
		assert.False(t, reg.Fire(core.QuerySucceeded(nil)))
	})
	select {
	case <-reg.Events():
		t.Fatal("late event delivered")
	default:
	}

	anomalies := reg.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, core.AnomalyLateDelivery, anomalies[0])
}

func TestRegistration_CancelAfterFireKeepsEvent(t *testing.T) {
	reg := New("build")
	require.True(t, reg.Fire(core.BuildSucceeded()))
	reg.Cancel()

	// The already-delivered event stays readable; cancellation only
	// blocks future fires.
	ev := <-reg.Events()
	assert.Equal(t, core.EventBuildSucceeded, ev.Kind)
	assert.Empty(t, reg.Anomalies())
}

func TestSequence_OrderingViolationDetected(t *testing.T) {
	seq := NewSequence()

	// Query completion before build completion is the ordering violation.
	seq.FireQuery(core.QuerySucceeded(nil))
	seq.FireBuild(core.BuildSucceeded())

	anomalies := seq.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, core.AnomalyOutOfOrder, anomalies[0])

	// Both events were still delivered, not swallowed.
	assert.Equal(t, core.EventBuildSucceeded, (<-seq.Build().Events()).Kind)
	assert.Equal(t, core.EventQuerySucceeded, (<-seq.Query().Events()).Kind)
}

func TestSequence_NormalOrderClean(t *testing.T) {
	seq := NewSequence()
	seq.FireBuild(core.BuildSucceeded())
	<-seq.Build().Events()
	seq.Build().Retire()

	seq.FireQuery(core.QuerySucceeded(core.QueryResult{{ID: 1, Distance: 0.5}}))
	ev := <-seq.Query().Events()
	seq.Query().Retire()

	require.Equal(t, core.EventQuerySucceeded, ev.Kind)
	assert.Empty(t, seq.Anomalies())
}

func TestSequence_CancelRetiresBoth(t *testing.T) {
	seq := NewSequence()
	seq.Cancel()
	assert.Equal(t, StateRetired, seq.Build().State())
	assert.Equal(t, StateRetired, seq.Query().State())
	assert.Empty(t, seq.Anomalies())
}
