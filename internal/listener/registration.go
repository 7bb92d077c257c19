// Package listener implements the completion-notification protocol between
// an index engine and the harness.
//
// A Registration is the consumer side of one pending operation (an index
// build or a query). The engine fires it exactly once from whatever
// goroutine it chooses; the consumer receives the event on a channel. The
// register -> fire -> retire lifecycle is an explicit state machine, and
// every illegal transition is detected and recorded rather than silently
// swallowed or allowed to panic.
package listener

import (
	"sync"
	"sync/atomic"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/metrics"
)

// State represents the lifecycle state of a registration.
type State uint32

const (
	StateRegistered State = iota
	StateFired
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateFired:
		return "fired"
	case StateRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// Registration is a one-shot completion slot. Fire is safe to call from
// any goroutine, concurrently with Retire, Cancel and channel reads.
type Registration struct {
	name  string
	state atomic.Uint32
	ch    chan core.CompletionEvent

	mu        sync.Mutex
	anomalies []core.AnomalyKind
}

// New creates a registration in the Registered state. name identifies the
// operation in diagnostics ("build", "query").
func New(name string) *Registration {
	return &Registration{
		name: name,
		// Buffer of one: the single permitted Fire never blocks on an
		// absent receiver.
		ch: make(chan core.CompletionEvent, 1),
	}
}

// Name returns the operation label the registration was created with.
func (r *Registration) Name() string { return r.name }

// State returns the current lifecycle state.
func (r *Registration) State() State { return State(r.state.Load()) }

// Events returns the channel on which the single completion event is
// delivered. The channel is never closed; receive exactly once or select
// against a done signal.
func (r *Registration) Events() <-chan core.CompletionEvent { return r.ch }

// Fire delivers the completion event exactly once. A second call records
// a double-fire anomaly and discards the event; a call after retirement
// records a late delivery and discards the event. Fire never blocks and
// never panics, whatever context it is invoked from.
func (r *Registration) Fire(ev core.CompletionEvent) bool {
	if r.state.CompareAndSwap(uint32(StateRegistered), uint32(StateFired)) {
		metrics.CompletionEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
		r.ch <- ev
		return true
	}
	switch State(r.state.Load()) {
	case StateRetired:
		r.record(core.AnomalyLateDelivery)
		metrics.LateEventsDiscardedTotal.Inc()
	default:
		r.record(core.AnomalyDoubleFire)
	}
	return false
}

// Retire ends the registration after its event has been consumed. Retiring
// a registration that never fired is a protocol violation and is recorded
// as a no-fire anomaly; use Cancel for deliberate abandonment.
func (r *Registration) Retire() bool {
	if r.state.CompareAndSwap(uint32(StateFired), uint32(StateRetired)) {
		return true
	}
	if r.state.CompareAndSwap(uint32(StateRegistered), uint32(StateRetired)) {
		r.record(core.AnomalyNoFire)
		return false
	}
	// Already retired.
	return false
}

// Cancel retires the registration regardless of state, without treating an
// unfired registration as a violation. Used when an invocation is
// abandoned; any subsequent Fire is discarded as a late delivery.
func (r *Registration) Cancel() {
	r.state.Store(uint32(StateRetired))
}

// Anomalies returns the protocol violations observed on this registration,
// in detection order.
func (r *Registration) Anomalies() []core.AnomalyKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.AnomalyKind, len(r.anomalies))
	copy(out, r.anomalies)
	return out
}

func (r *Registration) record(kind core.AnomalyKind) {
	metrics.ProtocolAnomaliesTotal.WithLabelValues(string(kind)).Inc()
	r.mu.Lock()
	r.anomalies = append(r.anomalies, kind)
	r.mu.Unlock()
}
