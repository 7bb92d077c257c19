package listener

import "github.com/23skdu/crossbow/internal/core"

// Sequence ties together the build and query registrations of one
// invocation and enforces the ordering invariant between them: the query
// completion must never be observed before the build completion. A
// violation is recorded as an out-of-order anomaly; the event is still
// delivered so the consumer can fold the anomaly into a failing outcome
// instead of losing the notification.
type Sequence struct {
	build *Registration
	query *Registration
}

// NewSequence creates the two registrations for a fresh invocation.
func NewSequence() *Sequence {
	return &Sequence{
		build: New("build"),
		query: New("query"),
	}
}

// Build returns the build-completion registration.
func (s *Sequence) Build() *Registration { return s.build }

// Query returns the query-completion registration.
func (s *Sequence) Query() *Registration { return s.query }

// FireBuild delivers the build completion event.
func (s *Sequence) FireBuild(ev core.CompletionEvent) {
	s.build.Fire(ev)
}

// FireQuery delivers the query completion event, recording an out-of-order
// anomaly if the build registration has not fired yet.
func (s *Sequence) FireQuery(ev core.CompletionEvent) {
	if s.build.State() == StateRegistered {
		s.query.record(core.AnomalyOutOfOrder)
	}
	s.query.Fire(ev)
}

// Cancel retires both registrations without recording no-fire violations.
// Subsequent fires are discarded as late deliveries.
func (s *Sequence) Cancel() {
	s.build.Cancel()
	s.query.Cancel()
}

// Anomalies returns all protocol violations observed across both
// registrations.
func (s *Sequence) Anomalies() []core.AnomalyKind {
	out := s.build.Anomalies()
	return append(out, s.query.Anomalies()...)
}
