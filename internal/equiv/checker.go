// Package equiv validates that two independently obtained query results
// agree. Comparison failure is a normal observable outcome, reported as a
// diagnostic value, never as an error or panic.
package equiv

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/23skdu/crossbow/internal/core"
	"github.com/23skdu/crossbow/internal/metrics"
)

// ToleranceMode selects how distance agreement is measured.
type ToleranceMode string

const (
	// Absolute compares |a-b| against the tolerance value.
	Absolute ToleranceMode = "absolute"
	// Relative compares |a-b| / max(|a|, |b|) against the tolerance value.
	Relative ToleranceMode = "relative"
)

// Tolerance bounds the permitted distance disagreement between matching
// identifiers.
type Tolerance struct {
	Mode  ToleranceMode
	Value float64
}

// DefaultTolerance matches distances to within 1e-6 absolute.
var DefaultTolerance = Tolerance{Mode: Absolute, Value: 1e-6}

// Delta is one identifier whose distances disagreed beyond tolerance.
type Delta struct {
	ID   core.VectorID
	A, B float32
	Diff float64
}

// Diagnostic describes a comparison mismatch. Empty slices mean the
// results agreed.
type Diagnostic struct {
	Missing []core.VectorID // present in A, absent from B
	Extra   []core.VectorID // present in B, absent from A
	Deltas  []Delta
}

// OK reports whether the comparison found no mismatch.
func (d Diagnostic) OK() bool {
	return len(d.Missing) == 0 && len(d.Extra) == 0 && len(d.Deltas) == 0
}

func (d Diagnostic) String() string {
	if d.OK() {
		return "results equivalent"
	}
	var parts []string
	if len(d.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing ids %v", d.Missing))
	}
	if len(d.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra ids %v", d.Extra))
	}
	for _, dl := range d.Deltas {
		parts = append(parts, fmt.Sprintf("id %d distance delta %g (%g vs %g)", dl.ID, dl.Diff, dl.A, dl.B))
	}
	return strings.Join(parts, "; ")
}

// Compare treats each result as a set of identifiers, requires set
// equality, and verifies distances for matching identifiers agree within
// tol. Internal ordering of ties is deliberately not compared.
func Compare(a, b core.QueryResult, tol Tolerance) (bool, Diagnostic) {
	setA := a.IDSet()
	setB := b.IDSet()

	var diag Diagnostic
	for id := range setA {
		if _, ok := setB[id]; !ok {
			diag.Missing = append(diag.Missing, id)
		}
	}
	for id := range setB {
		if _, ok := setA[id]; !ok {
			diag.Extra = append(diag.Extra, id)
		}
	}
	sortIDs(diag.Missing)
	sortIDs(diag.Extra)

	for _, n := range a {
		db, ok := setB[n.ID]
		if !ok {
			continue
		}
		diff := math.Abs(float64(n.Distance) - float64(db))
		if !within(diff, float64(n.Distance), float64(db), tol) {
			diag.Deltas = append(diag.Deltas, Delta{ID: n.ID, A: n.Distance, B: db, Diff: diff})
		}
	}

	if !diag.OK() {
		switch {
		case len(diag.Missing) > 0:
			metrics.EquivalenceFailuresTotal.WithLabelValues("missing_ids").Inc()
		case len(diag.Extra) > 0:
			metrics.EquivalenceFailuresTotal.WithLabelValues("extra_ids").Inc()
		default:
			metrics.EquivalenceFailuresTotal.WithLabelValues("distance_delta").Inc()
		}
		return false, diag
	}
	return true, diag
}

func within(diff, a, b float64, tol Tolerance) bool {
	switch tol.Mode {
	case Relative:
		scale := math.Max(math.Abs(a), math.Abs(b))
		if scale == 0 {
			return diff == 0
		}
		return diff/scale <= tol.Value
	default:
		return diff <= tol.Value
	}
}

// Recall returns the fraction of ground-truth identifiers found in result.
// An empty ground truth yields 1.
func Recall(result, groundTruth core.QueryResult) float64 {
	if len(groundTruth) == 0 {
		return 1
	}
	found := result.IDSet()
	hits := 0
	for _, n := range groundTruth {
		if _, ok := found[n.ID]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(groundTruth))
}

func sortIDs(ids []core.VectorID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
