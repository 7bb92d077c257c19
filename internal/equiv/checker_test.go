package equiv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/crossbow/internal/core"
)

func result(pairs ...core.Neighbor) core.QueryResult {
	return core.QueryResult(pairs)
}

func TestCompare_EquivalentIgnoresOrder(t *testing.T) {
	a := result(
		core.Neighbor{ID: 1, Distance: 0.1},
		core.Neighbor{ID: 2, Distance: 0.2},
		core.Neighbor{ID: 3, Distance: 0.2},
	)
	// Same set, tie between 2 and 3 ordered differently.
	b := result(
		core.Neighbor{ID: 1, Distance: 0.1},
		core.Neighbor{ID: 3, Distance: 0.2},
		core.Neighbor{ID: 2, Distance: 0.2},
	)

	ok, diag := Compare(a, b, DefaultTolerance)
	assert.True(t, ok)
	assert.True(t, diag.OK())
	assert.Equal(t, "results equivalent", diag.String())
}

func TestCompare_MissingAndExtra(t *testing.T) {
	a := result(core.Neighbor{ID: 1, Distance: 0.1}, core.Neighbor{ID: 2, Distance: 0.2})
	b := result(core.Neighbor{ID: 1, Distance: 0.1}, core.Neighbor{ID: 9, Distance: 0.2})

	ok, diag := Compare(a, b, DefaultTolerance)
	require.False(t, ok)
	assert.Equal(t, []core.VectorID{2}, diag.Missing)
	assert.Equal(t, []core.VectorID{9}, diag.Extra)
	assert.Contains(t, diag.String(), "missing ids")
	assert.Contains(t, diag.String(), "extra ids")
}

func TestCompare_DistanceDelta(t *testing.T) {
	a := result(core.Neighbor{ID: 1, Distance: 0.5})

	tests := []struct {
		name string
		dist float32
		tol  Tolerance
		want bool
	}{
		{"within absolute", 0.5 + 5e-7, Tolerance{Mode: Absolute, Value: 1e-6}, true},
		{"beyond absolute", 0.51, Tolerance{Mode: Absolute, Value: 1e-6}, false},
		{"within relative", 0.505, Tolerance{Mode: Relative, Value: 0.02}, true},
		{"beyond relative", 0.52, Tolerance{Mode: Relative, Value: 0.02}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := result(core.Neighbor{ID: 1, Distance: tc.dist})
			ok, diag := Compare(a, b, tc.tol)
			assert.Equal(t, tc.want, ok)
			if !tc.want {
				require.Len(t, diag.Deltas, 1)
				assert.Equal(t, core.VectorID(1), diag.Deltas[0].ID)
			}
		})
	}
}

func TestCompare_MismatchIsValueNotError(t *testing.T) {
	// Comparing disjoint results is a normal observable outcome.
	a := result(core.Neighbor{ID: 1, Distance: 0.1})
	b := result(core.Neighbor{ID: 2, Distance: 0.1})

	assert.NotPanics(t, func() {
		ok, diag := Compare(a, b, DefaultTolerance)
		assert.False(t, ok)
		assert.False(t, diag.OK())
	})
}

func TestCompare_EmptyResults(t *testing.T) {
	ok, diag := Compare(nil, nil, DefaultTolerance)
	assert.True(t, ok)
	assert.True(t, diag.OK())
}

func TestRecall(t *testing.T) {
	truth := result(
		core.Neighbor{ID: 1, Distance: 0.1},
		core.Neighbor{ID: 2, Distance: 0.2},
		core.Neighbor{ID: 3, Distance: 0.3},
		core.Neighbor{ID: 4, Distance: 0.4},
	)
	found := result(
		core.Neighbor{ID: 1, Distance: 0.1},
		core.Neighbor{ID: 3, Distance: 0.3},
		core.Neighbor{ID: 7, Distance: 0.7},
	)

	assert.InDelta(t, 0.5, Recall(found, truth), 1e-9)
	assert.Equal(t, 1.0, Recall(truth, truth))
	assert.Equal(t, 1.0, Recall(nil, nil))
	assert.Equal(t, 0.0, Recall(nil, truth))
}
