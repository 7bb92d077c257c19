package dataset

import (
	"math/rand"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Provider supplies a Dataset for one test invocation. Implementations
// must be deterministic across runs for a fixed configuration.
type Provider interface {
	Dataset() (*Dataset, error)
}

// Synthetic generates a seeded uniform corpus in [-1, 1] with query
// vectors derived by lightly perturbing corpus vectors, so every query has
// an unambiguous nearest neighborhood.
type Synthetic struct {
	Name    string
	Count   int
	Dim     int
	Queries int
	Seed    int64

	// Perturbation is the per-component magnitude applied when deriving a
	// query from a corpus vector. Zero means 0.05.
	Perturbation float32

	// QueryDim overrides the query vector dimension when nonzero. Setting
	// it different from Dim produces a corpus whose queries must be
	// rejected with an invalid-dimension failure.
	QueryDim int

	// Mem is the Arrow allocator; nil means the default Go allocator.
	Mem memory.Allocator
}

// Dataset materializes the synthetic corpus. The same Synthetic value
// always produces byte-identical vectors.
func (s Synthetic) Dataset() (*Dataset, error) {
	mem := s.Mem
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	rng := rand.New(rand.NewSource(s.Seed))

	vectors := make([][]float32, s.Count)
	for i := range vectors {
		vec := make([]float32, s.Dim)
		for j := range vec {
			vec[j] = rng.Float32()*2 - 1
		}
		vectors[i] = vec
	}

	perturb := s.Perturbation
	if perturb == 0 {
		perturb = 0.05
	}
	queryDim := s.QueryDim
	if queryDim == 0 {
		queryDim = s.Dim
	}

	nq := s.Queries
	if nq <= 0 {
		nq = 1
	}
	queries := make([][]float32, nq)
	for i := range queries {
		q := make([]float32, queryDim)
		base := vectors[rng.Intn(len(vectors))]
		for j := range q {
			if j < len(base) {
				q[j] = base[j]
			} else {
				q[j] = rng.Float32()*2 - 1
			}
			q[j] += (rng.Float32() - 0.5) * perturb
		}
		queries[i] = q
	}

	name := s.Name
	if name == "" {
		name = "synthetic"
	}
	return FromVectors(mem, name, vectors, queries)
}
