package dataset

import (
	"math/rand"

	"github.com/23skdu/crossbow/internal/core"
)

// DeriveQueries wraps a provider whose datasets carry no query vectors
// (parquet fixtures, typically) and derives queries by perturbing corpus
// vectors, the same way the synthetic provider does.
type DeriveQueries struct {
	Inner        Provider
	Count        int
	Seed         int64
	Perturbation float32
}

// Dataset loads the inner dataset and attaches derived queries.
func (d DeriveQueries) Dataset() (*Dataset, error) {
	ds, err := d.Inner.Dataset()
	if err != nil {
		return nil, err
	}
	if len(ds.queries) > 0 {
		return ds, nil
	}

	rng := rand.New(rand.NewSource(d.Seed))
	perturb := d.Perturbation
	if perturb == 0 {
		perturb = 0.05
	}
	count := d.Count
	if count <= 0 {
		count = 1
	}

	queries := make([][]float32, count)
	for i := range queries {
		base := ds.Vector(core.VectorID(rng.Intn(ds.Len())))
		q := make([]float32, ds.Dimension)
		for j := range q {
			q[j] = base[j] + (rng.Float32()-0.5)*perturb
		}
		queries[i] = q
	}
	ds.queries = queries
	return ds, nil
}
