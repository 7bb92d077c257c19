package engine

import (
	"fmt"

	"github.com/viant/vec/search"

	"github.com/23skdu/crossbow/internal/core"
)

// DistanceFunc computes the distance between two vectors of equal
// dimension.
type DistanceFunc func(a, b []float32) float32

// Distance resolves the callable implementation for a metric.
func Distance(metric core.DistanceMetric) (DistanceFunc, error) {
	switch metric {
	case core.MetricEuclidean:
		return euclidean, nil
	case core.MetricL2Squared:
		return l2Squared, nil
	case core.MetricCosine:
		return cosine, nil
	default:
		return nil, fmt.Errorf("unsupported distance metric %q", metric)
	}
}

func euclidean(a, b []float32) float32 {
	return search.Float32s(a).EuclideanDistance(b)
}

func l2Squared(a, b []float32) float32 {
	d := search.Float32s(a).EuclideanDistance(b)
	return d * d
}

func cosine(a, b []float32) float32 {
	return search.Float32s(a).CosineDistance(b)
}
