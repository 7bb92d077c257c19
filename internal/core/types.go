package core

// VectorID is a unique identifier for a vector in a corpus.
// It is physically a uint32, matching the row position at which the
// vector was added.
type VectorID uint32

// Neighbor is a single (identifier, distance) search hit.
type Neighbor struct {
	ID       VectorID
	Distance float32
}

// QueryResult is an ordered sequence of neighbors, ascending by distance,
// with length <= the requested k. It is immutable once produced.
type QueryResult []Neighbor

// IDs returns the identifiers of the result in result order.
func (r QueryResult) IDs() []VectorID {
	ids := make([]VectorID, len(r))
	for i, n := range r {
		ids[i] = n.ID
	}
	return ids
}

// IDSet returns the identifiers of the result keyed to their distances.
func (r QueryResult) IDSet() map[VectorID]float32 {
	set := make(map[VectorID]float32, len(r))
	for _, n := range r {
		set[n.ID] = n.Distance
	}
	return set
}
