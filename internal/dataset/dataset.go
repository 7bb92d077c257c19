// Package dataset supplies immutable vector corpora to the harness.
//
// Vectors are stored as Arrow record batches with a FixedSizeList<float32>
// "vector" column. A Dataset is safe to share read-only across concurrent
// runner invocations; it is never mutated after construction.
package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/23skdu/crossbow/internal/core"
)

// Dataset is an ordered corpus of fixed-dimension vectors plus one or more
// designated query vectors. Lifecycle is scoped to one test invocation;
// call Release when done.
type Dataset struct {
	Name      string
	Dimension int
	Records   []arrow.RecordBatch

	// values[i] is the flat float32 buffer of Records[i]'s vector column.
	// Cached at construction; valid as long as the record is retained.
	values  [][]float32
	rows    []int
	total   int
	queries [][]float32
}

// batchRows is the number of vectors per record batch.
const batchRows = 4096

// FromVectors builds a Dataset from in-memory vectors. All vectors must
// share the same dimension; queries may not (a dimension-mismatched query
// is a legitimate corpus for failure-path tests). A nil mem defaults to
// the Go allocator.
func FromVectors(mem memory.Allocator, name string, vectors [][]float32, queries [][]float32) (*Dataset, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("dataset %s: empty corpus", name)
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("dataset %s: zero-dimension vectors", name)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("dataset %s: vector %d has dimension %d, want %d", name, i, len(v), dim)
		}
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "vector", Type: arrow.FixedSizeListOf(int32(dim), arrow.PrimitiveTypes.Float32)},
	}, nil)

	ds := &Dataset{Name: name, Dimension: dim, queries: queries}

	for start := 0; start < len(vectors); start += batchRows {
		end := start + batchRows
		if end > len(vectors) {
			end = len(vectors)
		}

		b := array.NewRecordBuilder(mem, schema)
		idBuilder := b.Field(0).(*array.Int32Builder)
		vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
		valBuilder := vecBuilder.ValueBuilder().(*array.Float32Builder)

		for i := start; i < end; i++ {
			idBuilder.Append(int32(i))
			vecBuilder.Append(true)
			valBuilder.AppendValues(vectors[i], nil)
		}

		rec := b.NewRecordBatch()
		b.Release()
		ds.appendRecord(rec)
	}
	return ds, nil
}

// appendRecord takes ownership of rec and caches its vector buffer.
func (ds *Dataset) appendRecord(rec arrow.RecordBatch) {
	listArr := rec.Column(1).(*array.FixedSizeList)
	values := array.NewFloat32Data(listArr.Data().Children()[0])
	ds.Records = append(ds.Records, rec)
	ds.values = append(ds.values, values.Float32Values())
	ds.rows = append(ds.rows, int(rec.NumRows()))
	ds.total += int(rec.NumRows())
	values.Release()
}

// Len returns the number of corpus vectors.
func (ds *Dataset) Len() int { return ds.total }

// Vector returns a read-only view of the vector at id, or nil if out of
// range. The slice aliases Arrow memory and is valid for the Dataset's
// lifetime.
func (ds *Dataset) Vector(id core.VectorID) []float32 {
	row := int(id)
	for b, n := range ds.rows {
		if row < n {
			start := row * ds.Dimension
			return ds.values[b][start : start+ds.Dimension]
		}
		row -= n
	}
	return nil
}

// Queries returns the designated query vectors.
func (ds *Dataset) Queries() [][]float32 { return ds.queries }

// Query returns the i-th designated query vector, or nil.
func (ds *Dataset) Query(i int) []float32 {
	if i < 0 || i >= len(ds.queries) {
		return nil
	}
	return ds.queries[i]
}

// Release drops the underlying Arrow buffers. The Dataset must not be
// used afterwards.
func (ds *Dataset) Release() {
	for _, rec := range ds.Records {
		rec.Release()
	}
	ds.Records = nil
	ds.values = nil
	ds.rows = nil
	ds.total = 0
}
