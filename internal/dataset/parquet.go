package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"

	"github.com/23skdu/crossbow/internal/core"
)

// VectorRecord is the parquet row model for dataset fixtures.
type VectorRecord struct {
	ID     int32     `parquet:"id"`
	Vector []float32 `parquet:"vector"`
}

// WriteFile persists the corpus vectors of ds as a zstd-compressed parquet
// fixture. Query vectors are not part of the fixture; they are derived or
// supplied at load time.
func WriteFile(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pw := parquet.NewGenericWriter[VectorRecord](f, parquet.Compression(&parquet.Zstd))
	for i := 0; i < ds.Len(); i++ {
		rec := VectorRecord{ID: int32(i), Vector: ds.Vector(core.VectorID(i))}
		if _, err := pw.Write([]VectorRecord{rec}); err != nil {
			return err
		}
	}
	return pw.Close()
}

// FileProvider loads a parquet fixture written by WriteFile and attaches
// the given query vectors.
type FileProvider struct {
	Name    string
	Path    string
	Queries [][]float32
	Mem     memory.Allocator
}

// Dataset reads the fixture into an Arrow-backed Dataset.
func (p FileProvider) Dataset() (*Dataset, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, err
	}

	pr := parquet.NewGenericReader[VectorRecord](pf)
	defer pr.Close()

	rows := make([]VectorRecord, pr.NumRows())
	if _, err := pr.Read(rows); err != nil && err != io.EOF {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset fixture %s: no rows", p.Path)
	}

	vectors := make([][]float32, len(rows))
	for _, row := range rows {
		if int(row.ID) < 0 || int(row.ID) >= len(rows) {
			return nil, fmt.Errorf("dataset fixture %s: id %d out of range", p.Path, row.ID)
		}
		vectors[row.ID] = row.Vector
	}

	mem := p.Mem
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	name := p.Name
	if name == "" {
		name = p.Path
	}
	return FromVectors(mem, name, vectors, p.Queries)
}
