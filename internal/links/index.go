package links

import (
	"sync"
)

// Index is the in-memory link index of one property: ingest-ordered
// metadata and a parallel array of unit vectors.
type Index struct {
	mu      sync.RWMutex
	records []Record
	vectors [][]float64
}

// NewIndex builds an index from parallel records and vectors.
func NewIndex(records []Record, vectors [][]float64) *Index {
	return &Index{records: records, vectors: vectors}
}

// Len returns the number of records.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.records)
}

// Records returns the ingest-ordered metadata.
func (i *Index) Records() []Record {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.records
}

// Vectors returns the normalized vectors, parallel to Records.
func (i *Index) Vectors() [][]float64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.vectors
}

// snapshot returns the records and vectors as currently seen. During a
// replace the two may come from different builds; callers only use the
// common prefix.
func (i *Index) snapshot() ([]Record, [][]float64) {
	records := i.Records()
	vectors := i.Vectors()
	n := min(len(records), len(vectors))
	return records[:n], vectors[:n]
}

// replace swaps metadata first and vectors second. The swap is not atomic
// for readers.
func (i *Index) replace(records []Record, vectors [][]float64) {
	i.mu.Lock()
	i.records = records
	i.mu.Unlock()

	i.mu.Lock()
	i.vectors = vectors
	i.mu.Unlock()
}

// Guaranteed returns the records flagged always_include.
func (i *Index) Guaranteed() []Record {
	var out []Record
	for _, r := range i.Records() {
		if r.AlwaysInclude {
			out = append(out, r)
		}
	}
	return out
}
