package ingest

import "github.com/artugro/load-flow/pkg/loadflow"

// Buffer holds staged employee records up to a fixed limit. Its backing array
// is allocated once and reused after every Reset.
type Buffer struct {
	records []loadflow.EmployeeRecord
	limit   int
}

// NewBuffer creates a buffer that reports full at limit records.
// A non-positive limit falls back to loadflow.DefaultBatchSize.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = loadflow.DefaultBatchSize
	}
	return &Buffer{
		records: make([]loadflow.EmployeeRecord, 0, limit),
		limit:   limit,
	}
}

// Add stages rec and reports whether the buffer reached its limit.
func (b *Buffer) Add(rec loadflow.EmployeeRecord) (full bool) {
	b.records = append(b.records, rec)
	return len(b.records) >= b.limit
}

// Records returns the staged records. The slice is only valid until Reset.
func (b *Buffer) Records() []loadflow.EmployeeRecord {
	return b.records
}

func (b *Buffer) Len() int {
	return len(b.records)
}

func (b *Buffer) Limit() int {
	return b.limit
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	clear(b.records)
	b.records = b.records[:0]
}
