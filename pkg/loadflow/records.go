package loadflow

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogEntry is one persisted row of a dimension table.
type CatalogEntry struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// EmployeeRecord is one persisted (or staged) employee row.
//
// Fingerprint is the only deduplication key. It is derived from the names
// and the profession, ethnicity and gender ids, so a record differing only
// in agency or salary is treated as already present.
type EmployeeRecord struct {
	ID            int64
	FirstName     string
	LastName      string
	AgencyID      int64
	ProfessionID  int64
	EthnicityID   int64
	GenderID      int64
	MonthlySalary decimal.Decimal
	Fingerprint   string
	CreatedAt     time.Time
}

// CatalogLoadResult reports what one catalog load did for one dimension.
type CatalogLoadResult struct {
	Dimension Dimension

	// Observed counts non-empty values seen in the source column.
	Observed int

	// Existing counts distinct names already present in the sink.
	Existing int

	// Staged counts distinct new names queued for insertion.
	Staged int

	// Inserted counts names committed. Zero when Conflict is set.
	Inserted int

	// Conflict wraps ErrDuplicateCatalogValue when the commit was rolled back.
	Conflict error
}

// IngestStats reports what one employee ingestion did.
type IngestStats struct {
	Read              int
	SkippedUnresolved int
	SkippedInvalid    int
	SkippedExisting   int
	Staged            int
	Inserted          int
	BatchesCommitted  int
	BatchesDiscarded  int
	RowsDiscarded     int
}

// TableCounts holds row counts of every table after a run.
type TableCounts struct {
	Dimensions map[Dimension]int64
	Employees  int64
}

// RunSummary is returned by a successful pipeline run.
type RunSummary struct {
	RunID     string
	Catalog   []CatalogLoadResult
	Employees IngestStats
	Counts    TableCounts
	Duration  time.Duration
}
