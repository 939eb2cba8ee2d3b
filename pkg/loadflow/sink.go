package loadflow

import "context"

// Sink abstracts the relational store the pipeline loads into.
//
// Implementations report uniqueness violations (from inserts or commits) as
// errors wrapping ErrUniqueViolation. Every other error is treated as fatal.
//
// Thread-Safety: NOT required. A pipeline run uses its sink from a single
// goroutine.
type Sink interface {
	// EnsureSchema creates the dimension and employee tables if they do not exist.
	EnsureSchema(ctx context.Context) error

	// FindDimensionID returns the id of the row named name in dim.
	// ok is false when no such row exists.
	FindDimensionID(ctx context.Context, dim Dimension, name string) (id int64, ok bool, err error)

	// FingerprintExists reports whether an employee with fingerprint is persisted.
	FingerprintExists(ctx context.Context, fingerprint string) (bool, error)

	// Begin starts a write transaction.
	Begin(ctx context.Context) (Tx, error)

	// Counts returns the current row count of every table.
	Counts(ctx context.Context) (TableCounts, error)

	// Close releases the sink's connections. Idempotent.
	Close() error
}

// Tx is a write transaction opened by Sink.Begin.
// After Commit or Rollback the Tx must not be used again.
type Tx interface {
	// InsertDimension stages a new dimension row named name.
	InsertDimension(ctx context.Context, dim Dimension, name string) error

	// InsertEmployees stages records for insertion. Implementations must not
	// retain the slice after returning; callers reuse its backing array.
	InsertEmployees(ctx context.Context, records []EmployeeRecord) error

	// Commit makes staged writes durable.
	Commit(ctx context.Context) error

	// Rollback discards staged writes. Calling it after Commit is a no-op.
	Rollback(ctx context.Context) error
}

// SinkOpener acquires a sink for one pipeline run. The caller owns the
// returned sink and must Close it.
type SinkOpener func(ctx context.Context) (Sink, error)
