// Package ingest turns employee rows into deduplicated, batched inserts.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/artugro/load-flow/internal/fingerprint"
	"github.com/artugro/load-flow/pkg/loadflow"
	"github.com/shopspring/decimal"
)

// Employee source columns.
const (
	ColumnFirstName = "first_name"
	ColumnLastName  = "last_name"
	ColumnMonthly   = "monthly"
)

// maxSalary is the first value the NUMERIC(16,2) salary column cannot hold.
var maxSalary = decimal.New(1, loadflow.SalaryIntegerDigits)

// IDResolver maps a dimension name to its surrogate id.
// catalog.Resolver implements it.
type IDResolver interface {
	ResolveID(ctx context.Context, name string) (id int64, ok bool, err error)
}

// Ingestor stages employee rows whose references resolve and whose
// fingerprint is new, flushing them to the sink in batches.
type Ingestor struct {
	sink       loadflow.Sink
	resolvers  map[loadflow.Dimension]IDResolver
	calculator fingerprint.Calculator
	buffer     *Buffer
	logger     loadflow.Logger
}

// New creates an Ingestor. resolvers must hold one entry per
// loadflow.Dimensions element.
func New(sink loadflow.Sink, resolvers map[loadflow.Dimension]IDResolver, calculator fingerprint.Calculator, batchSize int, logger loadflow.Logger) *Ingestor {
	return &Ingestor{
		sink:       sink,
		resolvers:  resolvers,
		calculator: calculator,
		buffer:     NewBuffer(batchSize),
		logger:     logger,
	}
}

// RequiredColumns lists the columns an employee table must have.
func RequiredColumns() []string {
	cols := []string{ColumnFirstName, ColumnLastName}
	for _, dim := range loadflow.Dimensions {
		cols = append(cols, dim.SourceColumn())
	}
	return append(cols, ColumnMonthly)
}

// Ingest processes every row of table.
//
// Rows with an unresolved reference, a missing name or an unparseable salary
// are skipped and counted. A batch that violates fingerprint uniqueness is
// rolled back and discarded as a whole; ingestion continues with the next
// batch. Any other sink error aborts ingestion and is returned together with
// the statistics gathered so far.
func (in *Ingestor) Ingest(ctx context.Context, table *loadflow.Table) (loadflow.IngestStats, error) {
	var stats loadflow.IngestStats

	if err := table.Require(RequiredColumns()...); err != nil {
		return stats, fmt.Errorf("employee table: %w", err)
	}
	for _, dim := range loadflow.Dimensions {
		if in.resolvers[dim] == nil {
			return stats, fmt.Errorf("no resolver for dimension %s: %w", dim, loadflow.ErrInvalidConfig)
		}
	}

	in.buffer.Reset()
	for i := 0; i < table.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Read++

		rec, ok, err := in.buildRecord(ctx, table.Row(i), i, &stats)
		if err != nil {
			return stats, err
		}
		if !ok {
			continue
		}

		stats.Staged++
		if in.buffer.Add(rec) {
			if err := in.flush(ctx, &stats); err != nil {
				return stats, err
			}
		}
	}

	if in.buffer.Len() > 0 {
		if err := in.flush(ctx, &stats); err != nil {
			return stats, err
		}
	}

	in.logger.Verbose("employees: read=%d staged=%d inserted=%d unresolved=%d invalid=%d existing=%d discarded=%d",
		stats.Read, stats.Staged, stats.Inserted, stats.SkippedUnresolved, stats.SkippedInvalid, stats.SkippedExisting, stats.RowsDiscarded)
	return stats, nil
}

// buildRecord resolves, validates and fingerprints one row. ok is false when
// the row was skipped; the matching counter has been incremented.
func (in *Ingestor) buildRecord(ctx context.Context, row loadflow.Row, index int, stats *loadflow.IngestStats) (loadflow.EmployeeRecord, bool, error) {
	var ids [4]int64
	for i, dim := range loadflow.Dimensions {
		name := row.Get(dim.SourceColumn())
		id, ok, err := in.resolvers[dim].ResolveID(ctx, name)
		if err != nil {
			return loadflow.EmployeeRecord{}, false, err
		}
		if !ok {
			stats.SkippedUnresolved++
			in.logger.Verbose("row %d: %s %q not found, skipping", index+1, dim.Table(), name)
			return loadflow.EmployeeRecord{}, false, nil
		}
		ids[i] = id
	}

	first := row.Get(ColumnFirstName)
	last := row.Get(ColumnLastName)
	monthly := strings.TrimSpace(row.Get(ColumnMonthly))
	if first == "" || last == "" || monthly == "" {
		stats.SkippedInvalid++
		in.logger.Verbose("row %d: missing name or salary, skipping", index+1)
		return loadflow.EmployeeRecord{}, false, nil
	}
	salary, err := decimal.NewFromString(monthly)
	if err != nil {
		stats.SkippedInvalid++
		in.logger.Verbose("row %d: invalid salary %q, skipping", index+1, monthly)
		return loadflow.EmployeeRecord{}, false, nil
	}

	if utf8.RuneCountInString(first) > loadflow.MaxNameLength || utf8.RuneCountInString(last) > loadflow.MaxNameLength {
		stats.SkippedInvalid++
		in.logger.Verbose("row %d: name longer than %d characters, skipping", index+1, loadflow.MaxNameLength)
		return loadflow.EmployeeRecord{}, false, nil
	}
	salary = salary.Round(2)
	if salary.Abs().GreaterThanOrEqual(maxSalary) {
		stats.SkippedInvalid++
		in.logger.Verbose("row %d: salary %s out of range, skipping", index+1, salary)
		return loadflow.EmployeeRecord{}, false, nil
	}

	rec := loadflow.EmployeeRecord{
		FirstName:     first,
		LastName:      last,
		AgencyID:      ids[0],
		ProfessionID:  ids[1],
		EthnicityID:   ids[2],
		GenderID:      ids[3],
		MonthlySalary: salary,
	}
	rec.Fingerprint = in.calculator.Compute(rec.FirstName, rec.LastName, rec.ProfessionID, rec.EthnicityID, rec.GenderID)

	exists, err := in.sink.FingerprintExists(ctx, rec.Fingerprint)
	if err != nil {
		return loadflow.EmployeeRecord{}, false, fmt.Errorf("failed to check fingerprint of row %d: %w", index+1, err)
	}
	if exists {
		stats.SkippedExisting++
		return loadflow.EmployeeRecord{}, false, nil
	}
	return rec, true, nil
}

// flush writes the buffered batch in one transaction and resets the buffer.
func (in *Ingestor) flush(ctx context.Context, stats *loadflow.IngestStats) error {
	n := in.buffer.Len()
	defer in.buffer.Reset()

	err := in.writeBatch(ctx, in.buffer.Records())
	switch {
	case err == nil:
		stats.Inserted += n
		stats.BatchesCommitted++
		in.logger.Verbose("committed batch of %d employees", n)
		return nil
	case errors.Is(err, loadflow.ErrUniqueViolation):
		stats.BatchesDiscarded++
		stats.RowsDiscarded += n
		in.logger.Error("%v: %d rows discarded: %v", loadflow.ErrDuplicateEmployeeBatch, n, err)
		return nil
	default:
		return err
	}
}

func (in *Ingestor) writeBatch(ctx context.Context, records []loadflow.EmployeeRecord) (err error) {
	tx, err := in.sink.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin employee batch: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				in.logger.Error("rollback of employee batch failed: %v", rbErr)
			}
		}
	}()

	if err = tx.InsertEmployees(ctx, records); err != nil {
		return fmt.Errorf("failed to insert employee batch: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit employee batch: %w", err)
	}
	return nil
}
