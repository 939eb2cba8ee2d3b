// Package memory provides an in-process implementation of loadflow.Sink.
//
// It enforces the same uniqueness rules as the relational sinks (dimension
// names and employee fingerprints) and is used for --dry-run and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/artugro/load-flow/pkg/loadflow"
)

// Sink keeps tables in maps guarded by a mutex.
type Sink struct {
	mu         sync.Mutex
	dimensions map[loadflow.Dimension]*dimensionTable
	employees  []loadflow.EmployeeRecord
	byPrint    map[string]int64
	closed     bool
	now        func() time.Time
}

type dimensionTable struct {
	rows   []loadflow.CatalogEntry
	byName map[string]int64
}

// New creates an empty sink.
func New() *Sink {
	s := &Sink{
		dimensions: make(map[loadflow.Dimension]*dimensionTable, len(loadflow.Dimensions)),
		byPrint:    make(map[string]int64),
		now:        time.Now,
	}
	for _, dim := range loadflow.Dimensions {
		s.dimensions[dim] = &dimensionTable{byName: make(map[string]int64)}
	}
	return s
}

// EnsureSchema is a no-op; tables exist from New.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	return s.checkOpen()
}

func (s *Sink) FindDimensionID(ctx context.Context, dim loadflow.Dimension, name string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false, errClosed
	}
	table, ok := s.dimensions[dim]
	if !ok {
		return 0, false, fmt.Errorf("unknown dimension %s", dim)
	}
	id, ok := table.byName[name]
	return id, ok, nil
}

func (s *Sink) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, errClosed
	}
	_, ok := s.byPrint[fingerprint]
	return ok, nil
}

// Begin opens a transaction. Staged rows become visible on Commit only.
func (s *Sink) Begin(ctx context.Context) (loadflow.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return &tx{sink: s, dimensions: make(map[loadflow.Dimension][]string)}, nil
}

func (s *Sink) Counts(ctx context.Context) (loadflow.TableCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return loadflow.TableCounts{}, errClosed
	}
	counts := loadflow.TableCounts{
		Dimensions: make(map[loadflow.Dimension]int64, len(s.dimensions)),
		Employees:  int64(len(s.employees)),
	}
	for dim, table := range s.dimensions {
		counts.Dimensions[dim] = int64(len(table.rows))
	}
	return counts, nil
}

// Close marks the sink closed. Idempotent.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Dimension returns a copy of the committed rows of dim in insertion order.
func (s *Sink) Dimension(dim loadflow.Dimension) []loadflow.CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.dimensions[dim]
	if !ok {
		return nil
	}
	return append([]loadflow.CatalogEntry(nil), table.rows...)
}

// Employees returns a copy of the committed employee rows in insertion order.
func (s *Sink) Employees() []loadflow.EmployeeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]loadflow.EmployeeRecord(nil), s.employees...)
}

// Closed reports whether Close was called.
func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sink) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	return nil
}

var errClosed = errors.New("memory sink is closed")

type tx struct {
	sink       *Sink
	dimensions map[loadflow.Dimension][]string
	employees  []loadflow.EmployeeRecord
	done       bool
}

// InsertDimension fails with ErrUniqueViolation when name is already
// committed or staged in this transaction.
func (t *tx) InsertDimension(ctx context.Context, dim loadflow.Dimension, name string) error {
	if t.done {
		return errTxDone
	}
	if !dim.IsValid() {
		return fmt.Errorf("unknown dimension %s", dim)
	}
	t.sink.mu.Lock()
	_, exists := t.sink.dimensions[dim].byName[name]
	t.sink.mu.Unlock()
	if exists {
		return fmt.Errorf("%s %q: %w", dim.Table(), name, loadflow.ErrUniqueViolation)
	}
	for _, staged := range t.dimensions[dim] {
		if staged == name {
			return fmt.Errorf("%s %q: %w", dim.Table(), name, loadflow.ErrUniqueViolation)
		}
	}
	t.dimensions[dim] = append(t.dimensions[dim], name)
	return nil
}

// InsertEmployees copies records into the transaction. A fingerprint that is
// already committed or staged fails the call with ErrUniqueViolation.
func (t *tx) InsertEmployees(ctx context.Context, records []loadflow.EmployeeRecord) error {
	if t.done {
		return errTxDone
	}
	staged := make(map[string]struct{}, len(t.employees)+len(records))
	for _, rec := range t.employees {
		staged[rec.Fingerprint] = struct{}{}
	}

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	for _, rec := range records {
		if _, ok := t.sink.byPrint[rec.Fingerprint]; ok {
			return fmt.Errorf("employee fingerprint %s: %w", rec.Fingerprint, loadflow.ErrUniqueViolation)
		}
		if _, ok := staged[rec.Fingerprint]; ok {
			return fmt.Errorf("employee fingerprint %s: %w", rec.Fingerprint, loadflow.ErrUniqueViolation)
		}
		staged[rec.Fingerprint] = struct{}{}
	}
	t.employees = append(t.employees, records...)
	return nil
}

// Commit assigns ids and publishes staged rows. Uniqueness is re-checked
// against rows committed by concurrent transactions.
func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true

	s := t.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	for dim, names := range t.dimensions {
		for _, name := range names {
			if _, ok := s.dimensions[dim].byName[name]; ok {
				return fmt.Errorf("%s %q: %w", dim.Table(), name, loadflow.ErrUniqueViolation)
			}
		}
	}
	for _, rec := range t.employees {
		if _, ok := s.byPrint[rec.Fingerprint]; ok {
			return fmt.Errorf("employee fingerprint %s: %w", rec.Fingerprint, loadflow.ErrUniqueViolation)
		}
	}

	now := s.now()
	for _, dim := range loadflow.Dimensions {
		table := s.dimensions[dim]
		for _, name := range t.dimensions[dim] {
			id := int64(len(table.rows) + 1)
			table.rows = append(table.rows, loadflow.CatalogEntry{ID: id, Name: name, CreatedAt: now})
			table.byName[name] = id
		}
	}
	for _, rec := range t.employees {
		rec.ID = int64(len(s.employees) + 1)
		rec.CreatedAt = now
		s.employees = append(s.employees, rec)
		s.byPrint[rec.Fingerprint] = rec.ID
	}
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.dimensions = nil
	t.employees = nil
	return nil
}

var errTxDone = errors.New("transaction already committed or rolled back")

var _ loadflow.Sink = (*Sink)(nil)
