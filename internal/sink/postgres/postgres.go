// Package postgres implements loadflow.Sink on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artugro/load-flow/pkg/loadflow"
)

// uniqueViolation is the SQLSTATE of unique_violation.
const uniqueViolation = "23505"

var employeeColumns = []string{
	"first_name", "last_name",
	"agency_id", "profession_id", "ethnicity_id", "gender_id",
	"monthly_salary", "fingerprint",
}

// Sink stores dimensions and employees in PostgreSQL.
//
// Thread-Safety: safe for concurrent use (pgxpool.Pool is thread-safe).
type Sink struct {
	pool *pgxpool.Pool
}

// New wraps an established pool. Close closes the pool.
func New(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// EnsureSchema creates the tables when missing.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema() {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func schema() []string {
	var stmts []string
	for _, dim := range loadflow.Dimensions {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name VARCHAR(%d) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, dim.Table(), loadflow.MaxNameLength))
	}
	stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS employee (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	first_name VARCHAR(%[1]d) NOT NULL,
	last_name VARCHAR(%[1]d) NOT NULL,
	agency_id BIGINT NOT NULL REFERENCES agency(id),
	profession_id BIGINT NOT NULL REFERENCES profession(id),
	ethnicity_id BIGINT NOT NULL REFERENCES ethnicity(id),
	gender_id BIGINT NOT NULL REFERENCES gender(id),
	monthly_salary NUMERIC(16,2) NOT NULL,
	fingerprint VARCHAR(32) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, loadflow.MaxNameLength))
	return stmts
}

func (s *Sink) FindDimensionID(ctx context.Context, dim loadflow.Dimension, name string) (int64, bool, error) {
	if !dim.IsValid() {
		return 0, false, fmt.Errorf("unknown dimension %s", dim)
	}
	var id int64
	err := s.pool.QueryRow(ctx, "SELECT id FROM "+dim.Table()+" WHERE name = $1 LIMIT 1", name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *Sink) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM employee WHERE fingerprint = $1)", fingerprint).Scan(&exists)
	return exists, err
}

func (s *Sink) Begin(ctx context.Context) (loadflow.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

func (s *Sink) Counts(ctx context.Context) (loadflow.TableCounts, error) {
	counts := loadflow.TableCounts{Dimensions: make(map[loadflow.Dimension]int64, len(loadflow.Dimensions))}

	batch := &pgx.Batch{}
	for _, dim := range loadflow.Dimensions {
		batch.Queue("SELECT COUNT(*) FROM " + dim.Table())
	}
	batch.Queue("SELECT COUNT(*) FROM employee")

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, dim := range loadflow.Dimensions {
		var n int64
		if err := results.QueryRow().Scan(&n); err != nil {
			return counts, fmt.Errorf("failed to count %s: %w", dim.Table(), err)
		}
		counts.Dimensions[dim] = n
	}
	if err := results.QueryRow().Scan(&counts.Employees); err != nil {
		return counts, fmt.Errorf("failed to count employee: %w", err)
	}
	return counts, nil
}

// Close closes the pool.
func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) InsertDimension(ctx context.Context, dim loadflow.Dimension, name string) error {
	if !dim.IsValid() {
		return fmt.Errorf("unknown dimension %s", dim)
	}
	_, err := t.tx.Exec(ctx, "INSERT INTO "+dim.Table()+" (name) VALUES ($1)", name)
	return translate(err)
}

// InsertEmployees bulk-loads records with COPY.
func (t *pgTx) InsertEmployees(ctx context.Context, records []loadflow.EmployeeRecord) error {
	rows := make([][]any, len(records))
	for i := range records {
		rec := &records[i]
		rows[i] = []any{
			rec.FirstName, rec.LastName,
			rec.AgencyID, rec.ProfessionID, rec.EthnicityID, rec.GenderID,
			pgtype.Numeric{Int: rec.MonthlySalary.Coefficient(), Exp: rec.MonthlySalary.Exponent(), Valid: true},
			rec.Fingerprint,
		}
	}

	_, err := t.tx.CopyFrom(ctx, pgx.Identifier{"employee"}, employeeColumns, pgx.CopyFromRows(rows))
	return translate(err)
}

func (t *pgTx) Commit(ctx context.Context) error {
	return translate(t.tx.Commit(ctx))
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// translate maps unique_violation to loadflow.ErrUniqueViolation.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s (%s)", loadflow.ErrUniqueViolation, pgErr.Message, pgErr.ConstraintName)
	}
	return err
}

var _ loadflow.Sink = (*Sink)(nil)
