// Package sqlite implements loadflow.Sink on a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/artugro/load-flow/internal/retry"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// Sink stores dimensions and employees in a SQLite file.
// It keeps a single connection, so lookups block while a transaction is open.
type Sink struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create directory for %s: %v", loadflow.ErrConnectionFailed, path, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", loadflow.ErrConnectionFailed, path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := newOpenExecutor().Execute(ctx, db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to open %s: %v", loadflow.ErrConnectionFailed, path, err)
	}
	return &Sink{db: db, path: path}, nil
}

// newOpenExecutor retries a busy or locked file while another process holds it.
func newOpenExecutor() *retry.Executor {
	strategy := retry.NewExponentialBackoff(loadflow.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(loadflow.DefaultRetryInitialDelay),
		retry.WithMaxDelay(loadflow.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewTransientClassifier(), strategy)
}

// Path returns the database file path.
func (s *Sink) Path() string {
	return s.path
}

// EnsureSchema creates the tables when missing.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func schema() []string {
	var stmts []string
	for _, dim := range loadflow.Dimensions {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name VARCHAR(%d) NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, dim.Table(), loadflow.MaxNameLength))
	}
	stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS employee (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name VARCHAR(%[1]d) NOT NULL,
	last_name VARCHAR(%[1]d) NOT NULL,
	agency_id INTEGER NOT NULL REFERENCES agency(id),
	profession_id INTEGER NOT NULL REFERENCES profession(id),
	ethnicity_id INTEGER NOT NULL REFERENCES ethnicity(id),
	gender_id INTEGER NOT NULL REFERENCES gender(id),
	monthly_salary NUMERIC(16,2) NOT NULL,
	fingerprint VARCHAR(32) NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, loadflow.MaxNameLength))
	return stmts
}

func (s *Sink) FindDimensionID(ctx context.Context, dim loadflow.Dimension, name string) (int64, bool, error) {
	if !dim.IsValid() {
		return 0, false, fmt.Errorf("unknown dimension %s", dim)
	}
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM "+dim.Table()+" WHERE name = ? LIMIT 1", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *Sink) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM employee WHERE fingerprint = ?)", fingerprint).Scan(&exists)
	return exists, err
}

func (s *Sink) Begin(ctx context.Context) (loadflow.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

func (s *Sink) Counts(ctx context.Context) (loadflow.TableCounts, error) {
	counts := loadflow.TableCounts{Dimensions: make(map[loadflow.Dimension]int64, len(loadflow.Dimensions))}
	for _, dim := range loadflow.Dimensions {
		var n int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+dim.Table()).Scan(&n); err != nil {
			return counts, fmt.Errorf("failed to count %s: %w", dim.Table(), err)
		}
		counts.Dimensions[dim] = n
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employee").Scan(&counts.Employees); err != nil {
		return counts, fmt.Errorf("failed to count employee: %w", err)
	}
	return counts, nil
}

// Close closes the database. Safe to call more than once.
func (s *Sink) Close() error {
	return s.db.Close()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) InsertDimension(ctx context.Context, dim loadflow.Dimension, name string) error {
	if !dim.IsValid() {
		return fmt.Errorf("unknown dimension %s", dim)
	}
	_, err := t.tx.ExecContext(ctx, "INSERT INTO "+dim.Table()+" (name) VALUES (?)", name)
	return translate(err)
}

func (t *sqliteTx) InsertEmployees(ctx context.Context, records []loadflow.EmployeeRecord) error {
	stmt, err := t.tx.PrepareContext(ctx, `INSERT INTO employee
	(first_name, last_name, agency_id, profession_id, ethnicity_id, gender_id, monthly_salary, fingerprint)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		_, err := stmt.ExecContext(ctx,
			rec.FirstName, rec.LastName,
			rec.AgencyID, rec.ProfessionID, rec.EthnicityID, rec.GenderID,
			rec.MonthlySalary.StringFixed(2), rec.Fingerprint,
		)
		if err != nil {
			return translate(err)
		}
	}
	return nil
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	return translate(t.tx.Commit())
}

func (t *sqliteTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// translate maps SQLite uniqueness failures to loadflow.ErrUniqueViolation.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %v", loadflow.ErrUniqueViolation, err)
	}
	return err
}

var _ loadflow.Sink = (*Sink)(nil)
