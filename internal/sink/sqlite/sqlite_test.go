package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/artugro/load-flow/pkg/loadflow"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSink(t *testing.T) *Sink {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "load_flow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func seedDimensions(t *testing.T, s *Sink) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	for _, dim := range loadflow.Dimensions {
		require.NoError(t, tx.InsertDimension(ctx, dim, "X"))
	}
	require.NoError(t, tx.Commit(ctx))
}

func record(first, fp string) loadflow.EmployeeRecord {
	return loadflow.EmployeeRecord{
		FirstName:     first,
		LastName:      "Doe",
		AgencyID:      1,
		ProfessionID:  1,
		EthnicityID:   1,
		GenderID:      1,
		MonthlySalary: decimal.RequireFromString("5000.00"),
		Fingerprint:   fp,
	}
}

func TestOpenExecutor_RetriesBusyDatabase(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, 2},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, 2},
		{"not a database", sqlite3.Error{Code: sqlite3.ErrNotADB}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := newOpenExecutor().Execute(context.Background(), func(context.Context) error {
				calls++
				if calls == 1 {
					return tt.err
				}
				return nil
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantCalls == 1 {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	s := openTestSink(t)
	require.NoError(t, s.EnsureSchema(context.Background()))

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts.Dimensions, 4)
	assert.Zero(t, counts.Employees)
}

func TestDimensions_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := openTestSink(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertDimension(ctx, loadflow.DimensionAgency, "Agency 1"))
	require.NoError(t, tx.InsertDimension(ctx, loadflow.DimensionAgency, "Agency 2"))
	require.NoError(t, tx.Commit(ctx))

	id, ok, err := s.FindDimensionID(ctx, loadflow.DimensionAgency, "Agency 2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)

	_, ok, err = s.FindDimensionID(ctx, loadflow.DimensionProfession, "Agency 2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDimensions_DuplicateIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	s := openTestSink(t)

	tx, _ := s.Begin(ctx)
	require.NoError(t, tx.InsertDimension(ctx, loadflow.DimensionGender, "F"))
	err := tx.InsertDimension(ctx, loadflow.DimensionGender, "F")
	assert.ErrorIs(t, err, loadflow.ErrUniqueViolation)
	require.NoError(t, tx.Rollback(ctx))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Dimensions[loadflow.DimensionGender])
}

func TestEmployees_InsertAndDeduplicate(t *testing.T) {
	ctx := context.Background()
	s := openTestSink(t)
	seedDimensions(t, s)

	tx, _ := s.Begin(ctx)
	require.NoError(t, tx.InsertEmployees(ctx, []loadflow.EmployeeRecord{record("John", "a"), record("Jane", "b")}))
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, tx.Rollback(ctx))

	exists, err := s.FingerprintExists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.FingerprintExists(ctx, "zzz")
	require.NoError(t, err)
	assert.False(t, exists)

	tx, _ = s.Begin(ctx)
	err = tx.InsertEmployees(ctx, []loadflow.EmployeeRecord{record("Jim", "c"), record("John", "a")})
	assert.ErrorIs(t, err, loadflow.ErrUniqueViolation)
	require.NoError(t, tx.Rollback(ctx))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Employees)
}

func TestEmployees_SalaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestSink(t)
	seedDimensions(t, s)

	rec := record("John", "a")
	rec.MonthlySalary = decimal.RequireFromString("12345.67")
	tx, _ := s.Begin(ctx)
	require.NoError(t, tx.InsertEmployees(ctx, []loadflow.EmployeeRecord{rec}))
	require.NoError(t, tx.Commit(ctx))

	var got decimal.Decimal
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT monthly_salary FROM employee WHERE fingerprint = ?", "a").Scan(&got))
	assert.True(t, got.Equal(decimal.RequireFromString("12345.67")), "got %s", got)
}

func TestEmployees_UnknownForeignKeyIsFatal(t *testing.T) {
	ctx := context.Background()
	s := openTestSink(t)

	tx, _ := s.Begin(ctx)
	err := tx.InsertEmployees(ctx, []loadflow.EmployeeRecord{record("John", "a")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, loadflow.ErrUniqueViolation)
	require.NoError(t, tx.Rollback(ctx))
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "load_flow.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx))
	seedDimensions(t, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.EnsureSchema(ctx))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Dimensions[loadflow.DimensionEthnicity])
}
