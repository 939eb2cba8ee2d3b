package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artugro/load-flow/internal/fingerprint"
	"github.com/artugro/load-flow/internal/logging"
	"github.com/artugro/load-flow/pkg/loadflow"
)

var (
	catalogColumns  = []string{"agency_name", "class_title", "ethnicity", "gender"}
	employeeColumns = []string{"first_name", "last_name", "agency_name", "class_title", "ethnicity", "gender", "monthly"}
)

func catalogTable() *loadflow.Table {
	return loadflow.NewTable(catalogColumns, [][]string{
		{"Agency 1", "Engineer", "Hispanic", "Male"},
		{"Agency 1", "Analyst", "White", "Female"},
		{"Agency 2", "Engineer", "", "Male"},
	})
}

func employeeTable() *loadflow.Table {
	return loadflow.NewTable(employeeColumns, [][]string{
		{"John", "Doe", "Agency 1", "Engineer", "Hispanic", "Male", "5000.00"},
		{"Jane", "Roe", "Agency 2", "Analyst", "White", "Female", "6100.5"},
		{"Max", "Poe", "Agency 3", "Analyst", "White", "Female", "4000"},
	})
}

func newPipeline(opener loadflow.SinkOpener, batchSize int) *Pipeline {
	p := NewPipeline(opener, fingerprint.New(), batchSize, logging.NewNullLogger())
	p.newRunID = func() string { return "run-1" }
	return p
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	sink := newSpySink()

	summary, err := newPipeline(sink.opener(), 10).Run(context.Background(), catalogTable(), employeeTable())
	require.NoError(t, err)

	assert.Equal(t, "run-1", summary.RunID)
	require.Len(t, summary.Catalog, 4)
	assert.Equal(t, 2, summary.Catalog[0].Inserted)
	assert.Equal(t, 2, summary.Employees.Inserted)
	assert.Equal(t, 1, summary.Employees.SkippedUnresolved)
	assert.Equal(t, int64(2), summary.Counts.Employees)
	assert.Equal(t, int64(2), summary.Counts.Dimensions[loadflow.DimensionGender])
	assert.Equal(t, 1, sink.closes)
}

func TestPipeline_Run_DimensionsInOrder(t *testing.T) {
	sink := newSpySink()

	_, err := newPipeline(sink.opener(), 10).Run(context.Background(), catalogTable(), employeeTable())
	require.NoError(t, err)

	assert.Equal(t, loadflow.Dimensions, sink.dimInserts)
}

func TestPipeline_Run_Idempotent(t *testing.T) {
	sink := newSpySink()
	sink.keepOpen = true

	_, err := newPipeline(sink.opener(), 10).Run(context.Background(), catalogTable(), employeeTable())
	require.NoError(t, err)

	summary, err := newPipeline(sink.opener(), 10).Run(context.Background(), catalogTable(), employeeTable())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Employees.Inserted)
	assert.Equal(t, 2, summary.Employees.SkippedExisting)
	assert.Equal(t, int64(2), summary.Counts.Employees)
	for _, c := range summary.Catalog {
		assert.Zero(t, c.Inserted, c.Dimension.String())
	}
}

func TestPipeline_Run_CatalogConflictContinues(t *testing.T) {
	sink := newSpySink()
	gender := loadflow.DimensionGender
	sink.conflictDim = &gender

	summary, err := newPipeline(sink.opener(), 10).Run(context.Background(), catalogTable(), employeeTable())
	require.NoError(t, err)

	assert.ErrorIs(t, summary.Catalog[3].Conflict, loadflow.ErrDuplicateCatalogValue)
	assert.Zero(t, summary.Catalog[3].Inserted)
	assert.Equal(t, 3, summary.Employees.SkippedUnresolved, "no gender resolves after the rollback")
	assert.Equal(t, int64(0), summary.Counts.Employees)
}

func TestPipeline_Run_SinkReleasedOnIngestFailure(t *testing.T) {
	sink := newSpySink()
	boom := errors.New("disk on fire")
	sink.existsErr = boom

	summary, err := newPipeline(sink.opener(), 10).Run(context.Background(), catalogTable(), employeeTable())

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, sink.closes)
}

func TestPipeline_Run_SchemaFailure(t *testing.T) {
	sink := newSpySink()
	sink.ensureErr = errors.New("permission denied for schema public")

	_, err := newPipeline(sink.opener(), 10).Run(context.Background(), catalogTable(), employeeTable())

	assert.ErrorIs(t, err, sink.ensureErr)
	assert.Equal(t, 1, sink.closes)
	assert.Empty(t, sink.dimInserts)
}

func TestPipeline_Run_OpenFailure(t *testing.T) {
	opener := func(context.Context) (loadflow.Sink, error) {
		return nil, loadflow.ErrConnectionFailed
	}

	_, err := newPipeline(opener, 10).Run(context.Background(), catalogTable(), employeeTable())
	assert.ErrorIs(t, err, loadflow.ErrConnectionFailed)
}

func TestPipeline_Run_CloseErrorDoesNotFailRun(t *testing.T) {
	sink := newSpySink()
	sink.closeErr = errors.New("close failed")

	summary, err := newPipeline(sink.opener(), 10).Run(context.Background(), catalogTable(), employeeTable())
	require.NoError(t, err)
	assert.NotNil(t, summary)
}

func TestPipeline_Run_MissingCatalogColumn(t *testing.T) {
	sink := newSpySink()
	bad := loadflow.NewTable([]string{"agency_name"}, [][]string{{"Agency 1"}})

	_, err := newPipeline(sink.opener(), 10).Run(context.Background(), bad, employeeTable())
	assert.ErrorIs(t, err, loadflow.ErrMissingColumn)
	assert.Equal(t, 1, sink.closes)
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	sink := newSpySink()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(sink.opener(), 10).Run(ctx, catalogTable(), employeeTable())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sink.closes)
}

func TestNewPipeline_PanicsOnNilDependencies(t *testing.T) {
	opener := newSpySink().opener()
	logger := logging.NewNullLogger()

	assert.Panics(t, func() { NewPipeline(nil, fingerprint.New(), 10, logger) })
	assert.Panics(t, func() { NewPipeline(opener, nil, 10, logger) })
	assert.Panics(t, func() { NewPipeline(opener, fingerprint.New(), 10, nil) })
	assert.Panics(t, func() { NewPipeline(opener, fingerprint.New(), 0, logger) })
}
