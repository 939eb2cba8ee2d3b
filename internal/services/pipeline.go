// Package services runs the load pipeline: catalog dimensions first, then
// employees, against a sink acquired for the duration of one run.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artugro/load-flow/internal/catalog"
	"github.com/artugro/load-flow/internal/fingerprint"
	"github.com/artugro/load-flow/internal/ingest"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// runScoped is implemented by loggers that can attach attributes to every line.
type runScoped interface {
	With(args ...any) loadflow.Logger
}

// Pipeline orchestrates one load run.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type Pipeline struct {
	openSink   loadflow.SinkOpener
	calculator fingerprint.Calculator
	batchSize  int
	logger     loadflow.Logger
	newRunID   func() string
}

// NewPipeline creates a Pipeline with all dependencies injected.
// Panics on nil dependencies or a non-positive batch size; those are
// programmer errors.
func NewPipeline(openSink loadflow.SinkOpener, calculator fingerprint.Calculator, batchSize int, logger loadflow.Logger) *Pipeline {
	if openSink == nil {
		panic("openSink cannot be nil")
	}
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if batchSize <= 0 {
		panic("batchSize must be positive")
	}

	return &Pipeline{
		openSink:   openSink,
		calculator: calculator,
		batchSize:  batchSize,
		logger:     logger,
		newRunID:   uuid.NewString,
	}
}

// Run loads catalogTable into the dimension tables and then employeeTable
// into the employee table.
//
// The sink is released on every exit path. A release failure is logged and
// never replaces the run's own error. Uniqueness conflicts are absorbed by
// the resolvers and the ingestor and show up in the summary; every other
// failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, catalogTable, employeeTable *loadflow.Table) (*loadflow.RunSummary, error) {
	start := time.Now()
	summary := &loadflow.RunSummary{RunID: p.newRunID()}

	logger := p.logger
	if scoped, ok := logger.(runScoped); ok {
		logger = scoped.With("run_id", summary.RunID)
	}
	logger.Verbose("Starting run %s", summary.RunID)

	sink, err := p.openSink(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open sink: %w", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			logger.Error("failed to release sink: %v", cerr)
		}
	}()

	if err := sink.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	resolvers := make(map[loadflow.Dimension]ingest.IDResolver, len(loadflow.Dimensions))
	for _, dim := range loadflow.Dimensions {
		resolver := catalog.NewResolver(sink, dim, logger)
		result, err := resolver.LoadDistinctValues(ctx, catalogTable)
		if err != nil {
			return nil, fmt.Errorf("catalog load failed: %w", err)
		}
		summary.Catalog = append(summary.Catalog, result)
		resolvers[dim] = resolver
	}

	ingestor := ingest.New(sink, resolvers, p.calculator, p.batchSize, logger)
	stats, err := ingestor.Ingest(ctx, employeeTable)
	summary.Employees = stats
	if err != nil {
		return nil, fmt.Errorf("employee ingestion failed: %w", err)
	}

	counts, err := sink.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	summary.Counts = counts
	summary.Duration = time.Since(start)

	logger.Info("Loaded %d employees in %d batches (%d discarded)",
		stats.Inserted, stats.BatchesCommitted, stats.BatchesDiscarded)
	return summary, nil
}
