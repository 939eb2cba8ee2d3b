// Package catalog loads dimension names into the sink and resolves them back
// to surrogate ids.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/artugro/load-flow/pkg/loadflow"
)

// Resolver deduplicates and resolves the names of one dimension.
// The dimension's table and source column come from loadflow.Dimension.
type Resolver struct {
	sink      loadflow.Sink
	dimension loadflow.Dimension
	logger    loadflow.Logger
}

// NewResolver binds a resolver to dim.
func NewResolver(sink loadflow.Sink, dim loadflow.Dimension, logger loadflow.Logger) *Resolver {
	return &Resolver{
		sink:      sink,
		dimension: dim,
		logger:    logger,
	}
}

// LoadDistinctValues inserts every distinct non-empty name of the
// dimension's source column that the sink does not hold yet.
//
// All new names are written in one transaction. A uniqueness violation rolls
// it back and is reported in the result's Conflict field rather than
// returned; the dimension then keeps only the rows it already had.
func (r *Resolver) LoadDistinctValues(ctx context.Context, table *loadflow.Table) (loadflow.CatalogLoadResult, error) {
	result := loadflow.CatalogLoadResult{Dimension: r.dimension}

	values, err := table.Column(r.dimension.SourceColumn())
	if err != nil {
		return result, fmt.Errorf("load %s: %w", r.dimension.Table(), err)
	}

	seen := make(map[string]struct{})
	var staged []string
	for _, name := range values {
		if name == "" {
			continue
		}
		result.Observed++

		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		_, exists, err := r.sink.FindDimensionID(ctx, r.dimension, name)
		if err != nil {
			return result, fmt.Errorf("failed to look up %s %q: %w", r.dimension.Table(), name, err)
		}
		if exists {
			result.Existing++
			continue
		}
		staged = append(staged, name)
	}
	result.Staged = len(staged)

	if len(staged) == 0 {
		r.logger.Verbose("%s: nothing to insert (%d values, %d existing)", r.dimension.Table(), result.Observed, result.Existing)
		return result, nil
	}

	if err := r.insert(ctx, staged); err != nil {
		if errors.Is(err, loadflow.ErrUniqueViolation) {
			result.Conflict = fmt.Errorf("%w in %s: %v", loadflow.ErrDuplicateCatalogValue, r.dimension.Table(), err)
			r.logger.Error("%v; %d staged names rolled back", result.Conflict, len(staged))
			return result, nil
		}
		return result, err
	}

	result.Inserted = len(staged)
	r.logger.Verbose("%s: inserted %d new names", r.dimension.Table(), result.Inserted)
	return result, nil
}

func (r *Resolver) insert(ctx context.Context, names []string) (err error) {
	tx, err := r.sink.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", r.dimension.Table(), err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error("rollback of %s failed: %v", r.dimension.Table(), rbErr)
			}
		}
	}()

	for _, name := range names {
		if err = tx.InsertDimension(ctx, r.dimension, name); err != nil {
			return fmt.Errorf("failed to insert %s %q: %w", r.dimension.Table(), name, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", r.dimension.Table(), err)
	}
	return nil
}

// ResolveID returns the id of name. ok is false when the name is empty or
// not present in the sink.
func (r *Resolver) ResolveID(ctx context.Context, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, nil
	}
	id, ok, err := r.sink.FindDimensionID(ctx, r.dimension, name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve %s %q: %w", r.dimension.Table(), name, err)
	}
	return id, ok, nil
}
