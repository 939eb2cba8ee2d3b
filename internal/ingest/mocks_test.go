package ingest

import (
	"context"

	"github.com/artugro/load-flow/internal/sink/memory"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// faultySink wraps the memory sink and fails commits on demand.
type faultySink struct {
	*memory.Sink
	commitErr   error
	insertCalls int
	rollbacks   int
}

func (s *faultySink) Begin(ctx context.Context) (loadflow.Tx, error) {
	tx, err := s.Sink.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Tx: tx, sink: s}, nil
}

type faultyTx struct {
	loadflow.Tx
	sink *faultySink
}

func (t *faultyTx) InsertEmployees(ctx context.Context, records []loadflow.EmployeeRecord) error {
	t.sink.insertCalls++
	return t.Tx.InsertEmployees(ctx, records)
}

func (t *faultyTx) Commit(ctx context.Context) error {
	if t.sink.commitErr != nil {
		return t.sink.commitErr
	}
	return t.Tx.Commit(ctx)
}

func (t *faultyTx) Rollback(ctx context.Context) error {
	t.sink.rollbacks++
	return t.Tx.Rollback(ctx)
}

// staticResolver resolves names from a fixed map.
type staticResolver map[string]int64

func (r staticResolver) ResolveID(_ context.Context, name string) (int64, bool, error) {
	id, ok := r[name]
	return id, ok, nil
}
