package services

import (
	"context"
	"fmt"

	"github.com/artugro/load-flow/internal/sink/memory"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// spySink wraps the memory sink, records calls and injects failures.
type spySink struct {
	*memory.Sink

	ensureErr   error
	existsErr   error
	closeErr    error
	conflictDim *loadflow.Dimension
	keepOpen    bool

	closes     int
	dimInserts []loadflow.Dimension
}

func newSpySink() *spySink {
	return &spySink{Sink: memory.New()}
}

func (s *spySink) opener() loadflow.SinkOpener {
	return func(context.Context) (loadflow.Sink, error) { return s, nil }
}

func (s *spySink) EnsureSchema(ctx context.Context) error {
	if s.ensureErr != nil {
		return s.ensureErr
	}
	return s.Sink.EnsureSchema(ctx)
}

func (s *spySink) FingerprintExists(ctx context.Context, fp string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.Sink.FingerprintExists(ctx, fp)
}

func (s *spySink) Begin(ctx context.Context) (loadflow.Tx, error) {
	tx, err := s.Sink.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &spyTx{Tx: tx, sink: s}, nil
}

func (s *spySink) Close() error {
	s.closes++
	if s.keepOpen {
		return s.closeErr
	}
	if err := s.Sink.Close(); err != nil {
		return err
	}
	return s.closeErr
}

type spyTx struct {
	loadflow.Tx
	sink     *spySink
	conflict bool
}

func (t *spyTx) InsertDimension(ctx context.Context, dim loadflow.Dimension, name string) error {
	if len(t.sink.dimInserts) == 0 || t.sink.dimInserts[len(t.sink.dimInserts)-1] != dim {
		t.sink.dimInserts = append(t.sink.dimInserts, dim)
	}
	if t.sink.conflictDim != nil && *t.sink.conflictDim == dim {
		t.conflict = true
	}
	return t.Tx.InsertDimension(ctx, dim, name)
}

func (t *spyTx) Commit(ctx context.Context) error {
	if t.conflict {
		return fmt.Errorf("commit: %w", loadflow.ErrUniqueViolation)
	}
	return t.Tx.Commit(ctx)
}
