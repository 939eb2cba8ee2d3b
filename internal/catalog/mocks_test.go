package catalog

import (
	"context"
	"fmt"

	"github.com/artugro/load-flow/internal/sink/memory"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// faultySink wraps the memory sink and injects failures.
type faultySink struct {
	*memory.Sink
	findErr   error
	insertErr error
	commitErr error

	finds     int
	begins    int
	rollbacks int
}

func newFaultySink() *faultySink {
	return &faultySink{Sink: memory.New()}
}

func (s *faultySink) FindDimensionID(ctx context.Context, dim loadflow.Dimension, name string) (int64, bool, error) {
	s.finds++
	if s.findErr != nil {
		return 0, false, s.findErr
	}
	return s.Sink.FindDimensionID(ctx, dim, name)
}

func (s *faultySink) Begin(ctx context.Context) (loadflow.Tx, error) {
	s.begins++
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

func (t *faultyTx) InsertDimension(ctx context.Context, dim loadflow.Dimension, name string) error {
	if t.sink.insertErr != nil {
		return t.sink.insertErr
	}
	return t.Tx.InsertDimension(ctx, dim, name)
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

// recordingLogger keeps formatted Error messages.
type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Verbose(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})    {}
func (l *recordingLogger) Error(format string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}
