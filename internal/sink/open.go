// Package sink selects and opens the loadflow.Sink named by a SinkConfig.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/artugro/load-flow/internal/db"
	"github.com/artugro/load-flow/internal/sink/memory"
	"github.com/artugro/load-flow/internal/sink/postgres"
	"github.com/artugro/load-flow/internal/sink/sqlite"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// newConnector is swapped in tests.
var newConnector = db.NewConnector

// Open validates cfg and opens the matching sink.
func Open(ctx context.Context, cfg loadflow.SinkConfig, logger loadflow.Logger) (loadflow.Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case loadflow.DriverMemory:
		logger.Verbose("Using in-memory sink, nothing will be persisted")
		return memory.New(), nil

	case loadflow.DriverSQLite:
		logger.Verbose("Opening SQLite database %s", cfg.SQLitePath)
		return sqlite.Open(ctx, cfg.SQLitePath)

	case loadflow.DriverPostgres:
		return openPostgres(ctx, cfg.Connection, logger)
	}
	return nil, fmt.Errorf("%w: %q", loadflow.ErrUnsupportedDriver, cfg.Driver)
}

// Opener binds cfg into a loadflow.SinkOpener.
func Opener(cfg loadflow.SinkConfig, logger loadflow.Logger) loadflow.SinkOpener {
	return func(ctx context.Context) (loadflow.Sink, error) {
		return Open(ctx, cfg, logger)
	}
}

func openPostgres(ctx context.Context, conn *loadflow.ConnectionConfig, logger loadflow.Logger) (loadflow.Sink, error) {
	logger.Verbose("Connecting to %s:%d/%s (%s)", conn.Host, conn.Port, conn.Database, conn.AuthMethod)

	connector, err := newConnector(conn, logger)
	if err != nil {
		return nil, err
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		if closer, ok := connector.(io.Closer); ok {
			closer.Close()
		}
		return nil, err
	}

	s := postgres.New(pool)
	if closer, ok := connector.(io.Closer); ok {
		return &closingSink{Sink: s, closer: closer}, nil
	}
	return s, nil
}

// closingSink closes a connector's resources after the sink itself, for
// connectors such as Cloud SQL that hold a dialer.
type closingSink struct {
	loadflow.Sink
	closer io.Closer
}

func (s *closingSink) Close() error {
	return errors.Join(s.Sink.Close(), s.closer.Close())
}
