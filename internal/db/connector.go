// Package db resolves PostgreSQL connection parameters and opens pools for
// the postgres sink, with password, AWS IAM, Azure Entra ID and Google Cloud
// SQL authentication.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artugro/load-flow/internal/retry"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// Connection pool configuration. The pipeline is single-threaded, so the
// pool only needs room for one writer plus the occasional lookup.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 1
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger loadflow.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("postgres %s: %s", strings.ToLower(notice.Severity), notice.Message)
	}
}

func newRetryExecutor(logger loadflow.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(loadflow.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(loadflow.DefaultRetryInitialDelay),
		retry.WithMaxDelay(loadflow.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewTransientClassifier(), strategy).WithLogger(logger)
}

// StandardConnector connects with username/password authentication and
// retries transient failures.
type StandardConnector struct {
	config        *loadflow.ConnectionConfig
	retryExecutor *retry.Executor
	logger        loadflow.Logger
}

// NewStandardConnector creates a StandardConnector using the default retry
// policy (loadflow.DefaultRetry*).
func NewStandardConnector(config *loadflow.ConnectionConfig, logger loadflow.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		retryExecutor: newRetryExecutor(logger),
		logger:        logger,
	}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return connectWithRetry(ctx, c.retryExecutor, c.config, c.logger, func(context.Context) (string, error) {
		return BuildConnectionString(c.config), nil
	})
}

// connectWithRetry opens and pings a pool built from the connection string
// returned by connString, which runs again on every attempt.
func connectWithRetry(
	ctx context.Context,
	executor *retry.Executor,
	config *loadflow.ConnectionConfig,
	logger loadflow.Logger,
	connString func(context.Context) (string, error),
) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := executor.Execute(ctx, func(ctx context.Context) error {
		connStr, err := connString(ctx)
		if err != nil {
			return err
		}

		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}
		configurePool(poolConfig, logger)

		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *loadflow.ConnectionConfig, logger loadflow.Logger) (loadflow.Connector, error) {
	switch config.AuthMethod {
	case loadflow.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case loadflow.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case loadflow.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case loadflow.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, loadflow.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable
// guidance. The result wraps both loadflow.ErrConnectionFailed and err.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection`, addr, host, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or the connection string)
  - Wrong username
  - User does not have access to the database`, database)

	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database "%s" does not exist

To create it:
  createdb %s`, database, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Wrong host/port (server not listening)`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)`

	default:
		return fmt.Errorf("%w: failed to connect to database: %w", loadflow.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%w: %s\n\nOriginal error: %w", loadflow.ErrConnectionFailed, hint, err)
}
