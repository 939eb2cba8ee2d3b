package loadflow

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector establishes a PostgreSQL connection pool for the postgres sink.
// Implementations handle authentication (password, cloud IAM tokens) and
// retry transient failures.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
