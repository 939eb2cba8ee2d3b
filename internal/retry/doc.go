// Package retry re-runs sink connection attempts that fail for transient
// reasons, waiting with exponential backoff between attempts.
//
// # Example Usage
//
//	executor := retry.NewExecutor(
//	    retry.NewTransientClassifier(),
//	    retry.NewExponentialBackoff(loadflow.DefaultRetryMaxAttempts),
//	).WithLogger(logger)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// TransientClassifier recognizes PostgreSQL connection and resource errors,
// network failures and SQLite busy/locked errors. Everything else is fatal
// and returned after the first attempt.
package retry
