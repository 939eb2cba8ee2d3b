package loadflow

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to open the sink
	ExitSourceError     = 12 // Flat file unreadable or missing a column
)

const (
	// DefaultBatchSize is the number of staged employee records flushed in
	// one transaction. A failed flush discards up to this many rows.
	DefaultBatchSize = 10000

	// DefaultCatalogPath and DefaultEmployeesPath are resolved relative to
	// the project directory.
	DefaultCatalogPath   = "catalogos.csv"
	DefaultEmployeesPath = "employees.csv"

	// DefaultCatalogDelimiter is the field separator of the catalog export.
	DefaultCatalogDelimiter = ';'

	// DefaultEmployeesDelimiter is the field separator of the employee export.
	DefaultEmployeesDelimiter = ','

	// DefaultSQLitePath is the database file used by the sqlite driver.
	DefaultSQLitePath = "load_flow.db"

	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 30 * time.Minute

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// MaxNameLength matches the VARCHAR(50) name columns of the schema.
	MaxNameLength = 50

	// SalaryIntegerDigits is the integer part of the NUMERIC(16,2) salary column.
	SalaryIntegerDigits = 14

	// CompletionMessage is printed on stdout after a successful run.
	CompletionMessage = "ETL process completed successfully."
)
