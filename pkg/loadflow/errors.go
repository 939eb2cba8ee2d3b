package loadflow

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	summary, err := pipeline.Run(ctx, catalog, employees)
//	if errors.Is(err, loadflow.ErrConnectionFailed) {
//	    // the sink could not be opened
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the sink could not be opened.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnsupportedDriver indicates the configured sink driver is unknown.
	ErrUnsupportedDriver = errors.New("unsupported sink driver")

	// ErrSourceRead indicates a flat file could not be read or parsed.
	ErrSourceRead = errors.New("source read failed")

	// ErrMissingColumn indicates a source table lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrUniqueViolation is returned by sinks when an insert or commit
	// violates a uniqueness constraint. Sinks translate their driver errors
	// into this sentinel so the loading logic stays driver-neutral.
	ErrUniqueViolation = errors.New("unique constraint violated")

	// ErrDuplicateCatalogValue marks a catalog load whose inserts were rolled
	// back because a name already existed. It is reported, not returned.
	ErrDuplicateCatalogValue = errors.New("duplicate catalog value")

	// ErrDuplicateEmployeeBatch marks an employee batch that was rolled back
	// and discarded because a fingerprint already existed.
	ErrDuplicateEmployeeBatch = errors.New("duplicate employee batch")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrUnsupportedDriver):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrSourceRead), errors.Is(err, ErrMissingColumn):
		return ExitSourceError
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognizes the error strings cobra produces for bad invocations.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"flag needs an argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
