// Package logging provides concrete implementations of the loadflow.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: slog with a tint handler on stderr, Verbose maps to debug level
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
