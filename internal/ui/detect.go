// Package ui renders the end-of-run summary for the terminal.
package ui

import (
	"os"

	"golang.org/x/term"
)

// StyledOutput reports whether f should receive colored, boxed output.
//
// Returns false if:
//   - LOADFLOW_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - f is not a terminal (piped or redirected output)
func StyledOutput(f *os.File) bool {
	if os.Getenv("LOADFLOW_PLAIN") == "1" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}
