package loadflow_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/artugro/load-flow/pkg/loadflow"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, loadflow.ExitSuccess},
		{"general error", errors.New("something went wrong"), loadflow.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag --foo"), loadflow.ExitUsageError},
		{"accepts args", errors.New("accepts at most 1 arg(s), received 2"), loadflow.ExitUsageError},
		{"invalid config", fmt.Errorf("batch size: %w", loadflow.ErrInvalidConfig), loadflow.ExitConfigError},
		{"unsupported driver", fmt.Errorf("%w: %q", loadflow.ErrUnsupportedDriver, "mysql"), loadflow.ExitConfigError},
		{"unsupported auth", loadflow.ErrUnsupportedAuthMethod, loadflow.ExitConfigError},
		{"connection failed", fmt.Errorf("open sink: %w", loadflow.ErrConnectionFailed), loadflow.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp: connection refused"), loadflow.ExitConnectionError},
		{"source read", fmt.Errorf("read catalog: %w", loadflow.ErrSourceRead), loadflow.ExitSourceError},
		{"missing column", fmt.Errorf("%w: gender", loadflow.ErrMissingColumn), loadflow.ExitSourceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loadflow.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
