package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/artugro/load-flow/internal/cli"
	"github.com/artugro/load-flow/pkg/loadflow"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(loadflow.ExitPanic)
		}
	}()

	if os.Getenv("LOADFLOW_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(loadflow.ExitCodeForError(err))
	}
}
