package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "load-flow",
	Short: "Batch loader for catalog dimensions and employee records",
	Long: `load-flow reads a catalog export and an employee export, deduplicates the
agency, profession, ethnicity and gender names into their own tables, and
loads every employee whose references resolve and whose fingerprint is new.

Runs are idempotent: loading the same files twice adds nothing the second time.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Source file unreadable or missing a column`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout, os.Stderr)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is the PostgreSQL host shorthand, so help gets a long flag only.
	rootCmd.PersistentFlags().Bool("help", false, "Help for load-flow")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
