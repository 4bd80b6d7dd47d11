package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "bookbench",
	Short:   "A load-generation harness for book-catalog CRUD services",
	Version: version,
	Long: `Bookbench drives a book-catalog CRUD HTTP service with a fixed pool of
virtual users, each repeating a create-read-update-delete cycle for a
configured duration. It measures per-operation latency, enforces pass/fail
thresholds, and writes a CSV report for external analysis.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	RootCmd.AddCommand(runCmd)
}
