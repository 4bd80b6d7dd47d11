package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/bookbench/internal/bench"
	"github.com/wesleyorama2/bookbench/internal/config"
	"github.com/wesleyorama2/bookbench/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the CRUD benchmark against the target service",
	Long: `Execute one benchmark run: an optional warmup phase followed by the
measurement window, then a console summary and a CSV report.

Settings are resolved per key from the environment, then the optional
config file, then built-in defaults:

  SERVICE_NAME       service identifier header value
  BASE_URL           collection endpoint of the service under test
  VUS                number of concurrent virtual users
  DURATION           measurement window, e.g. 30s or 5m
  WARMUP_ITERATIONS  workload cycles executed before measurement
  DATABASE_TYPE      backend label used for report naming
  OUTPUT_DIR         directory the CSV report is written to
  STEP_PAUSE         pause between CRUD steps, e.g. 100ms

Example:
  VUS=10 DURATION=1m bookbench run --config bench.env`,
	Run: func(cmd *cobra.Command, args []string) {
		runBenchmark(cmd, args)
	},
}

func runBenchmark(cmd *cobra.Command, args []string) {
	configFile, _ := cmd.Flags().GetString("config")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	noColor, _ := cmd.Flags().GetBool("no-color")
	quiet, _ := cmd.Flags().GetBool("quiet")

	settings, err := config.Resolve(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving configuration: %v\n", err)
		os.Exit(1)
	}
	if outputDir != "" {
		settings.OutputDir = outputDir
	}

	if !quiet {
		fmt.Printf("Target:   %s\n", settings.BaseURL)
		fmt.Printf("Backend:  %s\n", settings.DatabaseType)
		fmt.Printf("VUs:      %d\n", settings.VUs)
		fmt.Printf("Duration: %s\n", settings.Duration)
		if settings.WarmupIterations > 0 {
			fmt.Printf("Warmup:   %d iterations\n", settings.WarmupIterations)
		}
	}

	runner := bench.NewRunner(settings)
	result, runErr := runner.Run(context.Background())
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running benchmark: %v\n", runErr)
		// Continue to output whatever was collected.
	}

	useColor := !noColor && report.IsTTY(os.Stdout)
	console := report.NewConsole(os.Stdout, useColor)
	console.PrintSummary(result)

	path, err := report.Save(settings.OutputDir, result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report: %s\n", path)

	if !result.Passed || runErr != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "Optional config file (KEY=VALUE lines, or YAML for .yaml/.yml)")
	runCmd.Flags().String("output-dir", "", "Directory for the CSV report (overrides OUTPUT_DIR)")
	runCmd.Flags().Bool("no-color", false, "Disable colored output")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress the run header")
}
