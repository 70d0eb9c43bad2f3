// gatebench measures constraint counts for the xpath library's primitive
// operations and tracks them over time.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noir-xpath/testgen/bench"
)

var (
	outputFile  string
	summaryOnly bool
	compareFile string
	xpathDir    string
	verbose     bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gatebench",
	Short: "Benchmark ACIR/Brillig opcode counts for xpath primitives",
	Long: `gatebench compiles one minimal circuit per xpath primitive with nargo,
records the opcode counts reported by nargo info, and appends the run to a
JSON history file for later comparison.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&outputFile, "output", "benchmark_history.json", "benchmark history file")
	rootCmd.Flags().BoolVar(&summaryOnly, "summary", false, "print the latest recorded run and exit")
	rootCmd.Flags().StringVar(&compareFile, "compare", "", "compare the latest run in FILE against the one before it")
	rootCmd.Flags().StringVar(&xpathDir, "xpath-dir", "xpath", "Noir xpath library directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	if summaryOnly {
		return printLatest(outputFile)
	}
	if compareFile != "" {
		return printComparison(compareFile)
	}

	absXpath, err := filepath.Abs(xpathDir)
	if err != nil {
		return fmt.Errorf("resolve xpath dir: %w", err)
	}
	runner := bench.NewRunner(bench.Options{XpathDir: absXpath, RepoDir: "."}, logger)
	if !runner.Available() {
		return fmt.Errorf("nargo not found on PATH")
	}

	record, err := runner.Run(context.Background())
	if err != nil {
		return err
	}
	history, err := bench.AppendHistory(outputFile, record)
	if err != nil {
		return err
	}

	bench.PrintSummary(os.Stdout, record)
	if len(history) > 1 {
		bench.PrintComparison(os.Stdout, history[len(history)-2], record)
	}
	return nil
}

func printLatest(path string) error {
	history := bench.LoadHistory(path)
	if len(history) == 0 {
		return fmt.Errorf("no benchmark history in %s", path)
	}
	bench.PrintSummary(os.Stdout, history[len(history)-1])
	return nil
}

func printComparison(path string) error {
	history := bench.LoadHistory(path)
	if len(history) < 2 {
		return fmt.Errorf("need at least two runs in %s to compare", path)
	}
	bench.PrintComparison(os.Stdout, history[len(history)-2], history[len(history)-1])
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
