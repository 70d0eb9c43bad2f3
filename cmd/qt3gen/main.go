// qt3gen regenerates the Noir conformance test packages from the W3C
// qt3tests corpus.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	testgen "github.com/noir-xpath/testgen"
	"github.com/noir-xpath/testgen/catalog"
	"github.com/noir-xpath/testgen/types"
)

var (
	outputDir     string
	qt3Dir        string
	functions     []string
	skipClone     bool
	listFunctions bool
	configFile    string
	verbose       bool

	logger *zap.Logger
)

// fileConfig mirrors the command line flags in a YAML config file. Flags
// given explicitly win over file values.
type fileConfig struct {
	OutputDir string   `yaml:"output_dir"`
	QT3Dir    string   `yaml:"qt3_dir"`
	Functions []string `yaml:"functions"`
	SkipClone bool     `yaml:"skip_clone"`
	ChunkSize int      `yaml:"chunk_size"`
}

var rootCmd = &cobra.Command{
	Use:   "qt3gen",
	Short: "Generate Noir test packages from the qt3tests conformance corpus",
	Long: `qt3gen reads XPath conformance test cases from a qt3tests checkout,
translates the expressions it can prove safe into Noir assertions against
the xpath library, and writes them out as chunked Nargo test packages.`,
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
	rootCmd.Flags().StringVar(&outputDir, "output-dir", ".", "Noir workspace directory to write test packages into")
	rootCmd.Flags().StringVar(&qt3Dir, "qt3-dir", "qt3tests", "qt3tests checkout directory")
	rootCmd.Flags().StringSliceVar(&functions, "functions", nil, "comma-separated operations to generate (default: all)")
	rootCmd.Flags().BoolVar(&skipClone, "skip-clone", false, "do not clone or pull the qt3tests repository")
	rootCmd.Flags().BoolVar(&listFunctions, "list-functions", false, "list supported operations and exit")
	rootCmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	if listFunctions {
		ops := catalog.All()
		names := make([]string, 0, len(ops))
		for _, op := range ops {
			names = append(names, string(op))
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	opts := testgen.Options{
		QT3Dir:      qt3Dir,
		OutputDir:   outputDir,
		SkipRefresh: skipClone,
	}
	if configFile != "" {
		if err := applyConfig(cmd, configFile, &opts); err != nil {
			return err
		}
	}
	for _, name := range functions {
		opts.Operations = append(opts.Operations, catalog.Operation(name))
	}

	totals, err := testgen.NewPipeline(opts, logger).Run()
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d tests across %d operations (%d skipped)\n",
		totals.Converted, len(totals.Operations), totals.Skipped)
	if verbose && len(totals.ByReason) > 0 {
		reasons := make([]types.SkipReason, 0, len(totals.ByReason))
		for reason := range totals.ByReason {
			reasons = append(reasons, reason)
		}
		sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
		for _, reason := range reasons {
			fmt.Printf("  %-35s %d\n", reason, totals.ByReason[reason])
		}
	}
	return nil
}

func applyConfig(cmd *cobra.Command, path string, opts *testgen.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if cfg.OutputDir != "" && !cmd.Flags().Changed("output-dir") {
		opts.OutputDir = cfg.OutputDir
	}
	if cfg.QT3Dir != "" && !cmd.Flags().Changed("qt3-dir") {
		opts.QT3Dir = cfg.QT3Dir
	}
	if cfg.SkipClone && !cmd.Flags().Changed("skip-clone") {
		opts.SkipRefresh = true
	}
	if len(cfg.Functions) > 0 && len(functions) == 0 {
		functions = cfg.Functions
	}
	opts.ChunkSize = cfg.ChunkSize
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
