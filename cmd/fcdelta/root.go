package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avalonkit/fcdelta/fastcdc"
)

// chunkFlags holds the chunking parameter flags shared by the
// signature and diff subcommands.
type chunkFlags struct {
	minSize int
	avgSize int
	maxSize int
	workers int
	verbose bool
}

func (f *chunkFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.minSize, "min-size", fastcdc.DefaultMinSize, "minimum chunk size in bytes")
	cmd.Flags().IntVar(&f.avgSize, "avg-size", fastcdc.DefaultAvgSize, "target average chunk size in bytes")
	cmd.Flags().IntVar(&f.maxSize, "max-size", fastcdc.DefaultMaxSize, "maximum chunk size in bytes")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "number of worker goroutines for chunk hashing")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose (debug-level) logging")
}

func (f *chunkFlags) params() (fastcdc.Params, error) {
	return fastcdc.NewParams(f.minSize, f.avgSize, f.maxSize, nil)
}

func (f *chunkFlags) logger() *zap.Logger {
	var cfg zap.Config
	if f.verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

var rootCmd = &cobra.Command{
	Use:   "fcdelta",
	Short: "fcdelta computes content-defined chunk signatures and binary diffs",
	Long: `fcdelta splits files into content-defined chunks, fingerprints them,
and produces compact Copy/Literal diffs that can reconstruct one file's
contents from another's signature.`,
}

// Execute runs the root command, exiting the process with status 1 if
// the command returns an error. Engine failures inside a subcommand
// exit earlier, through engine.Fatal, with a status mapped from the
// error's Kind.
func Execute() {
	rootCmd.AddCommand(newSignatureCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newApplyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
