package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avalonkit/fcdelta/engine"
	"github.com/avalonkit/fcdelta/fastcdc"
)

func newApplyCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "apply <a> <diff> <dest>",
		Short: "Reconstruct B by applying a diff against A",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := (&chunkFlags{verbose: verbose}).logger()
			defer func() { _ = log.Sync() }()

			a, err := os.Open(args[0])
			if err != nil {
				log.Error("opening A failed", zap.Error(err))
				engine.Fatal(log, err)
			}
			defer a.Close()

			info, err := a.Stat()
			if err != nil {
				log.Error("statting A failed", zap.Error(err))
				engine.Fatal(log, err)
			}

			diff, err := os.Open(args[1])
			if err != nil {
				log.Error("opening diff failed", zap.Error(err))
				engine.Fatal(log, err)
			}
			defer diff.Close()

			dest, err := os.Create(args[2])
			if err != nil {
				log.Error("creating destination failed", zap.Error(err))
				engine.Fatal(log, err)
			}
			defer dest.Close()

			e := engine.New(fastcdc.DefaultParams(), 1, log)
			if err := e.Apply(diff, a, info.Size(), dest); err != nil {
				engine.Fatal(log, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug-level) logging")
	return cmd
}
