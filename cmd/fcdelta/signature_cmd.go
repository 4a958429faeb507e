package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avalonkit/fcdelta/engine"
)

func newSignatureCmd() *cobra.Command {
	flags := &chunkFlags{}

	cmd := &cobra.Command{
		Use:   "signature <source> <signature-out>",
		Short: "Compute a content-defined chunk signature for a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}
			log := flags.logger()
			defer func() { _ = log.Sync() }()

			source, err := os.Open(args[0])
			if err != nil {
				log.Error("opening source failed", zap.Error(err))
				engine.Fatal(log, err)
			}
			defer source.Close()

			dest, err := os.Create(args[1])
			if err != nil {
				log.Error("creating signature file failed", zap.Error(err))
				engine.Fatal(log, err)
			}
			defer dest.Close()

			e := engine.New(params, flags.workers, log)
			if err := e.Signature(source, dest); err != nil {
				engine.Fatal(log, err)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
