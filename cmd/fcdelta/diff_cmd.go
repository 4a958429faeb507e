package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avalonkit/fcdelta/engine"
)

func newDiffCmd() *cobra.Command {
	flags := &chunkFlags{}
	var sourceSignaturePath string

	cmd := &cobra.Command{
		Use:   "diff <a> <b> <diff-out>",
		Short: "Compute a diff that transforms A into B",
		Long: `Computes a Copy/Literal instruction stream that, applied against A,
reconstructs B. Pass --signature to reuse a signature file already
computed for A instead of re-chunking it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}
			log := flags.logger()
			defer func() { _ = log.Sync() }()

			b, err := os.Open(args[1])
			if err != nil {
				log.Error("opening B failed", zap.Error(err))
				engine.Fatal(log, err)
			}
			defer b.Close()

			dest, err := os.Create(args[2])
			if err != nil {
				log.Error("creating diff file failed", zap.Error(err))
				engine.Fatal(log, err)
			}
			defer dest.Close()

			e := engine.New(params, flags.workers, log)

			if sourceSignaturePath != "" {
				sigFile, err := os.Open(sourceSignaturePath)
				if err != nil {
					log.Error("opening source signature failed", zap.Error(err))
					engine.Fatal(log, err)
				}
				defer sigFile.Close()

				if err := e.Diff(nil, b, dest, sigFile); err != nil {
					engine.Fatal(log, err)
				}
				return nil
			}

			a, err := os.Open(args[0])
			if err != nil {
				log.Error("opening A failed", zap.Error(err))
				engine.Fatal(log, err)
			}
			defer a.Close()

			if err := e.Diff(a, b, dest, nil); err != nil {
				engine.Fatal(log, err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&sourceSignaturePath, "signature", "", "reuse a precomputed signature file for A instead of re-chunking it")
	return cmd
}
