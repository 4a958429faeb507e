// Package engine wires the signature, differ, and applier packages into
// the three operations the command-line tool exposes, adding structured
// logging and mapping library errors onto process exit behavior.
package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/avalonkit/fcdelta/applier"
	"github.com/avalonkit/fcdelta/deltacore"
	"github.com/avalonkit/fcdelta/differ"
	"github.com/avalonkit/fcdelta/fastcdc"
	"github.com/avalonkit/fcdelta/signature"
	"github.com/avalonkit/fcdelta/wire"
)

// Engine orchestrates signature/diff/apply runs and logs their outcome.
type Engine struct {
	log     *zap.Logger
	Params  fastcdc.Params
	Workers int
}

// New builds an Engine using the given chunking parameters and logger.
// A nil logger is replaced with zap.NewNop so callers that don't care
// about logging don't need to special-case it.
func New(params fastcdc.Params, workers int, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, Params: params, Workers: workers}
}

// Signature computes the signature of source and writes it to dest in
// wire format.
func (e *Engine) Signature(source io.Reader, dest io.Writer) error {
	var sig deltacore.Signature
	var err error
	if e.Workers > 1 {
		sig, err = signature.SignParallel(source, e.Params, e.Workers)
	} else {
		sig, err = signature.Sign(source, e.Params)
	}
	if err != nil {
		e.log.Error("signature failed", zap.Error(err))
		return err
	}

	e.log.Info("signature computed",
		zap.Int("chunks", len(sig.Entries)),
		zap.Int64("bytes", sig.TotalLength()),
	)

	if err := wire.WriteSignature(dest, sig); err != nil {
		e.log.Error("signature write failed", zap.Error(err))
		return err
	}
	return nil
}

// Diff computes a diff that transforms A into B and writes it to dest.
// If sourceSignature is non-nil, it is used in place of recomputing A's
// signature (e.g. when the caller already has a .fcds file for A).
func (e *Engine) Diff(a io.Reader, b io.Reader, dest io.Writer, sourceSignature io.Reader) error {
	if sourceSignature != nil {
		sig, err := wire.ReadSignature(sourceSignature)
		if err != nil {
			e.log.Error("reading source signature failed", zap.Error(err))
			return err
		}
		if err := differ.DiffUsingSourceSignature(sig, b, dest); err != nil {
			e.log.Error("diff failed", zap.Error(err))
			return err
		}
		e.log.Info("diff computed from precomputed signature")
		return nil
	}

	if err := differ.Diff(a, b, dest, e.Params); err != nil {
		e.log.Error("diff failed", zap.Error(err))
		return err
	}
	e.log.Info("diff computed")
	return nil
}

// Apply reconstructs B by replaying a diff read from diff against the
// random-access source a, writing the result to dest.
func (e *Engine) Apply(diff io.Reader, a io.ReaderAt, aSize int64, dest io.Writer) error {
	if err := applier.Apply(diff, a, aSize, dest); err != nil {
		e.log.Error("apply failed", zap.Error(err))
		return err
	}
	e.log.Info("apply complete", zap.Int64("source_size", aSize))
	return nil
}

// ExitCode maps an error returned by this package (or nil) onto a
// process exit code. Errors not produced by this engine's Kind
// taxonomy map to a generic failure code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var derr *deltacore.Error
	if !errors.As(err, &derr) {
		return 1
	}
	switch derr.Kind {
	case deltacore.BadParameters:
		return 2
	case deltacore.IO:
		return 3
	case deltacore.CorruptSignature, deltacore.CorruptDiff:
		return 4
	case deltacore.DiffIntegrity:
		return 5
	default:
		return 1
	}
}

// Fatal logs err (if non-nil) and exits the process with the mapped
// exit code. It is meant to be called once, directly from main.
func Fatal(log *zap.Logger, err error) {
	if err == nil {
		return
	}
	if log != nil {
		log.Error("fatal", zap.Error(err))
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(ExitCode(err))
}
