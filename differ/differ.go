// Package differ compares B's content-defined chunks against a
// signature of A and emits a Copy/Literal instruction stream that
// rebuilds B from A.
package differ

import (
	"fmt"
	"io"

	"github.com/avalonkit/fcdelta/deltacore"
	"github.com/avalonkit/fcdelta/fastcdc"
	"github.com/avalonkit/fcdelta/signature"
	"github.com/avalonkit/fcdelta/wire"
)

// Diff computes A's signature on the fly, then writes to dest the diff
// file that transforms A into B.
func Diff(a io.Reader, b io.Reader, dest io.Writer, params fastcdc.Params) error {
	sigA, err := signature.Sign(a, params)
	if err != nil {
		return err
	}
	return DiffUsingSourceSignature(sigA, b, dest)
}

// DiffUsingSourceSignature reuses a pre-computed signature of A. The
// chunking parameters are taken from the signature's own header.
func DiffUsingSourceSignature(sigA deltacore.Signature, b io.Reader, dest io.Writer) error {
	params, err := sigA.Params.ToFastCDC(nil)
	if err != nil {
		return deltacore.NewError(deltacore.BadParameters, "differ.Diff", err)
	}

	idx := deltacore.BuildSourceIndex(sigA)

	// A matched chunk continues the previous Copy when the A-chunk right
	// after it has the same digest; otherwise the first occurrence is used.
	startAt := make(map[uint64]int, len(sigA.Entries))
	var aOffset uint64
	for i, e := range sigA.Entries {
		startAt[aOffset] = i
		aOffset += uint64(e.Length)
	}
	var nextA uint64
	continuing := false

	iw, err := wire.NewInstructionWriter(dest)
	if err != nil {
		return err
	}

	emitter := newInstructionEmitter(iw.WriteInstruction)

	c := fastcdc.NewChunker(b, params)

	var bLength int64
	for {
		bnd, data, err := c.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return deltacore.NewError(deltacore.IO, "differ.Diff", err)
		}
		bLength += int64(bnd.Length)

		digest := signature.DigestChunk(data)
		if offset, _, ok := idx.Lookup(digest); ok {
			if i, found := startAt[nextA]; continuing && found && sigA.Entries[i].Digest == digest {
				offset = nextA
			}
			nextA, continuing = offset+uint64(bnd.Length), true
			if err := emitter.push(deltacore.NewCopy(offset, bnd.Length)); err != nil {
				return err
			}
		} else {
			continuing = false
			if err := emitter.push(deltacore.NewLiteral(data)); err != nil {
				return err
			}
		}
	}

	total, err := emitter.finish()
	if err != nil {
		return err
	}

	if total != bLength {
		return deltacore.NewError(deltacore.DiffIntegrity, "differ.Diff",
			fmt.Errorf("instruction stream covers %d bytes, want %d", total, bLength))
	}

	return nil
}
