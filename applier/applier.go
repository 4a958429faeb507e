// Package applier reconstructs B by replaying a diff's instruction
// stream against A: Copy instructions are satisfied with a bounded
// window read from A, Literal instructions are written through
// verbatim.
package applier

import (
	"fmt"
	"io"

	"github.com/avalonkit/fcdelta/deltacore"
	"github.com/avalonkit/fcdelta/wire"
)

// copyBufferSize bounds how much of A is ever held in memory to satisfy
// a single Copy instruction, regardless of how large that Copy is.
const copyBufferSize = 64 * 1024

// Apply reads the diff file from diff and reconstructs B into dest,
// reading Copy ranges from a. a must support random access since
// instructions can reference A's source offsets in any order.
func Apply(diff io.Reader, a io.ReaderAt, aSize int64, dest io.Writer) error {
	ir, err := wire.NewInstructionReader(diff)
	if err != nil {
		return err
	}

	buf := make([]byte, copyBufferSize)

	for {
		ins, err := ir.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch ins.Kind {
		case deltacore.KindCopy:
			if err := applyCopy(a, aSize, dest, ins, buf); err != nil {
				return err
			}
		case deltacore.KindLiteral:
			if _, err := dest.Write(ins.Bytes); err != nil {
				return deltacore.NewError(deltacore.IO, "applier.Apply", err)
			}
		default:
			return deltacore.NewError(deltacore.CorruptDiff, "applier.Apply",
				fmt.Errorf("unknown instruction kind %d", ins.Kind))
		}
	}
}

// applyCopy streams length bytes of a starting at sourceOffset to dest,
// in chunks no larger than len(buf), so a single large Copy never pulls
// more than copyBufferSize bytes of A into memory at once.
func applyCopy(a io.ReaderAt, aSize int64, dest io.Writer, ins deltacore.Instruction, buf []byte) error {
	length := int64(ins.Length())
	end := int64(ins.SourceOffset) + length
	if ins.SourceOffset > uint64(aSize) || end > aSize || end < int64(ins.SourceOffset) {
		return deltacore.NewError(deltacore.CorruptDiff, "applier.applyCopy",
			fmt.Errorf("copy range [%d, %d) out of bounds for source of size %d", ins.SourceOffset, end, aSize))
	}

	sr := io.NewSectionReader(a, int64(ins.SourceOffset), length)
	for {
		n, err := sr.Read(buf)
		if n > 0 {
			if _, werr := dest.Write(buf[:n]); werr != nil {
				return deltacore.NewError(deltacore.IO, "applier.applyCopy", werr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return deltacore.NewError(deltacore.IO, "applier.applyCopy", err)
		}
	}
}
