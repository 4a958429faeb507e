// Package deltacore holds the shared data model for the content-defined
// delta engine: chunk digests, signatures, and the Copy/Literal
// instruction stream that a diff is made of. It has no I/O of its own.
package deltacore

import (
	"encoding/hex"
	"fmt"

	"github.com/avalonkit/fcdelta/fastcdc"
)

// Digest is a 32-byte BLAKE3 chunk digest, treated as opaque fixed-width
// bytes compared for exact equality.
type Digest [32]byte

// String returns the digest as a lowercase hex string.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ChunkParams is the wire-level form of a chunking parameter set: just
// the three size bounds, without the derived gear masks fastcdc.Params
// carries for its own use.
type ChunkParams struct {
	MinSize uint32
	AvgSize uint32
	MaxSize uint32
}

// ToFastCDC builds a fastcdc.Params from c, using gear as the gear table
// (nil selects the package default).
func (c ChunkParams) ToFastCDC(gear *fastcdc.GearTable) (fastcdc.Params, error) {
	return fastcdc.NewParams(int(c.MinSize), int(c.AvgSize), int(c.MaxSize), gear)
}

// ChunkParamsFromFastCDC extracts the wire-level size bounds from p.
func ChunkParamsFromFastCDC(p fastcdc.Params) ChunkParams {
	return ChunkParams{
		MinSize: uint32(p.MinSize),
		AvgSize: uint32(p.AvgSize),
		MaxSize: uint32(p.MaxSize),
	}
}

// SignatureEntry is one (digest, length) pair describing a single chunk.
type SignatureEntry struct {
	Digest Digest
	Length uint32
}

// Signature is the ordered list of chunk digests and lengths that
// summarizes a byte stream's chunk structure without its bytes.
type Signature struct {
	Params  ChunkParams
	Entries []SignatureEntry
}

// TotalLength returns the sum of all entry lengths, i.e. the length of
// the stream the signature was computed from.
func (s Signature) TotalLength() int64 {
	var n int64
	for _, e := range s.Entries {
		n += int64(e.Length)
	}
	return n
}

// InstructionKind distinguishes the two instruction shapes a diff is
// built from.
type InstructionKind uint8

const (
	// KindCopy references a slice of A.
	KindCopy InstructionKind = 0x01
	// KindLiteral inlines bytes from B not found in A.
	KindLiteral InstructionKind = 0x02
)

// Instruction is a single step of a diff's instruction stream: either a
// Copy from the source (A) or a Literal run of bytes from B.
type Instruction struct {
	Kind         InstructionKind
	SourceOffset uint64 // meaningful for KindCopy only
	Bytes        []byte // meaningful for KindLiteral only
	length       uint32 // meaningful for KindCopy only; KindLiteral derives it from len(Bytes)
}

// Length returns the number of reconstructed bytes this instruction
// contributes.
func (ins Instruction) Length() uint32 {
	if ins.Kind == KindLiteral {
		return uint32(len(ins.Bytes))
	}
	return ins.length
}

// NewCopy builds a Copy instruction referencing length bytes of A
// starting at sourceOffset.
func NewCopy(sourceOffset uint64, length uint32) Instruction {
	return Instruction{Kind: KindCopy, SourceOffset: sourceOffset, length: length}
}

// NewLiteral builds a Literal instruction carrying data verbatim. data
// is not copied; callers must not mutate it afterward.
func NewLiteral(data []byte) Instruction {
	return Instruction{Kind: KindLiteral, Bytes: data}
}

// String implements fmt.Stringer for debugging.
func (ins Instruction) String() string {
	if ins.Kind == KindCopy {
		return fmt.Sprintf("Copy{sourceOffset=%d, length=%d}", ins.SourceOffset, ins.length)
	}
	return fmt.Sprintf("Literal{length=%d}", len(ins.Bytes))
}
