// Package wire implements the on-disk binary framing for signature
// (.fcds) and diff (.fcdd) files: explicit, little-endian, fixed-width
// headers and entries, chosen over a generic serialization library so
// the format is portable and independently re-implementable.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/avalonkit/fcdelta/deltacore"
)

const (
	// SignatureMagic is the 4-byte magic "FCDS" that opens a signature file.
	SignatureMagic uint32 = 0x46434453
	// DiffMagic is the 4-byte magic "FCDD" that opens a diff file.
	DiffMagic uint32 = 0x46434444

	// Version is the only wire version this package writes or reads.
	Version uint16 = 1

	signatureHeaderLen = 28
	signatureEntryLen  = 36 // 32-byte digest + 4-byte length
	diffHeaderLen      = 8
)

// WriteSignature serializes sig to w per the signature file layout.
func WriteSignature(w io.Writer, sig deltacore.Signature) error {
	hdr := make([]byte, signatureHeaderLen)
	binary.LittleEndian.PutUint32(hdr[0:4], SignatureMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], Version)
	binary.LittleEndian.PutUint16(hdr[6:8], 0) // reserved
	binary.LittleEndian.PutUint32(hdr[8:12], sig.Params.MinSize)
	binary.LittleEndian.PutUint32(hdr[12:16], sig.Params.AvgSize)
	binary.LittleEndian.PutUint32(hdr[16:20], sig.Params.MaxSize)
	binary.LittleEndian.PutUint64(hdr[20:28], uint64(len(sig.Entries)))

	if _, err := w.Write(hdr); err != nil {
		return deltacore.NewError(deltacore.IO, "wire.WriteSignature", err)
	}

	entry := make([]byte, signatureEntryLen)
	for _, e := range sig.Entries {
		copy(entry[:32], e.Digest[:])
		binary.LittleEndian.PutUint32(entry[32:36], e.Length)
		if _, err := w.Write(entry); err != nil {
			return deltacore.NewError(deltacore.IO, "wire.WriteSignature", err)
		}
	}

	return nil
}

// ReadSignature deserializes a signature file from r.
func ReadSignature(r io.Reader) (deltacore.Signature, error) {
	hdr := make([]byte, signatureHeaderLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return deltacore.Signature{}, deltacore.NewError(deltacore.CorruptSignature, "wire.ReadSignature", err)
	}

	magic := binary.LittleEndian.Uint32(hdr[0:4])
	if magic != SignatureMagic {
		return deltacore.Signature{}, deltacore.NewError(deltacore.CorruptSignature, "wire.ReadSignature",
			fmt.Errorf("bad magic %#x, want %#x", magic, SignatureMagic))
	}

	version := binary.LittleEndian.Uint16(hdr[4:6])
	if version != Version {
		return deltacore.Signature{}, deltacore.NewError(deltacore.CorruptSignature, "wire.ReadSignature",
			fmt.Errorf("unsupported version %d", version))
	}

	sig := deltacore.Signature{
		Params: deltacore.ChunkParams{
			MinSize: binary.LittleEndian.Uint32(hdr[8:12]),
			AvgSize: binary.LittleEndian.Uint32(hdr[12:16]),
			MaxSize: binary.LittleEndian.Uint32(hdr[16:20]),
		},
	}

	count := binary.LittleEndian.Uint64(hdr[20:28])
	sig.Entries = make([]deltacore.SignatureEntry, 0, count)

	entry := make([]byte, signatureEntryLen)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return deltacore.Signature{}, deltacore.NewError(deltacore.CorruptSignature, "wire.ReadSignature",
				fmt.Errorf("truncated entry %d: %w", i, err))
		}
		var e deltacore.SignatureEntry
		copy(e.Digest[:], entry[:32])
		e.Length = binary.LittleEndian.Uint32(entry[32:36])
		sig.Entries = append(sig.Entries, e)
	}

	return sig, nil
}

// InstructionWriter streams a diff file's header and instruction stream
// to an underlying writer.
type InstructionWriter struct {
	w io.Writer
}

// NewInstructionWriter writes the diff file header to w and returns a
// writer for the instruction stream that follows it.
func NewInstructionWriter(w io.Writer) (*InstructionWriter, error) {
	hdr := make([]byte, diffHeaderLen)
	binary.LittleEndian.PutUint32(hdr[0:4], DiffMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], Version)
	binary.LittleEndian.PutUint16(hdr[6:8], 0) // reserved

	if _, err := w.Write(hdr); err != nil {
		return nil, deltacore.NewError(deltacore.IO, "wire.NewInstructionWriter", err)
	}
	return &InstructionWriter{w: w}, nil
}

// WriteInstruction appends one instruction to the stream.
func (iw *InstructionWriter) WriteInstruction(ins deltacore.Instruction) error {
	switch ins.Kind {
	case deltacore.KindCopy:
		buf := make([]byte, 1+4+8)
		buf[0] = byte(deltacore.KindCopy)
		binary.LittleEndian.PutUint32(buf[1:5], ins.Length())
		binary.LittleEndian.PutUint64(buf[5:13], ins.SourceOffset)
		if _, err := iw.w.Write(buf); err != nil {
			return deltacore.NewError(deltacore.IO, "wire.WriteInstruction", err)
		}
	case deltacore.KindLiteral:
		buf := make([]byte, 1+4)
		buf[0] = byte(deltacore.KindLiteral)
		binary.LittleEndian.PutUint32(buf[1:5], ins.Length())
		if _, err := iw.w.Write(buf); err != nil {
			return deltacore.NewError(deltacore.IO, "wire.WriteInstruction", err)
		}
		if _, err := iw.w.Write(ins.Bytes); err != nil {
			return deltacore.NewError(deltacore.IO, "wire.WriteInstruction", err)
		}
	default:
		return deltacore.NewError(deltacore.DiffIntegrity, "wire.WriteInstruction",
			fmt.Errorf("unknown instruction kind %d", ins.Kind))
	}
	return nil
}

// InstructionReader streams a diff file's instruction stream after
// validating its header.
type InstructionReader struct {
	r io.Reader
}

// NewInstructionReader reads and validates the diff file header from r,
// returning a reader positioned at the start of the instruction stream.
func NewInstructionReader(r io.Reader) (*InstructionReader, error) {
	hdr := make([]byte, diffHeaderLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, deltacore.NewError(deltacore.CorruptDiff, "wire.NewInstructionReader", err)
	}

	magic := binary.LittleEndian.Uint32(hdr[0:4])
	if magic != DiffMagic {
		return nil, deltacore.NewError(deltacore.CorruptDiff, "wire.NewInstructionReader",
			fmt.Errorf("bad magic %#x, want %#x", magic, DiffMagic))
	}
	version := binary.LittleEndian.Uint16(hdr[4:6])
	if version != Version {
		return nil, deltacore.NewError(deltacore.CorruptDiff, "wire.NewInstructionReader",
			fmt.Errorf("unsupported version %d", version))
	}

	return &InstructionReader{r: r}, nil
}

// Next returns the next instruction in the stream, or io.EOF once the
// stream is exhausted (end of file is end of stream; there is no
// explicit terminator).
func (ir *InstructionReader) Next() (deltacore.Instruction, error) {
	var tag [1]byte
	if _, err := io.ReadFull(ir.r, tag[:]); err != nil {
		if err == io.EOF {
			return deltacore.Instruction{}, io.EOF
		}
		return deltacore.Instruction{}, deltacore.NewError(deltacore.CorruptDiff, "wire.Next", err)
	}

	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(ir.r, lenBuf); err != nil {
		return deltacore.Instruction{}, deltacore.NewError(deltacore.CorruptDiff, "wire.Next",
			fmt.Errorf("truncated length: %w", err))
	}
	length := binary.LittleEndian.Uint32(lenBuf)

	switch deltacore.InstructionKind(tag[0]) {
	case deltacore.KindCopy:
		offBuf := make([]byte, 8)
		if _, err := io.ReadFull(ir.r, offBuf); err != nil {
			return deltacore.Instruction{}, deltacore.NewError(deltacore.CorruptDiff, "wire.Next",
				fmt.Errorf("truncated source offset: %w", err))
		}
		sourceOffset := binary.LittleEndian.Uint64(offBuf)
		return deltacore.NewCopy(sourceOffset, length), nil

	case deltacore.KindLiteral:
		data := make([]byte, length)
		if _, err := io.ReadFull(ir.r, data); err != nil {
			return deltacore.Instruction{}, deltacore.NewError(deltacore.CorruptDiff, "wire.Next",
				fmt.Errorf("truncated literal: %w", err))
		}
		return deltacore.NewLiteral(data), nil

	default:
		return deltacore.Instruction{}, deltacore.NewError(deltacore.CorruptDiff, "wire.Next",
			fmt.Errorf("unknown instruction tag %#x", tag[0]))
	}
}
