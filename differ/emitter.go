package differ

import "github.com/avalonkit/fcdelta/deltacore"

// instructionEmitter buffers the most recently produced instruction and
// merges it with the next one when the coalescing rules allow, so that
// adjacent Literals and adjacent contiguous Copys reach the wire as a
// single instruction.
type instructionEmitter struct {
	sink    func(deltacore.Instruction) error
	pending *deltacore.Instruction
	total   int64
}

func newInstructionEmitter(sink func(deltacore.Instruction) error) *instructionEmitter {
	return &instructionEmitter{sink: sink}
}

// push queues ins, merging it into the pending instruction when possible
// and flushing the previous pending instruction otherwise.
func (e *instructionEmitter) push(ins deltacore.Instruction) error {
	if e.pending == nil {
		e.pending = &ins
		return nil
	}
	if merged, ok := tryMerge(*e.pending, ins); ok {
		e.pending = &merged
		return nil
	}
	if err := e.flush(); err != nil {
		return err
	}
	e.pending = &ins
	return nil
}

// flush writes out the pending instruction, if any.
func (e *instructionEmitter) flush() error {
	if e.pending == nil {
		return nil
	}
	e.total += int64(e.pending.Length())
	if err := e.sink(*e.pending); err != nil {
		return err
	}
	e.pending = nil
	return nil
}

// finish flushes any remaining pending instruction and returns the total
// reconstructed length emitted across the whole stream.
func (e *instructionEmitter) finish() (int64, error) {
	if err := e.flush(); err != nil {
		return 0, err
	}
	return e.total, nil
}

// tryMerge reports whether next can be merged into prev under the
// coalescing rules: adjacent Literals always merge; adjacent Copys merge
// only when next continues prev contiguously in A. A Copy and a Literal
// never merge.
func tryMerge(prev, next deltacore.Instruction) (deltacore.Instruction, bool) {
	if prev.Kind != next.Kind {
		return deltacore.Instruction{}, false
	}

	switch prev.Kind {
	case deltacore.KindCopy:
		if prev.SourceOffset+uint64(prev.Length()) != next.SourceOffset {
			return deltacore.Instruction{}, false
		}
		return deltacore.NewCopy(prev.SourceOffset, prev.Length()+next.Length()), true

	case deltacore.KindLiteral:
		merged := make([]byte, 0, len(prev.Bytes)+len(next.Bytes))
		merged = append(merged, prev.Bytes...)
		merged = append(merged, next.Bytes...)
		return deltacore.NewLiteral(merged), true

	default:
		return deltacore.Instruction{}, false
	}
}
