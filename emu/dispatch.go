package emu

import "github.com/sarchlab/rvsim/insts"

// DispatchTableSize is the number of direct-dispatch slots. It is a power
// of two; instructions are hashed by their low bits.
const DispatchTableSize = 1024

// insnFunc executes one instruction and returns the next pc. It may
// instead raise a *TrapError, the vt-stop signal, or the halt signal.
type insnFunc func(p *Processor, i insts.Insn, pc uint64) (uint64, error)

// insnDesc registers one instruction: a diagnostic name, the encoding
// match under mask, and the semantic handler.
type insnDesc struct {
	name   string
	opcode uint32
	mask   uint32
	fn     insnFunc
}

// chainEntry is one candidate at a colliding dispatch slot.
type chainEntry struct {
	fn     insnFunc
	opcode uint32
	mask   uint32
}

// The dispatch table is process-wide: built once, then read-only and safe
// for unsynchronized concurrent reads. If the low bits of an encoding
// identify the instruction uniquely, the slot points directly at its
// handler; otherwise the slot points at fallbackDispatch, which probes
// the short list of colliding instructions.
var (
	dispatchTable  []insnFunc
	dispatchChains [DispatchTableSize][]chainEntry
)

// fallbackDispatch linearly probes the collision chain for the slot,
// executing the first instruction whose masked bits match. No match is an
// illegal instruction.
func fallbackDispatch(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	for _, c := range dispatchChains[i.Bits()%DispatchTableSize] {
		if i.Bits()&c.mask == c.opcode {
			return c.fn(p, i, pc)
		}
	}
	return 0, &TrapError{TrapIllegalInstruction}
}

// buildDispatchTable constructs the table from the instruction registry.
// Construction is idempotent and not goroutine-safe: it must complete
// before harts step in parallel. Repeated calls return the same table.
func buildDispatchTable() []insnFunc {
	if dispatchTable != nil {
		return dispatchTable
	}

	table := make([]insnFunc, DispatchTableSize)
	for i := uint32(0); i < DispatchTableSize; i++ {
		for _, d := range declaredInsns {
			if i&d.mask == d.opcode&d.mask&(DispatchTableSize-1) {
				dispatchChains[i] = append(dispatchChains[i],
					chainEntry{d.fn, d.opcode, d.mask})
			}
		}
	}

	for i := range table {
		if len(dispatchChains[i]) == 1 {
			table[i] = dispatchChains[i][0].fn
		} else {
			table[i] = fallbackDispatch
		}
	}

	dispatchTable = table
	return dispatchTable
}
