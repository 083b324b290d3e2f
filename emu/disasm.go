package emu

import (
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

// disasm emits one trace line for the instruction about to execute. The
// mnemonic comes from probing the registry; encodings no entry claims
// print as unknown.
func (p *Processor) disasm(insn insts.Insn) {
	name := "unknown"
	for _, d := range declaredInsns {
		if insn.Bits()&d.mask == d.opcode {
			name = d.name
			break
		}
	}
	fmt.Fprintf(p.traceW, "core %3d: 0x%016x (0x%08x) %s\n",
		p.ID, p.PC, insn.Bits(), name)
}
