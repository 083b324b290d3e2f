package emu

import (
	"math"
	"math/bits"

	"github.com/sarchlab/rvsim/insts"
)

// Instruction semantics. Handlers mutate the architectural state through
// the processor and return the next pc; memory traffic goes through the
// MMU and may raise architectural traps. The engine, not the handlers,
// scrubs XPR[0] after each retirement.

func sext32(v uint64) uint64 {
	return uint64(int64(int32(v)))
}

func insnLUI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = uint64(i.UTypeImm())
	return pc + 4, nil
}

func insnAUIPC(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = pc + uint64(i.UTypeImm())
	return pc + 4, nil
}

func insnJAL(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = pc + 4
	return pc + uint64(i.JTypeImm()), nil
}

func insnJALR(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	target := (p.XPR[i.Rs1()] + uint64(i.ITypeImm())) &^ 1
	p.XPR[i.Rd()] = pc + 4
	return target, nil
}

// branch returns the branch target when taken, the next sequential pc
// otherwise.
func branch(i insts.Insn, pc uint64, taken bool) uint64 {
	if taken {
		return pc + uint64(i.BTypeImm())
	}
	return pc + 4
}

func insnBEQ(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return branch(i, pc, p.XPR[i.Rs1()] == p.XPR[i.Rs2()]), nil
}

func insnBNE(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return branch(i, pc, p.XPR[i.Rs1()] != p.XPR[i.Rs2()]), nil
}

func insnBLT(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return branch(i, pc, int64(p.XPR[i.Rs1()]) < int64(p.XPR[i.Rs2()])), nil
}

func insnBGE(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return branch(i, pc, int64(p.XPR[i.Rs1()]) >= int64(p.XPR[i.Rs2()])), nil
}

func insnBLTU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return branch(i, pc, p.XPR[i.Rs1()] < p.XPR[i.Rs2()]), nil
}

func insnBGEU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return branch(i, pc, p.XPR[i.Rs1()] >= p.XPR[i.Rs2()]), nil
}

// load performs a data-memory read of size bytes at rs1+imm.
func load(p *Processor, i insts.Insn, size int) (uint64, error) {
	addr := p.XPR[i.Rs1()] + uint64(i.ITypeImm())
	return p.mmu.Load(addr, size)
}

func insnLB(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	v, err := load(p, i, 1)
	if err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = uint64(int64(int8(v)))
	return pc + 4, nil
}

func insnLH(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	v, err := load(p, i, 2)
	if err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = uint64(int64(int16(v)))
	return pc + 4, nil
}

func insnLW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	v, err := load(p, i, 4)
	if err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = sext32(v)
	return pc + 4, nil
}

func insnLD(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	v, err := load(p, i, 8)
	if err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = v
	return pc + 4, nil
}

func insnLBU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	v, err := load(p, i, 1)
	if err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = v
	return pc + 4, nil
}

func insnLHU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	v, err := load(p, i, 2)
	if err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = v
	return pc + 4, nil
}

func insnLWU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	v, err := load(p, i, 4)
	if err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = v
	return pc + 4, nil
}

// store performs a data-memory write of size bytes at rs1+imm.
func store(p *Processor, i insts.Insn, size int) error {
	addr := p.XPR[i.Rs1()] + uint64(i.STypeImm())
	return p.mmu.Store(addr, size, p.XPR[i.Rs2()])
}

func insnSB(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if err := store(p, i, 1); err != nil {
		return 0, err
	}
	return pc + 4, nil
}

func insnSH(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if err := store(p, i, 2); err != nil {
		return 0, err
	}
	return pc + 4, nil
}

func insnSW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if err := store(p, i, 4); err != nil {
		return 0, err
	}
	return pc + 4, nil
}

func insnSD(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if err := store(p, i, 8); err != nil {
		return 0, err
	}
	return pc + 4, nil
}

func insnADDI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] + uint64(i.ITypeImm())
	return pc + 4, nil
}

func insnSLTI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if int64(p.XPR[i.Rs1()]) < i.ITypeImm() {
		p.XPR[i.Rd()] = 1
	} else {
		p.XPR[i.Rd()] = 0
	}
	return pc + 4, nil
}

func insnSLTIU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if p.XPR[i.Rs1()] < uint64(i.ITypeImm()) {
		p.XPR[i.Rd()] = 1
	} else {
		p.XPR[i.Rd()] = 0
	}
	return pc + 4, nil
}

func insnXORI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] ^ uint64(i.ITypeImm())
	return pc + 4, nil
}

func insnORI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] | uint64(i.ITypeImm())
	return pc + 4, nil
}

func insnANDI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] & uint64(i.ITypeImm())
	return pc + 4, nil
}

func insnSLLI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] << i.Shamt()
	return pc + 4, nil
}

func insnSRLI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] >> i.Shamt()
	return pc + 4, nil
}

func insnSRAI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = uint64(int64(p.XPR[i.Rs1()]) >> i.Shamt())
	return pc + 4, nil
}

func insnADDIW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = sext32(p.XPR[i.Rs1()] + uint64(i.ITypeImm()))
	return pc + 4, nil
}

func insnSLLIW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = sext32(p.XPR[i.Rs1()] << i.ShamtW())
	return pc + 4, nil
}

func insnSRLIW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = sext32(uint64(uint32(p.XPR[i.Rs1()]) >> i.ShamtW()))
	return pc + 4, nil
}

func insnSRAIW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = uint64(int64(int32(p.XPR[i.Rs1()]) >> i.ShamtW()))
	return pc + 4, nil
}

func insnADD(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] + p.XPR[i.Rs2()]
	return pc + 4, nil
}

func insnSUB(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] - p.XPR[i.Rs2()]
	return pc + 4, nil
}

func insnSLL(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] << (p.XPR[i.Rs2()] & 0x3f)
	return pc + 4, nil
}

func insnSLT(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if int64(p.XPR[i.Rs1()]) < int64(p.XPR[i.Rs2()]) {
		p.XPR[i.Rd()] = 1
	} else {
		p.XPR[i.Rd()] = 0
	}
	return pc + 4, nil
}

func insnSLTU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if p.XPR[i.Rs1()] < p.XPR[i.Rs2()] {
		p.XPR[i.Rd()] = 1
	} else {
		p.XPR[i.Rd()] = 0
	}
	return pc + 4, nil
}

func insnXOR(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] ^ p.XPR[i.Rs2()]
	return pc + 4, nil
}

func insnSRL(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] >> (p.XPR[i.Rs2()] & 0x3f)
	return pc + 4, nil
}

func insnSRA(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = uint64(int64(p.XPR[i.Rs1()]) >> (p.XPR[i.Rs2()] & 0x3f))
	return pc + 4, nil
}

func insnOR(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] | p.XPR[i.Rs2()]
	return pc + 4, nil
}

func insnAND(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] & p.XPR[i.Rs2()]
	return pc + 4, nil
}

func insnMUL(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = p.XPR[i.Rs1()] * p.XPR[i.Rs2()]
	return pc + 4, nil
}

func insnMULH(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	a, b := p.XPR[i.Rs1()], p.XPR[i.Rs2()]
	hi, _ := bits.Mul64(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	if int64(b) < 0 {
		hi -= a
	}
	p.XPR[i.Rd()] = hi
	return pc + 4, nil
}

func insnMULHSU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	a, b := p.XPR[i.Rs1()], p.XPR[i.Rs2()]
	hi, _ := bits.Mul64(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	p.XPR[i.Rd()] = hi
	return pc + 4, nil
}

func insnMULHU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	hi, _ := bits.Mul64(p.XPR[i.Rs1()], p.XPR[i.Rs2()])
	p.XPR[i.Rd()] = hi
	return pc + 4, nil
}

func insnDIV(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	a, b := int64(p.XPR[i.Rs1()]), int64(p.XPR[i.Rs2()])
	switch {
	case b == 0:
		p.XPR[i.Rd()] = ^uint64(0)
	case a == math.MinInt64 && b == -1:
		p.XPR[i.Rd()] = uint64(a)
	default:
		p.XPR[i.Rd()] = uint64(a / b)
	}
	return pc + 4, nil
}

func insnDIVU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if p.XPR[i.Rs2()] == 0 {
		p.XPR[i.Rd()] = ^uint64(0)
	} else {
		p.XPR[i.Rd()] = p.XPR[i.Rs1()] / p.XPR[i.Rs2()]
	}
	return pc + 4, nil
}

func insnREM(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	a, b := int64(p.XPR[i.Rs1()]), int64(p.XPR[i.Rs2()])
	switch {
	case b == 0:
		p.XPR[i.Rd()] = uint64(a)
	case a == math.MinInt64 && b == -1:
		p.XPR[i.Rd()] = 0
	default:
		p.XPR[i.Rd()] = uint64(a % b)
	}
	return pc + 4, nil
}

func insnREMU(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if p.XPR[i.Rs2()] == 0 {
		p.XPR[i.Rd()] = p.XPR[i.Rs1()]
	} else {
		p.XPR[i.Rd()] = p.XPR[i.Rs1()] % p.XPR[i.Rs2()]
	}
	return pc + 4, nil
}

func insnADDW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = sext32(p.XPR[i.Rs1()] + p.XPR[i.Rs2()])
	return pc + 4, nil
}

func insnSUBW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = sext32(p.XPR[i.Rs1()] - p.XPR[i.Rs2()])
	return pc + 4, nil
}

func insnSLLW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = sext32(p.XPR[i.Rs1()] << (p.XPR[i.Rs2()] & 0x1f))
	return pc + 4, nil
}

func insnSRLW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = sext32(uint64(uint32(p.XPR[i.Rs1()]) >> (p.XPR[i.Rs2()] & 0x1f)))
	return pc + 4, nil
}

func insnSRAW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = uint64(int64(int32(p.XPR[i.Rs1()]) >> (p.XPR[i.Rs2()] & 0x1f)))
	return pc + 4, nil
}

func insnMULW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	p.XPR[i.Rd()] = sext32(p.XPR[i.Rs1()] * p.XPR[i.Rs2()])
	return pc + 4, nil
}

func insnDIVW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	a, b := int32(p.XPR[i.Rs1()]), int32(p.XPR[i.Rs2()])
	switch {
	case b == 0:
		p.XPR[i.Rd()] = ^uint64(0)
	case a == math.MinInt32 && b == -1:
		p.XPR[i.Rd()] = uint64(int64(a))
	default:
		p.XPR[i.Rd()] = uint64(int64(a / b))
	}
	return pc + 4, nil
}

func insnDIVUW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	a, b := uint32(p.XPR[i.Rs1()]), uint32(p.XPR[i.Rs2()])
	if b == 0 {
		p.XPR[i.Rd()] = ^uint64(0)
	} else {
		p.XPR[i.Rd()] = sext32(uint64(a / b))
	}
	return pc + 4, nil
}

func insnREMW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	a, b := int32(p.XPR[i.Rs1()]), int32(p.XPR[i.Rs2()])
	switch {
	case b == 0:
		p.XPR[i.Rd()] = uint64(int64(a))
	case a == math.MinInt32 && b == -1:
		p.XPR[i.Rd()] = 0
	default:
		p.XPR[i.Rd()] = uint64(int64(a % b))
	}
	return pc + 4, nil
}

func insnREMUW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	a, b := uint32(p.XPR[i.Rs1()]), uint32(p.XPR[i.Rs2()])
	if b == 0 {
		p.XPR[i.Rd()] = sext32(uint64(a))
	} else {
		p.XPR[i.Rd()] = sext32(uint64(a % b))
	}
	return pc + 4, nil
}

// Memory ordering within a hart is program order already; fences only
// advance the pc.

func insnFENCE(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return pc + 4, nil
}

func insnFENCEI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return pc + 4, nil
}

func insnSCALL(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return 0, &TrapError{TrapSyscall}
}

func insnSBREAK(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	return 0, &TrapError{TrapBreakpoint}
}

// insnERET returns from a trap: supervisor comes back from PS, traps are
// re-enabled, and control transfers to the saved pc.
func insnERET(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if p.SR&StatusS == 0 {
		return 0, &TrapError{TrapPrivilegedInstruction}
	}
	sr := p.SR &^ StatusS
	if p.SR&StatusPS != 0 {
		sr |= StatusS
	}
	p.SetSR(sr | StatusET)
	return p.EPC, nil
}

func insnCSRRW(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	old, err := p.pcrRead(i.CSR())
	if err != nil {
		return 0, err
	}
	if err := p.pcrWrite(i.CSR(), p.XPR[i.Rs1()]); err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = old
	return pc + 4, nil
}

func insnCSRRS(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	old, err := p.pcrRead(i.CSR())
	if err != nil {
		return 0, err
	}
	if i.Rs1() != 0 {
		if err := p.pcrWrite(i.CSR(), old|p.XPR[i.Rs1()]); err != nil {
			return 0, err
		}
	}
	p.XPR[i.Rd()] = old
	return pc + 4, nil
}

func insnCSRRC(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	old, err := p.pcrRead(i.CSR())
	if err != nil {
		return 0, err
	}
	if i.Rs1() != 0 {
		if err := p.pcrWrite(i.CSR(), old&^p.XPR[i.Rs1()]); err != nil {
			return 0, err
		}
	}
	p.XPR[i.Rd()] = old
	return pc + 4, nil
}

func insnCSRRWI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	old, err := p.pcrRead(i.CSR())
	if err != nil {
		return 0, err
	}
	if err := p.pcrWrite(i.CSR(), uint64(i.Rs1())); err != nil {
		return 0, err
	}
	p.XPR[i.Rd()] = old
	return pc + 4, nil
}

func insnCSRRSI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	old, err := p.pcrRead(i.CSR())
	if err != nil {
		return 0, err
	}
	if i.Rs1() != 0 {
		if err := p.pcrWrite(i.CSR(), old|uint64(i.Rs1())); err != nil {
			return 0, err
		}
	}
	p.XPR[i.Rd()] = old
	return pc + 4, nil
}

func insnCSRRCI(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	old, err := p.pcrRead(i.CSR())
	if err != nil {
		return 0, err
	}
	if i.Rs1() != 0 {
		if err := p.pcrWrite(i.CSR(), old&^uint64(i.Rs1())); err != nil {
			return 0, err
		}
	}
	p.XPR[i.Rd()] = old
	return pc + 4, nil
}

// insnVVCFGIVL configures the vector register partition from the
// immediate (nxpr in imm[5:0], nfpr in imm[11:6]), recomputes the maximum
// vector length, and applies the requested length from rs1.
func insnVVCFGIVL(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if p.SR&StatusEV == 0 {
		return 0, &TrapError{TrapVectorDisabled}
	}
	imm := uint32(i.ITypeImm()) & 0xfff
	p.NXPRUse = int(imm & 0x3f)
	p.NFPRUse = int(imm >> 6 & 0x3f)
	p.vcfg()
	p.XPR[i.Rd()] = uint64(p.SetVL(int(p.XPR[i.Rs1()])))
	return pc + 4, nil
}

// insnVSETVL applies the requested vector length from rs1 under the
// current configuration.
func insnVSETVL(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if p.SR&StatusEV == 0 {
		return 0, &TrapError{TrapVectorDisabled}
	}
	p.XPR[i.Rd()] = uint64(p.SetVL(int(p.XPR[i.Rs1()])))
	return pc + 4, nil
}

// insnUTSTOP ends the current burst, preserving state. Micro-thread code
// uses it to hand control back to the driving handler.
func insnUTSTOP(p *Processor, i insts.Insn, pc uint64) (uint64, error) {
	if p.SR&StatusEV == 0 {
		return 0, &TrapError{TrapVectorDisabled}
	}
	return 0, errVTStop
}
