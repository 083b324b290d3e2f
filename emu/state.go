// Package emu provides the per-hart processor model: architectural state,
// hashed-opcode dispatch, trap and interrupt delivery, and the vector
// micro-thread pool.
package emu

// Status-register bit assignments. Reserved bits (StatusZero) read and
// write as zero.
const (
	StatusET uint32 = 1 << 0 // traps enabled
	StatusEF uint32 = 1 << 1 // floating point enabled
	StatusEV uint32 = 1 << 2 // vector unit enabled
	StatusEC uint32 = 1 << 3 // compressed encoding enabled
	StatusPS uint32 = 1 << 4 // previous supervisor bit
	StatusS  uint32 = 1 << 5 // supervisor mode
	StatusUX uint32 = 1 << 6 // 64-bit mode in user
	StatusSX uint32 = 1 << 7 // 64-bit mode in supervisor
	StatusIM uint32 = 0xff << StatusIMShift
	StatusVM uint32 = 1 << 16 // virtual memory enabled

	// StatusIMShift positions the 8-bit interrupt mask.
	StatusIMShift = 8

	// StatusZero masks the reserved status bits.
	StatusZero = ^(StatusET | StatusEF | StatusEV | StatusEC | StatusPS |
		StatusS | StatusUX | StatusSX | StatusIM | StatusVM)
)

// Floating-point status-register fields.
const (
	FSRFlags uint32 = 0x1f // accrued exception flags
	FSRRound uint32 = 0xe0 // rounding mode

	// FSRZero masks the reserved FP status bits.
	FSRZero = ^(FSRFlags | FSRRound)
)

// Cause-register fields. EXCCODE holds the trap code of the most recent
// trap; IP holds the 8-bit pending-interrupt bitmap.
const (
	CauseExcCode uint64 = 0x1f
	CauseIPShift        = 8
	CauseIP      uint64 = 0xff << CauseIPShift
)

// Interrupt request lines within the IP/IM bitmaps.
const (
	IRQIPI   = 5
	IRQTimer = 7
)

// NumXPR is the number of integer registers; XPR[0] is hard-wired zero.
const NumXPR = 32

// NumFPR is the number of floating-point registers. Each carries the raw
// little-endian bits of an IEEE-754 single or double.
const NumFPR = 32

// MaxUTs is the capacity of the micro-thread pool and the upper bound on
// the configured vector length.
const MaxUTs = 2048

// State is the architectural state block of one hart or micro-thread.
// It is a passive record; the write ports with side effects (SetSR,
// SetFSR, Reset) live on Processor, which owns the MMU the status
// register propagates into.
type State struct {
	// XPR holds the integer registers. XPR[0] is forced to zero after
	// every retired instruction.
	XPR [NumXPR]uint64

	// FPR holds the floating-point register bits.
	FPR [NumFPR]uint64

	// PC is the current code address.
	PC uint64

	// SR is the status word. Reserved bits are always zero.
	SR uint32

	// FSR is the floating-point status word. Reserved bits are always zero.
	FSR uint32

	// Trap state: vector, saved pc, faulting address, cause.
	EVec     uint64
	EPC      uint64
	BadVAddr uint64
	Cause    uint64

	// Scratch registers and the host-target mailbox.
	K0       uint64
	K1       uint64
	ToHost   uint64
	FromHost uint64

	// Count advances per retired instruction and wraps; Compare arms the
	// timer interrupt; Cycle is the free-running retire counter.
	Count   uint64
	Compare uint64
	Cycle   uint64

	// ID is the hart id. Micro-threads share their parent's id.
	ID uint32

	// UTIdx is the micro-thread index: -1 on a primary hart, the pool
	// index on a micro-thread.
	UTIdx int32

	// Vector configuration state.
	VecBanks      uint32
	VecBanksCount uint32
	VLMax         int
	VL            int
	NXFPRBank     int
	NXPRUse       int
	NFPRUse       int
}

// SetSR writes the status register. Reserved bits are cleared, feature
// bits whose feature is disabled in the processor's Features are forced
// off, the VM-enable and supervisor bits are propagated to the MMU, the
// TLB is flushed, and the effective register width is recomputed.
func (p *Processor) SetSR(val uint32) {
	sr := val & ^StatusZero
	if !p.features.RV64 {
		sr &^= StatusSX | StatusUX
	}
	if !p.features.FPU {
		sr &^= StatusEF
	}
	if !p.features.Compressed {
		sr &^= StatusEC
	}
	if !p.features.Vector {
		sr &^= StatusEV
	}
	p.SR = sr

	p.mmu.SetVMEnabled(sr&StatusVM != 0)
	p.mmu.SetSupervisor(sr&StatusS != 0)
	p.mmu.FlushTLB()

	wide := sr & StatusUX
	if sr&StatusS != 0 {
		wide = sr & StatusSX
	}
	if wide != 0 {
		p.xlen = 64
	} else {
		p.xlen = 32
	}
}

// SetFSR writes the floating-point status register, clearing reserved bits.
func (p *Processor) SetFSR(val uint32) {
	p.FSR = val & ^FSRZero
}

// XLen returns the effective integer register width, 64 or 32, derived
// from the active privilege level's width bit.
func (p *Processor) XLen() int {
	return p.xlen
}

// Reset returns the hart to its architectural reset state: registers and
// control words zeroed, supervisor mode with 64-bit supervisor width,
// vector defaults restored, the run gate cleared, and the micro-thread
// pool released. The micro-thread index survives reset so a pool member
// stays a pool member.
func (p *Processor) Reset() {
	p.run.Store(false)
	p.asyncIP.Store(0)

	utidx := p.UTIdx
	id := p.ID
	p.State = State{
		ID:    id,
		UTIdx: utidx,

		VecBanks:      0xff,
		VecBanksCount: 8,
		VLMax:         32,
		VL:            0,
		NXFPRBank:     256,
		NXPRUse:       32,
		NFPRUse:       32,
	}

	p.SetSR(StatusS | StatusSX)
	p.SetFSR(0)

	p.uts = nil
}
