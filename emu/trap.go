package emu

import (
	"errors"
	"fmt"
)

// Trap identifies an architectural fault or interrupt.
type Trap int

// Architectural trap codes.
const (
	TrapInstructionAddressMisaligned Trap = iota
	TrapInstructionAccessFault
	TrapIllegalInstruction
	TrapPrivilegedInstruction
	TrapFPDisabled
	TrapInterrupt
	TrapSyscall
	TrapBreakpoint
	TrapLoadAddressMisaligned
	TrapStoreAddressMisaligned
	TrapLoadAccessFault
	TrapStoreAccessFault
	TrapVectorDisabled
	TrapVectorIllegalInstruction

	// NumTraps bounds the valid trap codes.
	NumTraps
)

var trapNames = [NumTraps]string{
	"instruction address misaligned",
	"instruction access fault",
	"illegal instruction",
	"privileged instruction",
	"fp disabled",
	"interrupt",
	"syscall",
	"breakpoint",
	"load address misaligned",
	"store address misaligned",
	"load access fault",
	"store access fault",
	"vector disabled",
	"vector illegal instruction",
}

// String returns the trap name.
func (t Trap) String() string {
	if t < 0 || t >= NumTraps {
		return fmt.Sprintf("trap#%d", int(t))
	}
	return trapNames[t]
}

// TrapError is the control-flow signal a handler or the interrupt
// controller raises to divert execution into the trap vector.
type TrapError struct {
	Trap Trap
}

// Error implements the error interface.
func (e *TrapError) Error() string {
	return "trap: " + e.Trap.String()
}

// Control-flow signals that end a burst without entering the trap vector.
// errVTStop ends the burst and preserves state; errHalt resets the hart.
var (
	errVTStop = errors.New("vector thread stop")
	errHalt   = errors.New("halt")
)

// takeInterrupt is invoked at burst boundaries. Asynchronously delivered
// interrupt bits are first merged into the cause register, then the
// pending set is computed as IP masked by IM; if any interrupt is both
// pending and enabled, and traps are enabled, an interrupt trap is raised.
func (p *Processor) takeInterrupt() error {
	if ip := p.asyncIP.Swap(0); ip != 0 {
		p.Cause |= uint64(ip&0xff) << CauseIPShift
	}

	interrupts := uint32(p.Cause>>CauseIPShift) & 0xff
	interrupts &= (p.SR & StatusIM) >> StatusIMShift

	if interrupts != 0 && p.SR&StatusET != 0 {
		return &TrapError{TrapInterrupt}
	}
	return nil
}

// takeTrap performs trap entry. A trap code outside [0, NumTraps) is an
// internal error; a trap taken with traps disabled is error mode (the
// trap handler itself trapped) — both are fatal.
func (p *Processor) takeTrap(t Trap, noisy bool) {
	if t < 0 || t >= NumTraps {
		panic(fmt.Sprintf("internal error: bad trap number %d", int(t)))
	}
	if p.SR&StatusET == 0 {
		panic(fmt.Sprintf("error mode on core %d!\ntrap %s, pc 0x%016x",
			p.ID, t, p.PC))
	}
	if noisy {
		fmt.Fprintf(p.traceW, "core %3d: trap %s, pc 0x%016x\n", p.ID, t, p.PC)
	}

	ps := uint32(0)
	if p.SR&StatusS != 0 {
		ps = StatusPS
	}
	p.SetSR((((p.SR &^ StatusET) | StatusS) &^ StatusPS) | ps)

	p.Cause = (p.Cause &^ CauseExcCode) | uint64(t)
	p.EPC = p.PC
	p.PC = p.EVec
	p.BadVAddr = p.mmu.BadVAddr()
}

// DeliverIPI posts an inter-processor interrupt to this hart and wakes it.
// It is safe to call from any goroutine; racing deliveries coalesce into
// a single pending bit, and the effect is visible to the target no later
// than its next instruction boundary.
func (p *Processor) DeliverIPI() {
	p.asyncIP.Or(1 << IRQIPI)
	p.run.Store(true)
}
