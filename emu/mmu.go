package emu

import (
	"github.com/sarchlab/rvsim/cache"
	"github.com/sarchlab/rvsim/insts"
)

// MMU is the memory-management unit a processor fetches and accesses data
// through. Implementations translate addresses, raise architectural traps
// (*TrapError) on faults, and remember the most recent faulting address.
type MMU interface {
	// LoadInsn fetches the instruction word at pc. When rvcEnabled is
	// set the implementation accepts halfword-aligned fetch and expands
	// compressed encodings to full words.
	LoadInsn(pc uint64, rvcEnabled bool) (insts.Insn, error)

	// Load reads size bytes (1, 2, 4, or 8) at addr, little-endian.
	Load(addr uint64, size int) (uint64, error)

	// Store writes the low size bytes of v at addr, little-endian.
	Store(addr uint64, size int, v uint64) error

	// SetVMEnabled toggles virtual-memory translation.
	SetVMEnabled(on bool)

	// SetSupervisor informs the MMU of the current privilege level.
	SetSupervisor(on bool)

	// FlushTLB discards cached translations.
	FlushTLB()

	// BadVAddr reports the address of the most recent fault.
	BadVAddr() uint64

	// NewView returns an independent MMU over the same physical memory.
	// Micro-threads use views so their status registers propagate without
	// disturbing the parent's translation state.
	NewView() MMU

	// Statistics-sink attachment. A nil sink detaches.
	SetICacheSim(s *cache.Sim)
	SetITLBSim(s *cache.Sim)
	SetDCacheSim(s *cache.Sim)
	SetDTLBSim(s *cache.Sim)
}
