package mem

import (
	"github.com/sarchlab/rvsim/cache"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// VMBase is the virtual base address of the translation window. With
// virtual memory enabled, addresses in [VMBase, VMBase+memsize) map
// linearly onto physical memory; everything else faults. With virtual
// memory disabled, addresses are physical.
const VMBase uint64 = 0x80000000

// MMU implements emu.MMU over a shared physical memory. Each hart and
// micro-thread owns its own MMU, so translation state never crosses
// harts; the backing Memory is the only shared structure.
type MMU struct {
	mem *Memory

	vmEnabled  bool
	supervisor bool
	badvaddr   uint64

	icsim   *cache.Sim
	itlbsim *cache.Sim
	dcsim   *cache.Sim
	dtlbsim *cache.Sim
}

// NewMMU creates an MMU over the given physical memory.
func NewMMU(m *Memory) *MMU {
	return &MMU{mem: m}
}

// NewView returns an independent MMU over the same physical memory.
func (m *MMU) NewView() emu.MMU {
	return NewMMU(m.mem)
}

// Memory returns the backing physical memory.
func (m *MMU) Memory() *Memory {
	return m.mem
}

// translate maps a virtual address to a physical one. The trap argument
// selects which access fault to raise; the faulting address is recorded
// for BadVAddr either way.
func (m *MMU) translate(addr uint64, size int, fault emu.Trap) (uint64, error) {
	phys := addr
	if m.vmEnabled {
		if addr < VMBase || addr-VMBase >= m.mem.Size() {
			m.badvaddr = addr
			return 0, &emu.TrapError{Trap: fault}
		}
		phys = addr - VMBase
	}
	if phys+uint64(size) > m.mem.Size() || phys+uint64(size) < phys {
		m.badvaddr = addr
		return 0, &emu.TrapError{Trap: fault}
	}
	return phys, nil
}

// LoadInsn fetches one instruction word at pc. Fetch requires word
// alignment, relaxed to halfword when the compressed encoding is
// enabled. Compressed encodings are not expanded: the 32-bit word at pc
// is returned as read.
func (m *MMU) LoadInsn(pc uint64, rvcEnabled bool) (insts.Insn, error) {
	align := uint64(insts.InsnBytes)
	if rvcEnabled {
		align = 2
	}
	if pc%align != 0 {
		m.badvaddr = pc
		return 0, &emu.TrapError{Trap: emu.TrapInstructionAddressMisaligned}
	}

	phys, err := m.translate(pc, insts.InsnBytes, emu.TrapInstructionAccessFault)
	if err != nil {
		return 0, err
	}

	if m.itlbsim != nil {
		m.itlbsim.Access(pc, false)
	}
	if m.icsim != nil {
		m.icsim.Access(phys, false)
	}

	return insts.Insn(m.mem.Read(phys, insts.InsnBytes)), nil
}

// Load reads size bytes at addr, little-endian. Misaligned and
// out-of-window accesses raise the load traps.
func (m *MMU) Load(addr uint64, size int) (uint64, error) {
	if addr%uint64(size) != 0 {
		m.badvaddr = addr
		return 0, &emu.TrapError{Trap: emu.TrapLoadAddressMisaligned}
	}
	phys, err := m.translate(addr, size, emu.TrapLoadAccessFault)
	if err != nil {
		return 0, err
	}

	if m.dtlbsim != nil {
		m.dtlbsim.Access(addr, false)
	}
	if m.dcsim != nil {
		m.dcsim.Access(phys, false)
	}

	return m.mem.Read(phys, size), nil
}

// Store writes the low size bytes of v at addr, little-endian.
func (m *MMU) Store(addr uint64, size int, v uint64) error {
	if addr%uint64(size) != 0 {
		m.badvaddr = addr
		return &emu.TrapError{Trap: emu.TrapStoreAddressMisaligned}
	}
	phys, err := m.translate(addr, size, emu.TrapStoreAccessFault)
	if err != nil {
		return err
	}

	if m.dtlbsim != nil {
		m.dtlbsim.Access(addr, true)
	}
	if m.dcsim != nil {
		m.dcsim.Access(phys, true)
	}

	m.mem.Write(phys, size, v)
	return nil
}

// SetVMEnabled toggles the translation window.
func (m *MMU) SetVMEnabled(on bool) {
	m.vmEnabled = on
}

// SetSupervisor records the current privilege level.
func (m *MMU) SetSupervisor(on bool) {
	m.supervisor = on
}

// FlushTLB discards cached translations: the TLB statistics models drop
// their entries, keeping their counters.
func (m *MMU) FlushTLB() {
	if m.itlbsim != nil {
		m.itlbsim.Flush()
	}
	if m.dtlbsim != nil {
		m.dtlbsim.Flush()
	}
}

// BadVAddr reports the address of the most recent fault.
func (m *MMU) BadVAddr() uint64 {
	return m.badvaddr
}

// SetICacheSim attaches the instruction-cache statistics model.
func (m *MMU) SetICacheSim(s *cache.Sim) { m.icsim = s }

// SetITLBSim attaches the instruction-TLB statistics model.
func (m *MMU) SetITLBSim(s *cache.Sim) { m.itlbsim = s }

// SetDCacheSim attaches the data-cache statistics model.
func (m *MMU) SetDCacheSim(s *cache.Sim) { m.dcsim = s }

// SetDTLBSim attaches the data-TLB statistics model.
func (m *MMU) SetDTLBSim(s *cache.Sim) { m.dtlbsim = s }
