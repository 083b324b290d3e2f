package emu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/sarchlab/rvsim/cache"
)

// Processor models one hart: the architectural state block, the
// interrupt/trap controller, the execution engine, and (on a primary
// hart) the vector micro-thread pool. A Processor is stepped by a single
// goroutine; the only cross-goroutine entry point is DeliverIPI.
type Processor struct {
	State

	mmu      MMU
	features Features
	xlen     int

	// uts is the micro-thread pool, allocated by Init on primary harts.
	uts []*Processor

	// run gates Step; asyncIP accumulates interrupt bits posted from
	// other goroutines until the next instruction boundary.
	run     atomic.Bool
	asyncIP atomic.Uint32

	// haltValue is the last nonzero tohost write. It survives reset so
	// the harness can read the exit value after a halt.
	haltValue uint64

	ipiSender func(target uint64)

	traceW io.Writer
	statsW io.Writer

	icsim   *cache.Sim
	itlbsim *cache.Sim
	dcsim   *cache.Sim
	dtlbsim *cache.Sim
}

// Option configures a Processor.
type Option func(*Processor)

// WithFeatures selects the architecture extensions the hart carries.
func WithFeatures(f Features) Option {
	return func(p *Processor) {
		p.features = f
	}
}

// WithTraceWriter sets the writer noisy-mode traces go to.
func WithTraceWriter(w io.Writer) Option {
	return func(p *Processor) {
		p.traceW = w
	}
}

// WithStatsWriter sets the writer cache statistics are printed to on Close.
func WithStatsWriter(w io.Writer) Option {
	return func(p *Processor) {
		p.statsW = w
	}
}

// WithIPISender routes send-IPI control-register writes to the harness.
func WithIPISender(send func(target uint64)) Option {
	return func(p *Processor) {
		p.ipiSender = send
	}
}

// New creates a processor bound to the given MMU and resets it. The
// process-wide dispatch table is built on first construction; callers
// must finish constructing processors before stepping them in parallel.
func New(m MMU, opts ...Option) *Processor {
	buildDispatchTable()

	p := &Processor{
		mmu:      m,
		features: DefaultFeatures(),
		traceW:   os.Stdout,
		statsW:   os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.UTIdx = -1
	p.Reset()
	return p
}

// Init assigns the hart id, allocates the micro-thread pool, and
// optionally attaches instruction/data cache statistics models. TLB
// statistics models accompany the caches automatically.
func (p *Processor) Init(id uint32, icacheCfg, dcacheCfg *cache.Config) {
	p.ID = id
	p.allocUTs()

	if icacheCfg != nil {
		p.icsim = cache.New(*icacheCfg)
		p.mmu.SetICacheSim(p.icsim)
		p.itlbsim = cache.New(cache.TLBConfig("ITLB"))
		p.mmu.SetITLBSim(p.itlbsim)
	}
	if dcacheCfg != nil {
		p.dcsim = cache.New(*dcacheCfg)
		p.mmu.SetDCacheSim(p.dcsim)
		p.dtlbsim = cache.New(cache.TLBConfig("DTLB"))
		p.mmu.SetDTLBSim(p.dtlbsim)
	}
}

// MMU returns the memory-management unit the processor fetches through.
func (p *Processor) MMU() MMU {
	return p.mmu
}

// Running reports whether the run gate is open.
func (p *Processor) Running() bool {
	return p.run.Load()
}

// SetRun opens or closes the run gate. The harness uses this to start a
// hart; DeliverIPI opens it as a side effect.
func (p *Processor) SetRun(on bool) {
	p.run.Store(on)
}

// HaltValue returns the value of the last halting tohost write, or zero
// if the hart has not halted.
func (p *Processor) HaltValue() uint64 {
	return p.haltValue
}

// Close prints and releases the statistics sinks in fixed order: icache,
// ITLB, dcache, DTLB.
func (p *Processor) Close() {
	for _, s := range []*cache.Sim{p.icsim, p.itlbsim, p.dcsim, p.dtlbsim} {
		if s != nil {
			s.PrintStats(p.statsW)
		}
	}
	p.icsim, p.itlbsim, p.dcsim, p.dtlbsim = nil, nil, nil, nil
}

// Step attempts to retire up to n instructions, delivering pending
// interrupts at burst boundaries and unwinding handler signals at the
// loop head. Cycle and count advance once per burst by the number of
// instruction boundaries crossed; an instruction that raised a signal is
// accounted as retired. After the burst, the timer interrupt fires if
// count crossed compare, including across 64-bit wraparound.
func (p *Processor) Step(n uint64, noisy bool) {
	if !p.run.Load() {
		return
	}

	var i uint64
burst:
	for {
		err := p.runBurst(&i, n, noisy)
		if err == nil {
			break
		}

		var te *TrapError
		switch {
		case errors.As(err, &te):
			i++
			p.takeTrap(te.Trap, noisy)
		case errors.Is(err, errVTStop):
			i++
			break burst
		case errors.Is(err, errHalt):
			p.Reset()
			return
		default:
			panic(fmt.Sprintf("core %d: unexpected execution error: %v", p.ID, err))
		}
	}

	p.Cycle += i

	old := p.Count
	p.Count += i
	// Modular crossing test: the timer fires iff compare lies in the
	// half-open interval (old, old+i], which also covers the wrap past
	// the 64-bit maximum.
	if delta := p.Compare - old; delta != 0 && delta <= i {
		p.Cause |= 1 << (IRQTimer + CauseIPShift)
	}
}

// runBurst retires instructions until the target count or a signal. The
// quiet path is unrolled by four; the retired-instruction counter is
// maintained per instruction so signals never lose boundaries.
func (p *Processor) runBurst(i *uint64, n uint64, noisy bool) error {
	if err := p.takeInterrupt(); err != nil {
		return err
	}

	if noisy {
		for ; *i < n; *i++ {
			if err := p.execute(true); err != nil {
				return err
			}
		}
		return nil
	}

	for n > 3 && *i < n-3 {
		for k := 0; k < 4; k++ {
			if err := p.execute(false); err != nil {
				return err
			}
			*i++
		}
	}
	for ; *i < n; *i++ {
		if err := p.execute(false); err != nil {
			return err
		}
	}
	return nil
}

// execute retires one instruction: fetch through the MMU, dispatch on the
// hashed low bits of the encoding, commit the handler's next pc, and
// scrub the zero register.
func (p *Processor) execute(noisy bool) error {
	insn, err := p.mmu.LoadInsn(p.PC, p.SR&StatusEC != 0)
	if err != nil {
		return err
	}
	if noisy {
		p.disasm(insn)
	}

	next, err := dispatchTable[insn.Bits()%DispatchTableSize](p, insn, p.PC)
	if err != nil {
		return err
	}
	p.PC = next
	p.XPR[0] = 0
	return nil
}
