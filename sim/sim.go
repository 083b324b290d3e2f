// Package sim provides the outer harness: it owns the shared physical
// memory, clocks harts in slices, and routes inter-processor interrupts.
package sim

import (
	"io"
	"os"

	"github.com/sarchlab/rvsim/cache"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/mem"
)

// Simulator aggregates the physical memory and the harts running over it.
type Simulator struct {
	memory   *mem.Memory
	features emu.Features
	harts    []*emu.Processor

	traceW io.Writer
	statsW io.Writer
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithFeatures selects the architecture extensions every hart carries.
func WithFeatures(f emu.Features) Option {
	return func(s *Simulator) {
		s.features = f
	}
}

// WithTraceWriter sets the writer hart traces go to.
func WithTraceWriter(w io.Writer) Option {
	return func(s *Simulator) {
		s.traceW = w
	}
}

// WithStatsWriter sets the writer cache statistics go to.
func WithStatsWriter(w io.Writer) Option {
	return func(s *Simulator) {
		s.statsW = w
	}
}

// New creates a simulator with a physical memory of memSize bytes.
func New(memSize int, opts ...Option) *Simulator {
	s := &Simulator{
		memory:   mem.NewMemory(memSize),
		features: emu.DefaultFeatures(),
		traceW:   os.Stdout,
		statsW:   os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Memory returns the shared physical memory.
func (s *Simulator) Memory() *mem.Memory {
	return s.memory
}

// AddHart creates a hart over the shared memory, initializes it with the
// next id and the given cache statistics geometries (nil disables a
// model), and returns it. IPIs the hart sends are routed by the
// simulator.
func (s *Simulator) AddHart(icacheCfg, dcacheCfg *cache.Config) *emu.Processor {
	p := emu.New(mem.NewMMU(s.memory),
		emu.WithFeatures(s.features),
		emu.WithTraceWriter(s.traceW),
		emu.WithStatsWriter(s.statsW),
		emu.WithIPISender(s.SendIPI))
	p.Init(uint32(len(s.harts)), icacheCfg, dcacheCfg)

	s.harts = append(s.harts, p)
	return p
}

// Hart returns hart i, or nil if it does not exist.
func (s *Simulator) Hart(i int) *emu.Processor {
	if i < 0 || i >= len(s.harts) {
		return nil
	}
	return s.harts[i]
}

// NumHarts returns the number of harts.
func (s *Simulator) NumHarts() int {
	return len(s.harts)
}

// SendIPI posts an inter-processor interrupt to the target hart.
// Unknown targets are ignored.
func (s *Simulator) SendIPI(target uint64) {
	if target >= uint64(len(s.harts)) {
		return
	}
	s.harts[target].DeliverIPI()
}

// Run steps every running hart round-robin in slices of the given size
// until none is running, and returns the halt value of the lowest-numbered
// hart that halted with a nonzero tohost write.
func (s *Simulator) Run(slice uint64, noisy bool) uint64 {
	for {
		anyRunning := false
		for _, p := range s.harts {
			if !p.Running() {
				continue
			}
			anyRunning = true
			p.Step(slice, noisy)
		}
		if !anyRunning {
			break
		}
	}

	for _, p := range s.harts {
		if v := p.HaltValue(); v != 0 {
			return v
		}
	}
	return 0
}

// Close releases every hart's statistics sinks.
func (s *Simulator) Close() {
	for _, p := range s.harts {
		p.Close()
	}
}
