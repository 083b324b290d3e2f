package emu

// vcfg recomputes the maximum vector length from the configured register
// partition: each bank provides NXFPRBank registers, a micro-thread needs
// one slot fewer than its combined integer and FP register demand, and
// the result is capped by the pool capacity. The current vector length is
// re-clamped so vl <= vlmax always holds.
func (p *Processor) vcfg() {
	if p.NXPRUse+p.NFPRUse < 2 {
		p.VLMax = p.NXFPRBank * int(p.VecBanksCount)
	} else {
		p.VLMax = p.NXFPRBank / (p.NXPRUse + p.NFPRUse - 1) * int(p.VecBanksCount)
	}

	if p.VLMax > MaxUTs {
		p.VLMax = MaxUTs
	}
	if p.VL > p.VLMax {
		p.VL = p.VLMax
	}
}

// SetVL applies a requested vector length, clamped to [0, vlmax], and
// returns the length granted.
func (p *Processor) SetVL(requested int) int {
	if requested < 0 {
		requested = 0
	}
	if requested > p.VLMax {
		requested = p.VLMax
	}
	p.VL = requested
	return p.VL
}

// UT returns micro-thread i, or nil if the pool has not been allocated.
func (p *Processor) UT(i int) *Processor {
	if i < 0 || i >= len(p.uts) {
		return nil
	}
	return p.uts[i]
}

// allocUTs populates the micro-thread pool. Each micro-thread is a full
// processor sharing this hart's id and physical memory through its own
// MMU view, with the FP and vector units enabled. Micro-threads never own
// a pool of their own.
func (p *Processor) allocUTs() {
	if p.UTIdx >= 0 {
		return
	}

	p.uts = make([]*Processor, MaxUTs)
	for i := range p.uts {
		ut := New(p.mmu.NewView(),
			WithFeatures(p.features),
			WithTraceWriter(p.traceW))
		ut.ID = p.ID
		ut.UTIdx = int32(i)
		ut.SetSR(ut.SR | StatusEF)
		ut.SetSR(ut.SR | StatusEV)
		p.uts[i] = ut
	}
}
