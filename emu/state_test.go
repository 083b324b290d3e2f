package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("Architectural State", func() {
	var h *testHart

	BeforeEach(func() {
		h = newTestHart()
	})

	Describe("Reset", func() {
		It("should enter supervisor mode with 64-bit width", func() {
			Expect(h.proc.SR & emu.StatusS).NotTo(BeZero())
			Expect(h.proc.SR & emu.StatusSX).NotTo(BeZero())
			Expect(h.proc.SR & emu.StatusET).To(BeZero())
			Expect(h.proc.XLen()).To(Equal(64))
		})

		It("should restore the vector defaults", func() {
			Expect(h.proc.VecBanks).To(Equal(uint32(0xff)))
			Expect(h.proc.VecBanksCount).To(Equal(uint32(8)))
			Expect(h.proc.VLMax).To(Equal(32))
			Expect(h.proc.VL).To(Equal(0))
			Expect(h.proc.NXFPRBank).To(Equal(256))
			Expect(h.proc.NXPRUse).To(Equal(32))
			Expect(h.proc.NFPRUse).To(Equal(32))
		})

		It("should close the run gate", func() {
			h.proc.SetRun(true)
			h.proc.Reset()
			Expect(h.proc.Running()).To(BeFalse())
		})

		It("should be idempotent", func() {
			h.proc.Reset()
			before := h.proc.State
			h.proc.Reset()
			Expect(h.proc.State).To(Equal(before))
		})

		It("should keep the primary micro-thread index", func() {
			h.proc.Reset()
			Expect(h.proc.UTIdx).To(Equal(int32(-1)))
		})

		It("should release the micro-thread pool", func() {
			h.proc.Init(0, nil, nil)
			Expect(h.proc.UT(0)).NotTo(BeNil())
			h.proc.Reset()
			Expect(h.proc.UT(0)).To(BeNil())
		})
	})

	Describe("SetSR", func() {
		It("should clear reserved bits", func() {
			h.proc.SetSR(0xffffffff)
			Expect(h.proc.SR & emu.StatusZero).To(BeZero())
		})

		It("should be a fixed point when writing back the value read", func() {
			h.proc.SetSR(0xffffffff)
			v := h.proc.SR
			h.proc.SetSR(v)
			Expect(h.proc.SR).To(Equal(v))
		})

		It("should derive the register width from the active privilege", func() {
			h.proc.SetSR(emu.StatusS | emu.StatusSX)
			Expect(h.proc.XLen()).To(Equal(64))

			h.proc.SetSR(emu.StatusS)
			Expect(h.proc.XLen()).To(Equal(32))

			// User mode takes its width from UX.
			h.proc.SetSR(emu.StatusUX)
			Expect(h.proc.XLen()).To(Equal(64))

			h.proc.SetSR(emu.StatusSX)
			Expect(h.proc.XLen()).To(Equal(32))
		})
	})

	Describe("SetFSR", func() {
		It("should clear reserved bits", func() {
			h.proc.SetFSR(0xffffffff)
			Expect(h.proc.FSR & emu.FSRZero).To(BeZero())
			Expect(h.proc.FSR).To(Equal(uint32(0xff)))
		})
	})

	Describe("feature gating", func() {
		It("should force disabled feature bits to zero on every write", func() {
			gated := newTestHart(emu.WithFeatures(emu.Features{RV64: true}))

			gated.proc.SetSR(gated.proc.SR |
				emu.StatusEF | emu.StatusEC | emu.StatusEV)

			Expect(gated.proc.SR & emu.StatusEF).To(BeZero())
			Expect(gated.proc.SR & emu.StatusEC).To(BeZero())
			Expect(gated.proc.SR & emu.StatusEV).To(BeZero())
		})

		It("should force the width bits to zero without 64-bit support", func() {
			gated := newTestHart(emu.WithFeatures(emu.Features{FPU: true}))

			gated.proc.SetSR(emu.StatusS | emu.StatusSX | emu.StatusUX)

			Expect(gated.proc.SR & emu.StatusSX).To(BeZero())
			Expect(gated.proc.SR & emu.StatusUX).To(BeZero())
			Expect(gated.proc.XLen()).To(Equal(32))
		})
	})
})
