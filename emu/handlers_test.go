package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
)

// runOne executes a single instruction with the given pre-set registers
// and returns the hart for inspection.
func runOne(word uint32, setup func(p *emu.Processor)) *testHart {
	h := newTestHart()
	if setup != nil {
		setup(h.proc)
	}
	h.writeProgram(0, word)
	h.start(0)
	h.proc.Step(1, false)
	return h
}

var _ = Describe("Instruction Semantics", func() {
	Describe("upper-immediate and jumps", func() {
		It("should build upper immediates with lui and auipc", func() {
			h := runOne(encodeLUI(1, 0x12345), nil)
			Expect(h.proc.XPR[1]).To(Equal(uint64(0x12345000)))

			h = runOne(encodeU(0x17, 1, 0x1), nil) // auipc x1, 0x1
			Expect(h.proc.XPR[1]).To(Equal(uint64(0x1000)))
		})

		It("should link and jump with jal", func() {
			h := runOne(encodeJ(0x6f, 1, 0x20), nil)
			Expect(h.proc.XPR[1]).To(Equal(uint64(4)))
			Expect(h.proc.PC).To(Equal(uint64(0x20)))
		})

		It("should clear the low bit of a jalr target", func() {
			h := runOne(encodeI(0x67, 1, 0, 2, 1), func(p *emu.Processor) {
				p.XPR[2] = 0x100
			})
			Expect(h.proc.PC).To(Equal(uint64(0x100)))
			Expect(h.proc.XPR[1]).To(Equal(uint64(4)))
		})
	})

	Describe("comparisons", func() {
		It("should compare signed with slt and unsigned with sltu", func() {
			h := runOne(encodeR(0x33, 3, 2, 1, 2, 0), func(p *emu.Processor) {
				p.XPR[1] = ^uint64(0) // -1 signed, max unsigned
				p.XPR[2] = 1
			})
			Expect(h.proc.XPR[3]).To(Equal(uint64(1)))

			h = runOne(encodeR(0x33, 3, 3, 1, 2, 0), func(p *emu.Processor) {
				p.XPR[1] = ^uint64(0)
				p.XPR[2] = 1
			})
			Expect(h.proc.XPR[3]).To(Equal(uint64(0)))
		})
	})

	Describe("shifts", func() {
		It("should shift by immediate over the full 64-bit range", func() {
			h := runOne(encodeI(0x13, 2, 1, 1, 63), func(p *emu.Processor) {
				p.XPR[1] = 1
			})
			Expect(h.proc.XPR[2]).To(Equal(uint64(1) << 63))
		})

		It("should shift arithmetically with srai", func() {
			// srai x2, x1, 4: the immediate carries 0x400 | shamt.
			var negThirtyTwo int64 = -32
			h := runOne(encodeI(0x13, 2, 5, 1, 0x404), func(p *emu.Processor) {
				p.XPR[1] = uint64(negThirtyTwo)
			})
			var negTwo int64 = -2
			Expect(h.proc.XPR[2]).To(Equal(uint64(negTwo)))
		})
	})

	Describe("32-bit word operations", func() {
		It("should sign-extend addiw results", func() {
			h := runOne(encodeI(0x1b, 2, 0, 1, 0), func(p *emu.Processor) {
				p.XPR[1] = 0x7fffffff + 1
			})
			Expect(h.proc.XPR[2]).To(Equal(uint64(0xffffffff80000000)))
		})

		It("should wrap and sign-extend addw", func() {
			h := runOne(encodeR(0x3b, 3, 0, 1, 2, 0), func(p *emu.Processor) {
				p.XPR[1] = 0xffffffff
				p.XPR[2] = 1
			})
			Expect(h.proc.XPR[3]).To(BeZero())
		})
	})

	Describe("multiply and divide", func() {
		It("should compute the high product with mulhu", func() {
			h := runOne(encodeR(0x33, 3, 3, 1, 2, 1), func(p *emu.Processor) {
				p.XPR[1] = 1 << 63
				p.XPR[2] = 4
			})
			Expect(h.proc.XPR[3]).To(Equal(uint64(2)))
		})

		It("should compute the signed high product with mulh", func() {
			h := runOne(encodeR(0x33, 3, 1, 1, 2, 1), func(p *emu.Processor) {
				p.XPR[1] = ^uint64(0) // -1
				p.XPR[2] = ^uint64(0) // -1
			})
			Expect(h.proc.XPR[3]).To(BeZero()) // (-1)*(-1) = 1, high = 0
		})

		It("should follow the division-by-zero convention", func() {
			h := runOne(encodeR(0x33, 3, 4, 1, 2, 1), func(p *emu.Processor) {
				p.XPR[1] = 10
				p.XPR[2] = 0
			})
			Expect(h.proc.XPR[3]).To(Equal(^uint64(0)))

			h = runOne(encodeR(0x33, 3, 6, 1, 2, 1), func(p *emu.Processor) {
				p.XPR[1] = 10
				p.XPR[2] = 0
			})
			Expect(h.proc.XPR[3]).To(Equal(uint64(10))) // rem
		})

		It("should handle signed-overflow division", func() {
			h := runOne(encodeR(0x33, 3, 4, 1, 2, 1), func(p *emu.Processor) {
				p.XPR[1] = 1 << 63 // MinInt64
				p.XPR[2] = ^uint64(0)
			})
			Expect(h.proc.XPR[3]).To(Equal(uint64(1) << 63))
		})
	})

	Describe("csr access", func() {
		It("should swap a control register with csrrw", func() {
			h := runOne(encodeCSRRW(2, emu.PCREVec, 1), func(p *emu.Processor) {
				p.XPR[1] = 0x4000
				p.EVec = 0x1234
			})
			Expect(h.proc.EVec).To(Equal(uint64(0x4000)))
			Expect(h.proc.XPR[2]).To(Equal(uint64(0x1234)))
		})

		It("should trap csr access from user mode", func() {
			h := runOne(encodeCSRRW(2, emu.PCREVec, 1), func(p *emu.Processor) {
				p.EVec = 0x1000
				// Drop to user mode with traps enabled.
				p.SetSR(emu.StatusUX | emu.StatusET)
			})
			Expect(h.proc.PC).To(Equal(uint64(0x1000)))
			Expect(h.proc.Cause & emu.CauseExcCode).
				To(Equal(uint64(emu.TrapPrivilegedInstruction)))
		})

		It("should trap on an unknown csr number", func() {
			h := runOne(encodeCSRRW(2, 999, 1), func(p *emu.Processor) {
				p.SetSR(p.SR | emu.StatusET)
				p.EVec = 0x1000
			})
			Expect(h.proc.Cause & emu.CauseExcCode).
				To(Equal(uint64(emu.TrapIllegalInstruction)))
		})
	})
})
