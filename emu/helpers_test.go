package emu_test

import (
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/mem"
)

// Instruction encoders for building test programs.

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)&0xfff<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xfff
	return u>>5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | u&0x1f<<7 | opcode
}

func encodeB(opcode, funct3, rs1, rs2 uint32, offset int32) uint32 {
	u := uint32(offset)
	return u>>12&0x1<<31 | u>>5&0x3f<<25 | rs2<<20 | rs1<<15 |
		funct3<<12 | u>>1&0xf<<8 | u>>11&0x1<<7 | opcode
}

func encodeU(opcode, rd, imm20 uint32) uint32 {
	return imm20<<12 | rd<<7 | opcode
}

func encodeJ(opcode, rd uint32, offset int32) uint32 {
	u := uint32(offset)
	return u>>20&0x1<<31 | u>>1&0x3ff<<21 | u>>11&0x1<<20 |
		u>>12&0xff<<12 | rd<<7 | opcode
}

func encodeADDI(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(0x13, rd, 0, rs1, imm)
}

func encodeNOP() uint32 {
	return encodeADDI(0, 0, 0)
}

func encodeLUI(rd, imm20 uint32) uint32 {
	return encodeU(0x37, rd, imm20)
}

func encodeCSRRW(rd, csr, rs1 uint32) uint32 {
	return encodeI(0x73, rd, 1, rs1, int32(csr))
}

func encodeCSRRS(rd, csr, rs1 uint32) uint32 {
	return encodeI(0x73, rd, 2, rs1, int32(csr))
}

func encodeSCALL() uint32 {
	return 0x00000073
}

func encodeERET() uint32 {
	return 0x10000073
}

func encodeVVCFGIVL(rd, rs1, nxpr, nfpr uint32) uint32 {
	return encodeI(0x0b, rd, 0, rs1, int32(nfpr<<6|nxpr))
}

func encodeVSETVL(rd, rs1 uint32) uint32 {
	return encodeI(0x0b, rd, 1, rs1, 0)
}

func encodeUTSTOP() uint32 {
	return 0x0000200b
}

// testHart bundles a processor with its memory for direct program
// placement.
type testHart struct {
	proc   *emu.Processor
	memory *mem.Memory
}

func newTestHart(opts ...emu.Option) *testHart {
	memory := mem.NewMemory(1 << 20)
	return &testHart{
		proc:   emu.New(mem.NewMMU(memory), opts...),
		memory: memory,
	}
}

// writeProgram places instruction words at consecutive addresses.
func (h *testHart) writeProgram(addr uint64, words ...uint32) {
	for i, w := range words {
		h.memory.Write(addr+uint64(i)*4, 4, uint64(w))
	}
}

// start points the hart at addr and opens the run gate.
func (h *testHart) start(addr uint64) {
	h.proc.PC = addr
	h.proc.SetRun(true)
}
