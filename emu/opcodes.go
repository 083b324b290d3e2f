package emu

// declaredInsns is the flat instruction registry the dispatch table is
// built from. Masks follow the standard encoding formats: 0x7f matches on
// the major opcode alone, 0x707f adds funct3, 0xfe00707f adds funct7.
// The vector-thread configuration ops live in the custom-0 space.
var declaredInsns = []insnDesc{
	{"lui", 0x00000037, 0x0000007f, insnLUI},
	{"auipc", 0x00000017, 0x0000007f, insnAUIPC},
	{"jal", 0x0000006f, 0x0000007f, insnJAL},
	{"jalr", 0x00000067, 0x0000707f, insnJALR},

	{"beq", 0x00000063, 0x0000707f, insnBEQ},
	{"bne", 0x00001063, 0x0000707f, insnBNE},
	{"blt", 0x00004063, 0x0000707f, insnBLT},
	{"bge", 0x00005063, 0x0000707f, insnBGE},
	{"bltu", 0x00006063, 0x0000707f, insnBLTU},
	{"bgeu", 0x00007063, 0x0000707f, insnBGEU},

	{"lb", 0x00000003, 0x0000707f, insnLB},
	{"lh", 0x00001003, 0x0000707f, insnLH},
	{"lw", 0x00002003, 0x0000707f, insnLW},
	{"ld", 0x00003003, 0x0000707f, insnLD},
	{"lbu", 0x00004003, 0x0000707f, insnLBU},
	{"lhu", 0x00005003, 0x0000707f, insnLHU},
	{"lwu", 0x00006003, 0x0000707f, insnLWU},

	{"sb", 0x00000023, 0x0000707f, insnSB},
	{"sh", 0x00001023, 0x0000707f, insnSH},
	{"sw", 0x00002023, 0x0000707f, insnSW},
	{"sd", 0x00003023, 0x0000707f, insnSD},

	{"addi", 0x00000013, 0x0000707f, insnADDI},
	{"slti", 0x00002013, 0x0000707f, insnSLTI},
	{"sltiu", 0x00003013, 0x0000707f, insnSLTIU},
	{"xori", 0x00004013, 0x0000707f, insnXORI},
	{"ori", 0x00006013, 0x0000707f, insnORI},
	{"andi", 0x00007013, 0x0000707f, insnANDI},
	{"slli", 0x00001013, 0xfc00707f, insnSLLI},
	{"srli", 0x00005013, 0xfc00707f, insnSRLI},
	{"srai", 0x40005013, 0xfc00707f, insnSRAI},

	{"addiw", 0x0000001b, 0x0000707f, insnADDIW},
	{"slliw", 0x0000101b, 0xfe00707f, insnSLLIW},
	{"srliw", 0x0000501b, 0xfe00707f, insnSRLIW},
	{"sraiw", 0x4000501b, 0xfe00707f, insnSRAIW},

	{"add", 0x00000033, 0xfe00707f, insnADD},
	{"sub", 0x40000033, 0xfe00707f, insnSUB},
	{"sll", 0x00001033, 0xfe00707f, insnSLL},
	{"slt", 0x00002033, 0xfe00707f, insnSLT},
	{"sltu", 0x00003033, 0xfe00707f, insnSLTU},
	{"xor", 0x00004033, 0xfe00707f, insnXOR},
	{"srl", 0x00005033, 0xfe00707f, insnSRL},
	{"sra", 0x40005033, 0xfe00707f, insnSRA},
	{"or", 0x00006033, 0xfe00707f, insnOR},
	{"and", 0x00007033, 0xfe00707f, insnAND},

	{"mul", 0x02000033, 0xfe00707f, insnMUL},
	{"mulh", 0x02001033, 0xfe00707f, insnMULH},
	{"mulhsu", 0x02002033, 0xfe00707f, insnMULHSU},
	{"mulhu", 0x02003033, 0xfe00707f, insnMULHU},
	{"div", 0x02004033, 0xfe00707f, insnDIV},
	{"divu", 0x02005033, 0xfe00707f, insnDIVU},
	{"rem", 0x02006033, 0xfe00707f, insnREM},
	{"remu", 0x02007033, 0xfe00707f, insnREMU},

	{"addw", 0x0000003b, 0xfe00707f, insnADDW},
	{"subw", 0x4000003b, 0xfe00707f, insnSUBW},
	{"sllw", 0x0000103b, 0xfe00707f, insnSLLW},
	{"srlw", 0x0000503b, 0xfe00707f, insnSRLW},
	{"sraw", 0x4000503b, 0xfe00707f, insnSRAW},
	{"mulw", 0x0200003b, 0xfe00707f, insnMULW},
	{"divw", 0x0200403b, 0xfe00707f, insnDIVW},
	{"divuw", 0x0200503b, 0xfe00707f, insnDIVUW},
	{"remw", 0x0200603b, 0xfe00707f, insnREMW},
	{"remuw", 0x0200703b, 0xfe00707f, insnREMUW},

	{"fence", 0x0000000f, 0x0000707f, insnFENCE},
	{"fence.i", 0x0000100f, 0x0000707f, insnFENCEI},

	{"scall", 0x00000073, 0xffffffff, insnSCALL},
	{"sbreak", 0x00100073, 0xffffffff, insnSBREAK},
	{"eret", 0x10000073, 0xffffffff, insnERET},
	{"csrrw", 0x00001073, 0x0000707f, insnCSRRW},
	{"csrrs", 0x00002073, 0x0000707f, insnCSRRS},
	{"csrrc", 0x00003073, 0x0000707f, insnCSRRC},
	{"csrrwi", 0x00005073, 0x0000707f, insnCSRRWI},
	{"csrrsi", 0x00006073, 0x0000707f, insnCSRRSI},
	{"csrrci", 0x00007073, 0x0000707f, insnCSRRCI},

	{"vvcfgivl", 0x0000000b, 0x0000707f, insnVVCFGIVL},
	{"vsetvl", 0x0000100b, 0x0000707f, insnVSETVL},
	{"utstop", 0x0000200b, 0xffffffff, insnUTSTOP},
}
