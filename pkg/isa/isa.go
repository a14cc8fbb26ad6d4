// Package isa holds the canonical opcode table of the 8-bit target.
package isa

import (
	"sort"
	"strings"
)

// Form is the operand shape of an opcode.
type Form int

const (
	FormNullary Form = iota
	FormUnaryReg
	FormUnaryAddr
	FormBinaryRegIm
	FormBinaryRegReg
	FormBinaryRegAddr
	FormBinaryRegDeref
)

func (f Form) String() string {
	switch f {
	case FormNullary:
		return "nullary"
	case FormUnaryReg:
		return "reg"
	case FormUnaryAddr:
		return "addr"
	case FormBinaryRegIm:
		return "reg, imm"
	case FormBinaryRegReg:
		return "reg, reg"
	case FormBinaryRegAddr:
		return "reg, addr"
	case FormBinaryRegDeref:
		return "reg, [reg:reg]"
	default:
		return "unknown"
	}
}

const (
	OpNOP  byte = 0x00
	OpHLT  byte = 0x01
	OpRET  byte = 0x02
	OpRETI byte = 0x03
	OpEI   byte = 0x04
	OpDI   byte = 0x05

	OpPUSH byte = 0x08
	OpPOP  byte = 0x09
	OpINC  byte = 0x0A
	OpDEC  byte = 0x0B
	OpNOT  byte = 0x0C
	OpSHL  byte = 0x0D
	OpSHR  byte = 0x0E

	OpADD byte = 0x10
	OpSUB byte = 0x11
	OpAND byte = 0x12
	OpOR  byte = 0x13
	OpXOR byte = 0x14
	OpMOV byte = 0x15
	OpCMP byte = 0x16
	OpADC byte = 0x17
	OpSBC byte = 0x18

	OpJMP  byte = 0x20
	OpJZ   byte = 0x21
	OpJNZ  byte = 0x22
	OpJC   byte = 0x23
	OpJNC  byte = 0x24
	OpJN   byte = 0x25
	OpCALL byte = 0x26

	OpLDI  byte = 0x30
	OpADDI byte = 0x31
	OpSUBI byte = 0x32
	OpANDI byte = 0x33
	OpORI  byte = 0x34
	OpXORI byte = 0x35
	OpCMPI byte = 0x36

	OpLD byte = 0x40
	OpST byte = 0x41

	OpLDR byte = 0x48
	OpSTR byte = 0x49
)

// NumRegisters is the size of the register file; register operands are 4 bits.
const NumRegisters = 16

// AddressSpace is the number of addressable bytes.
const AddressSpace = 0x10000

// Info describes one opcode.
type Info struct {
	Mnemonic string
	Opcode   byte
	Form     Form
}

var table = []Info{
	{"nop", OpNOP, FormNullary},
	{"hlt", OpHLT, FormNullary},
	{"ret", OpRET, FormNullary},
	{"reti", OpRETI, FormNullary},
	{"ei", OpEI, FormNullary},
	{"di", OpDI, FormNullary},

	{"push", OpPUSH, FormUnaryReg},
	{"pop", OpPOP, FormUnaryReg},
	{"inc", OpINC, FormUnaryReg},
	{"dec", OpDEC, FormUnaryReg},
	{"not", OpNOT, FormUnaryReg},
	{"shl", OpSHL, FormUnaryReg},
	{"shr", OpSHR, FormUnaryReg},

	{"add", OpADD, FormBinaryRegReg},
	{"sub", OpSUB, FormBinaryRegReg},
	{"and", OpAND, FormBinaryRegReg},
	{"or", OpOR, FormBinaryRegReg},
	{"xor", OpXOR, FormBinaryRegReg},
	{"mov", OpMOV, FormBinaryRegReg},
	{"cmp", OpCMP, FormBinaryRegReg},
	{"adc", OpADC, FormBinaryRegReg},
	{"sbc", OpSBC, FormBinaryRegReg},

	{"jmp", OpJMP, FormUnaryAddr},
	{"jz", OpJZ, FormUnaryAddr},
	{"jnz", OpJNZ, FormUnaryAddr},
	{"jc", OpJC, FormUnaryAddr},
	{"jnc", OpJNC, FormUnaryAddr},
	{"jn", OpJN, FormUnaryAddr},
	{"call", OpCALL, FormUnaryAddr},

	{"ldi", OpLDI, FormBinaryRegIm},
	{"addi", OpADDI, FormBinaryRegIm},
	{"subi", OpSUBI, FormBinaryRegIm},
	{"andi", OpANDI, FormBinaryRegIm},
	{"ori", OpORI, FormBinaryRegIm},
	{"xori", OpXORI, FormBinaryRegIm},
	{"cmpi", OpCMPI, FormBinaryRegIm},

	{"ld", OpLD, FormBinaryRegAddr},
	{"st", OpST, FormBinaryRegAddr},

	{"ldr", OpLDR, FormBinaryRegDeref},
	{"str", OpSTR, FormBinaryRegDeref},
}

var (
	byMnemonic = make(map[string]Info, len(table))
	byOpcode   = make(map[byte]Info, len(table))
)

func init() {
	for _, info := range table {
		byMnemonic[info.Mnemonic] = info
		byOpcode[info.Opcode] = info
	}
}

// Lookup finds an opcode by mnemonic, ignoring case.
func Lookup(mnemonic string) (Info, bool) {
	info, ok := byMnemonic[strings.ToLower(mnemonic)]
	return info, ok
}

// Mnemonic returns the canonical spelling of an opcode.
func Mnemonic(opcode byte) (string, bool) {
	info, ok := byOpcode[opcode]
	return info.Mnemonic, ok
}

// ByOpcode returns the full table entry for an opcode.
func ByOpcode(opcode byte) (Info, bool) {
	info, ok := byOpcode[opcode]
	return info, ok
}

// Mnemonics returns every canonical mnemonic, sorted.
func Mnemonics() []string {
	names := make([]string, 0, len(table))
	for _, info := range table {
		names = append(names, info.Mnemonic)
	}
	sort.Strings(names)
	return names
}
