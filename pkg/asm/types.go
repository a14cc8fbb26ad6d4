package asm

// Register is a 4-bit register index. Values above 15 are rejected by the
// parser and never reach the emitter.
type Register uint8

// Selector picks which part of a 16-bit address lands in the output.
type Selector int

const (
	SelBoth Selector = iota
	SelHigh
	SelLow
)

func (s Selector) String() string {
	switch s {
	case SelHigh:
		return "hi"
	case SelLow:
		return "lo"
	default:
		return "word"
	}
}

// Address is a full-word operand: either an immediate or a label reference.
type Address struct {
	Label string
	Imm   uint16
}

// Imm makes an immediate address.
func Imm(n uint16) Address { return Address{Imm: n} }

// LabelRef makes an address that refers to a label.
func LabelRef(name string) Address { return Address{Label: name} }

// IsLabel reports whether the address still has to be resolved.
func (a Address) IsLabel() bool { return a.Label != "" }

// Value is a one-byte operand: a raw byte, or the high or low byte of a label.
type Value struct {
	Imm   byte
	Label string
	Sel   Selector
}

// IsLabel reports whether the value still has to be resolved.
func (v Value) IsLabel() bool { return v.Label != "" }

// DataItem is one element of a db list.
type DataItem struct {
	Byte   byte
	Text   string
	IsText bool
}

// Bytes returns the raw bytes the item occupies in the image.
func (d DataItem) Bytes() []byte {
	if d.IsText {
		return []byte(d.Text)
	}
	return []byte{d.Byte}
}

// Instruction is one of the instruction types below.
type Instruction interface {
	isInstruction()
}

type (
	Db struct {
		Items []DataItem
	}
	Ds struct {
		Size uint16
	}
	Org struct {
		Addr uint16
	}
	Include struct {
		Path string
	}
	Nullary struct {
		Op byte
	}
	UnaryReg struct {
		Op  byte
		Reg Register
	}
	UnaryAddr struct {
		Op   byte
		Addr Address
	}
	BinaryRegIm struct {
		Op    byte
		Reg   Register
		Value Value
	}
	BinaryRegReg struct {
		Op     byte
		R0, R1 Register
	}
	BinaryRegAddr struct {
		Op   byte
		Reg  Register
		Addr Address
	}
	// BinaryRegDeref addresses memory through a register pair [High:Low].
	BinaryRegDeref struct {
		Op        byte
		Reg       Register
		High, Low Register
	}
)

func (Db) isInstruction()             {}
func (Ds) isInstruction()             {}
func (Org) isInstruction()            {}
func (Include) isInstruction()        {}
func (Nullary) isInstruction()        {}
func (UnaryReg) isInstruction()       {}
func (UnaryAddr) isInstruction()      {}
func (BinaryRegIm) isInstruction()    {}
func (BinaryRegReg) isInstruction()   {}
func (BinaryRegAddr) isInstruction()  {}
func (BinaryRegDeref) isInstruction() {}

// Opcode returns the opcode carried by ins. Pseudo-ops have none.
func Opcode(ins Instruction) (byte, bool) {
	switch in := ins.(type) {
	case Nullary:
		return in.Op, true
	case UnaryReg:
		return in.Op, true
	case UnaryAddr:
		return in.Op, true
	case BinaryRegIm:
		return in.Op, true
	case BinaryRegReg:
		return in.Op, true
	case BinaryRegAddr:
		return in.Op, true
	case BinaryRegDeref:
		return in.Op, true
	default:
		return 0, false
	}
}

// Line is the parsed form of one source line. Both fields may be empty.
type Line struct {
	Label       string
	Instruction Instruction
}
