package asm

import (
	"fmt"

	"byteasm/pkg/isa"
)

// emitter owns the output image and the write cursor. Label operands are
// written as zero placeholders and recorded as relocations.
type emitter struct {
	image  []byte
	cursor int
	labels *labelTable
	relocs []relocation
	// loc is the line being emitted, recorded on new relocations.
	loc SourceLoc
}

func newEmitter() *emitter {
	return &emitter{
		image:  make([]byte, isa.AddressSpace),
		labels: newLabelTable(),
	}
}

func (e *emitter) write(bs ...byte) error {
	if e.cursor+len(bs) > len(e.image) {
		return &OverflowError{Position: e.cursor}
	}
	copy(e.image[e.cursor:], bs)
	e.cursor += len(bs)
	return nil
}

func (e *emitter) writeWord(w uint16) error {
	return e.write(byte(w>>8), byte(w))
}

func (e *emitter) writeAddress(addr Address) error {
	if !addr.IsLabel() {
		return e.writeWord(addr.Imm)
	}
	return e.placeholder(addr.Label, SelBoth)
}

func (e *emitter) writeValue(v Value) error {
	if !v.IsLabel() {
		return e.write(v.Imm)
	}
	return e.placeholder(v.Label, v.Sel)
}

func (e *emitter) placeholder(label string, sel Selector) error {
	pos := e.cursor
	var err error
	if sel == SelBoth {
		err = e.writeWord(0)
	} else {
		err = e.write(0)
	}
	if err != nil {
		return err
	}
	e.relocs = append(e.relocs, relocation{pos: pos, label: e.labels.effective(label), sel: sel, loc: e.loc})
	return nil
}

// writeRegisters packs r0 into the high nibble and r1 into the low nibble.
func (e *emitter) writeRegisters(r0, r1 Register) error {
	return e.write(byte(r0)<<4 | byte(r1)&0x0F)
}

// defineLabel binds name to the current cursor.
func (e *emitter) defineLabel(name string) error {
	if e.cursor >= len(e.image) {
		return &OverflowError{Position: e.cursor}
	}
	e.labels.define(name, uint16(e.cursor))
	return nil
}

func (e *emitter) emit(ins Instruction) error {
	switch in := ins.(type) {
	case Db:
		for _, item := range in.Items {
			if err := e.write(item.Bytes()...); err != nil {
				return err
			}
		}
		return nil

	case Ds:
		if e.cursor+int(in.Size) > len(e.image) {
			return &OverflowError{Position: e.cursor + int(in.Size)}
		}
		e.cursor += int(in.Size)
		return nil

	case Org:
		e.cursor = int(in.Addr)
		return nil

	case Nullary:
		return e.write(in.Op)

	case UnaryReg:
		return e.write(in.Op, byte(in.Reg))

	case UnaryAddr:
		if err := e.write(in.Op); err != nil {
			return err
		}
		return e.writeAddress(in.Addr)

	case BinaryRegIm:
		if err := e.write(in.Op, byte(in.Reg)); err != nil {
			return err
		}
		return e.writeValue(in.Value)

	case BinaryRegReg:
		if err := e.write(in.Op); err != nil {
			return err
		}
		return e.writeRegisters(in.R0, in.R1)

	case BinaryRegAddr:
		if err := e.write(in.Op, byte(in.Reg)); err != nil {
			return err
		}
		return e.writeAddress(in.Addr)

	case BinaryRegDeref:
		if err := e.write(in.Op, byte(in.Reg)); err != nil {
			return err
		}
		return e.writeRegisters(in.High, in.Low)

	case Include:
		panic("include reached the emitter")
	}
	return fmt.Errorf("unsupported instruction %T", ins)
}
