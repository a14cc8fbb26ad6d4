package asm

import (
	"errors"
	"reflect"
	"testing"

	"byteasm/pkg/isa"
)

func TestEmit(t *testing.T) {
	tests := []struct {
		name   string
		ins    Instruction
		want   []byte
		relocs int
	}{
		{"Nullary", Nullary{Op: isa.OpHLT}, []byte{0x01}, 0},
		{"UnaryReg", UnaryReg{Op: isa.OpPUSH, Reg: 3}, []byte{0x08, 0x03}, 0},
		{"UnaryAddr immediate", UnaryAddr{Op: isa.OpJMP, Addr: Imm(0x1234)}, []byte{0x20, 0x12, 0x34}, 0},
		{"UnaryAddr label", UnaryAddr{Op: isa.OpCALL, Addr: LabelRef("Sub")}, []byte{0x26, 0x00, 0x00}, 1},
		{"BinaryRegIm immediate", BinaryRegIm{Op: isa.OpLDI, Reg: 2, Value: Value{Imm: 0x7F}}, []byte{0x30, 0x02, 0x7F}, 0},
		{"BinaryRegIm label", BinaryRegIm{Op: isa.OpLDI, Reg: 2, Value: Value{Label: "x", Sel: SelLow}}, []byte{0x30, 0x02, 0x00}, 1},
		{"BinaryRegReg", BinaryRegReg{Op: isa.OpADD, R0: 0xA, R1: 0x5}, []byte{0x10, 0xA5}, 0},
		{"BinaryRegAddr", BinaryRegAddr{Op: isa.OpST, Reg: 1, Addr: Imm(0x8001)}, []byte{0x41, 0x01, 0x80, 0x01}, 0},
		{"BinaryRegDeref", BinaryRegDeref{Op: isa.OpLDR, Reg: 1, High: 2, Low: 3}, []byte{0x48, 0x01, 0x23}, 0},
		{"Db", Db{Items: []DataItem{{Byte: 0xAA}, {Text: "hi", IsText: true}}}, []byte{0xAA, 'h', 'i'}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEmitter()
			if err := e.emit(tc.ins); err != nil {
				t.Fatalf("emit() error = %v", err)
			}
			if e.cursor != len(tc.want) {
				t.Errorf("cursor = %d; want %d", e.cursor, len(tc.want))
			}
			if got := e.image[:len(tc.want)]; !reflect.DeepEqual(got, tc.want) {
				t.Errorf("bytes = % X; want % X", got, tc.want)
			}
			if len(e.relocs) != tc.relocs {
				t.Errorf("relocs = %d; want %d", len(e.relocs), tc.relocs)
			}
		})
	}
}

func TestEmitRelocationPositions(t *testing.T) {
	e := newEmitter()
	e.labels.define("Main", 0)
	_ = e.emit(Nullary{Op: isa.OpNOP})
	_ = e.emit(UnaryAddr{Op: isa.OpJMP, Addr: LabelRef(".loop")})
	_ = e.emit(BinaryRegIm{Op: isa.OpLDI, Reg: 0, Value: Value{Label: "data", Sel: SelHigh}})

	want := []relocation{
		{pos: 2, label: "Main.loop", sel: SelBoth},
		{pos: 6, label: "data", sel: SelHigh},
	}
	if !reflect.DeepEqual(e.relocs, want) {
		t.Errorf("relocs = %+v; want %+v", e.relocs, want)
	}
}

func TestEmitCursorMoves(t *testing.T) {
	e := newEmitter()
	_ = e.emit(Ds{Size: 5})
	if e.cursor != 5 {
		t.Errorf("cursor after ds 5 = %d", e.cursor)
	}
	_ = e.emit(Org{Addr: 2})
	if e.cursor != 2 {
		t.Errorf("cursor after org 2 = %d", e.cursor)
	}
	_ = e.emit(Ds{Size: 0xFFFE})
	if e.cursor != isa.AddressSpace {
		t.Errorf("cursor = 0x%X; want end of address space", e.cursor)
	}
}

func TestEmitOverflow(t *testing.T) {
	tests := []struct {
		name string
		org  uint16
		ins  Instruction
	}{
		{"word past end", 0xFFFF, UnaryAddr{Op: isa.OpJMP, Addr: Imm(1)}},
		{"placeholder past end", 0xFFFE, UnaryAddr{Op: isa.OpJMP, Addr: LabelRef("x")}},
		{"ds past end", 0xFFF0, Ds{Size: 0x11}},
		{"string past end", 0xFFFF, Db{Items: []DataItem{{Text: "ab", IsText: true}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEmitter()
			_ = e.emit(Org{Addr: tc.org})
			var ov *OverflowError
			if err := e.emit(tc.ins); !errors.As(err, &ov) {
				t.Errorf("emit() error = %v; want OverflowError", err)
			}
		})
	}

	e := newEmitter()
	_ = e.emit(Org{Addr: 0xFFFF})
	if err := e.emit(Nullary{Op: isa.OpHLT}); err != nil {
		t.Errorf("writing the last byte failed: %v", err)
	}
	var ov *OverflowError
	if err := e.defineLabel("End"); !errors.As(err, &ov) {
		t.Errorf("defineLabel() past the end error = %v; want OverflowError", err)
	}
}
