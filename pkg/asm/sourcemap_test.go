package asm

import (
	"testing"
)

func TestAssembleSourceMap(t *testing.T) {
	code := `
; Line 2: comment
ldi R0, 10      ; Line 3: 3 bytes
                ; Line 4: empty
Label:          ; Line 5: label only
add R0, R1      ; Line 6: 2 bytes
org 0x0010      ; Line 7: moves the cursor
hlt             ; Line 8: 1 byte at 0x0010
db "AB"         ; Line 9: 2 bytes
ds 4            ; Line 10: reserves, emits nothing
jmp Label       ; Line 11: 3 bytes at 0x0017
`
	prog := assembleString(t, code)

	tests := []struct {
		addr uint16
		line int
	}{
		{0x0000, 3},
		{0x0003, 6},
		{0x0010, 8},
		{0x0011, 9},
		{0x0017, 11},
	}
	for _, tc := range tests {
		got, ok := prog.SourceMap[tc.addr]
		if !ok || got.Line != tc.line || got.File != "test.asm" {
			t.Errorf("SourceMap[0x%04X] = %v, %v; want test.asm:%d", tc.addr, got, ok, tc.line)
		}
	}
	if len(prog.SourceMap) != len(tests) {
		t.Errorf("SourceMap has %d entries; want %d", len(prog.SourceMap), len(tests))
	}
	if prog.Symbols["Label"] != 0x0003 {
		t.Errorf("Label = 0x%04X; want 0x0003", prog.Symbols["Label"])
	}
}
