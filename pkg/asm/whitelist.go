package asm

import (
	"fmt"

	"byteasm/pkg/isa"
)

// Whitelist restricts which opcodes may be assembled. A nil *Whitelist
// allows everything.
type Whitelist struct {
	allowed map[byte]bool
}

// NewWhitelist builds a whitelist from mnemonics. Names are matched without
// regard to case; an unknown name is an error.
func NewWhitelist(mnemonics []string) (*Whitelist, error) {
	w := &Whitelist{allowed: make(map[byte]bool, len(mnemonics))}
	for _, name := range mnemonics {
		info, ok := isa.Lookup(name)
		if !ok {
			return nil, &UnknownWhitelistMnemonicError{Name: name}
		}
		w.allowed[info.Opcode] = true
	}
	return w, nil
}

// Check reports a *DisallowedInstructionError if ins carries an opcode that is
// not allowed. Pseudo-ops always pass.
func (w *Whitelist) Check(ins Instruction) error {
	if w == nil {
		return nil
	}
	op, ok := Opcode(ins)
	if !ok || w.allowed[op] {
		return nil
	}

	mnemonic, known := isa.Mnemonic(op)
	if !known {
		mnemonic = fmt.Sprintf("0x%02X", op)
	}
	return &DisallowedInstructionError{Mnemonic: mnemonic}
}
