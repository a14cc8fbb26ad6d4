package asm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/golang/glog"
)

// labelTable maps effective label names to addresses. A label whose name
// starts with an uppercase letter opens a new scope; a label starting with '.'
// is local to the most recent such label.
type labelTable struct {
	addrs map[string]uint16
	major string
}

func newLabelTable() *labelTable {
	return &labelTable{addrs: make(map[string]uint16)}
}

func isMajor(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func isLocal(name string) bool {
	return strings.HasPrefix(name, ".")
}

// effective qualifies a local name with the current major label.
func (t *labelTable) effective(name string) string {
	if isLocal(name) {
		return t.major + name
	}
	return name
}

// define binds name to addr. Redefinition overwrites the previous binding.
func (t *labelTable) define(name string, addr uint16) {
	if isMajor(name) {
		t.major = name
	}
	eff := t.effective(name)
	if old, ok := t.addrs[eff]; ok && old != addr {
		glog.V(1).Infof("label %s redefined: 0x%04X -> 0x%04X", eff, old, addr)
	}
	t.addrs[eff] = addr
}

func (t *labelTable) lookup(eff string) (uint16, bool) {
	addr, ok := t.addrs[eff]
	return addr, ok
}

// relocation asks for the address of label to be patched in at pos once
// every label is known.
type relocation struct {
	pos   int
	label string
	sel   Selector
	loc   SourceLoc
}

// resolve patches every relocation into image. It stops at the first label
// that was never defined.
func resolve(image []byte, relocs []relocation, labels *labelTable) error {
	for _, r := range relocs {
		addr, ok := labels.lookup(r.label)
		if !ok {
			err := &UndefinedLabelError{Name: r.label}
			if r.loc.File == "" {
				return err
			}
			return &SourceError{File: r.loc.File, Line: r.loc.Line, Err: err}
		}
		glog.V(2).Infof("reloc 0x%04X %s(%s) = 0x%04X", r.pos, r.sel, r.label, addr)

		switch r.sel {
		case SelBoth:
			image[r.pos] = byte(addr >> 8)
			image[r.pos+1] = byte(addr)
		case SelHigh:
			image[r.pos] = byte(addr >> 8)
		case SelLow:
			image[r.pos] = byte(addr)
		}
	}
	return nil
}
