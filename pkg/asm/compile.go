// Package asm assembles source for the 8-bit target into a flat binary image.
//
// Assembly runs in two passes. The first pass walks the source in inclusion
// order, encodes every instruction into a 64 KiB image and records a
// relocation for each label operand. The second pass patches the relocations
// once every label is known. The image is then trimmed after its last nonzero
// byte.
package asm

import (
	"errors"

	"github.com/golang/glog"

	"byteasm/pkg/srcfs"
)

// Options configures one assembly.
type Options struct {
	// Whitelist limits the instructions that may be used. nil allows every
	// instruction; an empty, non-nil slice allows none.
	Whitelist []string
	// FS resolves and reads included files. nil means the host filesystem.
	FS srcfs.FS
}

func (o Options) fsys() srcfs.FS {
	if o.FS == nil {
		return srcfs.OS{}
	}
	return o.FS
}

// Assemble assembles source. name identifies the source in diagnostics and
// relative includes are resolved against its directory.
func Assemble(name, source string, opts Options) (*Program, error) {
	a, err := newAssembler(opts)
	if err != nil {
		return nil, err
	}
	return a.run(name, source)
}

// AssembleFile reads and assembles the file at path.
func AssembleFile(path string, opts Options) (*Program, error) {
	a, err := newAssembler(opts)
	if err != nil {
		return nil, err
	}

	fsys := opts.fsys()
	if !fsys.IsRegularFile(path) {
		return nil, &NotAFileError{Path: path}
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return a.run(path, string(data))
}

type assembler struct {
	whitelist *Whitelist
	files     *fileStack
	out       *emitter
	sourceMap map[uint16]SourceLoc
}

func newAssembler(opts Options) (*assembler, error) {
	a := &assembler{
		files:     newFileStack(opts.fsys()),
		out:       newEmitter(),
		sourceMap: make(map[uint16]SourceLoc),
	}
	if opts.Whitelist != nil {
		w, err := NewWhitelist(opts.Whitelist)
		if err != nil {
			return nil, err
		}
		a.whitelist = w
	}
	return a, nil
}

func (a *assembler) run(name, source string) (*Program, error) {
	glog.V(1).Infof("assembling %s", name)
	if err := a.files.init(name, source); err != nil {
		return nil, &IOError{Path: name, Err: err}
	}

	for {
		file, src, ok := a.files.pop()
		if !ok {
			break
		}
		if err := a.process(file, src); err != nil {
			return nil, err
		}
	}

	glog.V(1).Infof("resolving %d relocations", len(a.out.relocs))
	if err := resolve(a.out.image, a.out.relocs, a.out.labels); err != nil {
		return nil, err
	}

	return &Program{
		Binary:    trimTrailingZeros(a.out.image),
		Symbols:   SymbolTable(a.out.labels.addrs),
		SourceMap: a.sourceMap,
	}, nil
}

func (a *assembler) process(file string, src sourceLine) error {
	line, err := ParseLine(src.text)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = file
			pe.Line = src.num + pe.Line - 1
		}
		return err
	}

	loc := SourceLoc{File: file, Line: src.num}
	located := func(err error) error {
		return &SourceError{File: file, Line: src.num, Err: err}
	}

	if line.Label != "" {
		if err := a.out.defineLabel(line.Label); err != nil {
			return located(err)
		}
	}
	if line.Instruction == nil {
		return nil
	}

	if inc, ok := line.Instruction.(Include); ok {
		if err := a.files.push(inc.Path); err != nil {
			return located(err)
		}
		return nil
	}

	if err := a.whitelist.Check(line.Instruction); err != nil {
		return located(err)
	}

	start := a.out.cursor
	a.out.loc = loc
	if err := a.out.emit(line.Instruction); err != nil {
		return located(err)
	}

	switch line.Instruction.(type) {
	case Ds, Org:
	default:
		if a.out.cursor > start {
			a.sourceMap[uint16(start)] = loc
		}
	}
	return nil
}
