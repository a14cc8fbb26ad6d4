package asm

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed source line. Expected lists the tokens that
// would have been accepted at Column.
type ParseError struct {
	File     string
	Line     int
	Column   int
	Expected []string
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	if len(e.Expected) == 1 {
		return fmt.Sprintf("%s: expected %s", loc, e.Expected[0])
	}
	return fmt.Sprintf("%s: expected one of %s", loc, strings.Join(e.Expected, ", "))
}

type UnknownWhitelistMnemonicError struct {
	Name string
}

func (e *UnknownWhitelistMnemonicError) Error() string {
	return fmt.Sprintf("unknown whitelist instruction '%s'", e.Name)
}

type DisallowedInstructionError struct {
	Mnemonic string
}

func (e *DisallowedInstructionError) Error() string {
	return fmt.Sprintf("use of instruction '%s' not allowed with current whitelist", e.Mnemonic)
}

type RecursiveInclusionError struct {
	Path string
}

func (e *RecursiveInclusionError) Error() string {
	return fmt.Sprintf("recursive inclusion of %s", e.Path)
}

type NotAFileError struct {
	Path string
}

func (e *NotAFileError) Error() string {
	return fmt.Sprintf("%s: not a file", e.Path)
}

// IOError wraps a failed read of a source file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

type UndefinedLabelError struct {
	Name string
}

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("undefined label '%s'", e.Name)
}

// OverflowError reports a write or cursor move past the end of the address space.
type OverflowError struct {
	Position int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("output overflows address space at 0x%X", e.Position)
}

// SourceError attaches the failing file and line to an error.
type SourceError struct {
	File string
	Line int
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
