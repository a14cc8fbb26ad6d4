package asm

import (
	"encoding/json"
	"fmt"
	"io"
)

// SourceLoc identifies the line that emitted a byte.
type SourceLoc struct {
	File string
	Line int
}

func (l SourceLoc) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// SymbolTable maps effective label names to their addresses.
type SymbolTable map[string]uint16

// Encode writes the table as a JSON object.
func (s SymbolTable) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(map[string]uint16(s))
}

// DecodeSymbols reads a table written by Encode.
func DecodeSymbols(r io.Reader) (SymbolTable, error) {
	syms := make(SymbolTable)
	if err := json.NewDecoder(r).Decode(&syms); err != nil {
		return nil, fmt.Errorf("decode symbols: %w", err)
	}
	return syms, nil
}

// Program is the result of a successful assembly.
type Program struct {
	// Binary is the image from address 0 up to its last nonzero byte.
	Binary  []byte
	Symbols SymbolTable
	// SourceMap records, for each line that emitted bytes, the address of
	// its first byte.
	SourceMap map[uint16]SourceLoc
}

// trimTrailingZeros drops the trailing run of zero bytes.
func trimTrailingZeros(image []byte) []byte {
	end := len(image)
	for end > 0 && image[end-1] == 0 {
		end--
	}
	out := make([]byte, end)
	copy(out, image[:end])
	return out
}
