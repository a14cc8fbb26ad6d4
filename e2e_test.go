package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"byteasm/pkg/asm"
	"byteasm/pkg/srcfs"
)

func TestDemoProject(t *testing.T) {
	src, err := filepath.Abs("testdata/demo/main.asm")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "demo.bin")
	sym := filepath.Join(dir, "demo.sym")

	// Run from elsewhere so includes must resolve against main.asm.
	chdir(t, dir)
	if _, err := runCLI(t, "", src, "-o", bin, "-s", sym); err != nil {
		t.Fatalf("assembly failed: %v", err)
	}

	got, err := os.ReadFile(bin)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x30, 0x00, 0x00,       // ldi R0, hi(Greeting)
		0x30, 0x01, 0x23,       // ldi R1, lo(Greeting)
		0x30, 0x02, 0x00,       // ldi R2, hi(Buffer)
		0x30, 0x03, 0x27,       // ldi R3, lo(Buffer)
		0x30, 0x04, 0x04,       // ldi R4, 4
		0x26, 0x00, 0x13,       // call Copy
		0x01,                   // hlt
		0x48, 0x05, 0x01,       // Copy: ldr R5, [R0:R1]
		0x49, 0x05, 0x23,       // str R5, [R2:R3]
		0x0A, 0x01,             // inc R1
		0x0A, 0x03,             // inc R3
		0x0B, 0x04,             // dec R4
		0x22, 0x00, 0x13,       // jnz .next
		0x02,                   // ret
		'H', 'i', '!', 0x00,    // Greeting
		0, 0, 0, 0, 0, 0, 0, 0, // Buffer
		0xFF,                   // End
	}
	if !bytes.Equal(got, want) {
		t.Errorf("binary =\n% X\nwant\n% X", got, want)
	}

	data, err := os.ReadFile(sym)
	if err != nil {
		t.Fatal(err)
	}
	var syms map[string]uint16
	if err := json.Unmarshal(data, &syms); err != nil {
		t.Fatal(err)
	}
	wantSyms := map[string]uint16{
		"Main":      0x00,
		"Copy":      0x13,
		"Copy.next": 0x13,
		"Greeting":  0x23,
		"Buffer":    0x27,
		"End":       0x2F,
	}
	if !reflect.DeepEqual(syms, wantSyms) {
		t.Errorf("symbols = %v; want %v", syms, wantSyms)
	}
}

func TestDemoProjectInMemory(t *testing.T) {
	disk, err := asm.AssembleFile("testdata/demo/main.asm", asm.Options{})
	if err != nil {
		t.Fatalf("assembly from disk failed: %v", err)
	}

	m := srcfs.NewMemFS("/demo")
	if err := m.LoadFrom("testdata/demo"); err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	mem, err := asm.AssembleFile("main.asm", asm.Options{FS: m})
	if err != nil {
		t.Fatalf("assembly from memory failed: %v", err)
	}

	if !bytes.Equal(disk.Binary, mem.Binary) {
		t.Errorf("binaries differ:\n% X\n% X", disk.Binary, mem.Binary)
	}
	if !reflect.DeepEqual(disk.Symbols, mem.Symbols) {
		t.Errorf("symbols differ: %v vs %v", disk.Symbols, mem.Symbols)
	}
	if loc := mem.SourceMap[0x13]; loc.File != "/demo/lib/copy.asm" || loc.Line != 4 {
		t.Errorf("SourceMap[0x13] = %v; want /demo/lib/copy.asm:4", loc)
	}
}
