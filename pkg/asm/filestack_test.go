package asm

import (
	"errors"
	"testing"

	"byteasm/pkg/srcfs"
)

func newProjectFS(t *testing.T, files map[string]string) *srcfs.MemFS {
	t.Helper()
	m := srcfs.NewMemFS("/proj")
	for path, text := range files {
		if err := m.WriteString(path, text); err != nil {
			t.Fatalf("WriteString(%q) error = %v", path, err)
		}
	}
	return m
}

func TestFileStackOrder(t *testing.T) {
	m := newProjectFS(t, map[string]string{
		"inc.asm": "x\ny",
	})
	s := newFileStack(m)
	if s.depth() != 0 {
		t.Fatalf("depth() = %d before init; want 0", s.depth())
	}
	if err := s.init("main.asm", "one\ntwo"); err != nil {
		t.Fatalf("init() error = %v", err)
	}

	type popped struct {
		name string
		num  int
		text string
	}
	var got []popped
	next := func() bool {
		name, line, ok := s.pop()
		if ok {
			got = append(got, popped{name, line.num, line.text})
		}
		return ok
	}

	next()
	if err := s.push("inc.asm"); err != nil {
		t.Fatalf("push() error = %v", err)
	}
	for next() {
	}

	want := []popped{
		{"main.asm", 1, "one"},
		{"/proj/inc.asm", 1, "x"},
		{"/proj/inc.asm", 2, "y"},
		{"main.asm", 2, "two"},
	}
	if len(got) != len(want) {
		t.Fatalf("popped %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pop %d = %+v; want %+v", i, got[i], want[i])
		}
	}
	if s.depth() != 0 {
		t.Errorf("depth() = %d after draining; want 0", s.depth())
	}
}

func TestFileStackPushErrors(t *testing.T) {
	m := newProjectFS(t, map[string]string{
		"lib/a.asm": "",
	})

	t.Run("NotAFile", func(t *testing.T) {
		s := newFileStack(m)
		_ = s.init("main.asm", "")
		err := s.push("missing.asm")
		var nf *NotAFileError
		if !errors.As(err, &nf) || nf.Path != "/proj/missing.asm" {
			t.Errorf("push(missing.asm) error = %v; want NotAFileError for /proj/missing.asm", err)
		}
	})

	t.Run("Directory", func(t *testing.T) {
		s := newFileStack(m)
		_ = s.init("main.asm", "")
		var nf *NotAFileError
		if err := s.push("lib"); !errors.As(err, &nf) {
			t.Errorf("push(lib) error = %v; want NotAFileError", err)
		}
	})

	t.Run("Recursive", func(t *testing.T) {
		s := newFileStack(m)
		_ = s.init("lib/a.asm", "")
		err := s.push("a.asm")
		var rec *RecursiveInclusionError
		if !errors.As(err, &rec) || rec.Path != "/proj/lib/a.asm" {
			t.Errorf("push(a.asm) error = %v; want RecursiveInclusionError for /proj/lib/a.asm", err)
		}
	})

	t.Run("RelativeToIncluder", func(t *testing.T) {
		s := newFileStack(m)
		_ = s.init("main.asm", "")
		if err := s.push("/proj/lib/a.asm"); err != nil {
			t.Fatalf("push(abs) error = %v", err)
		}
		if err := s.push("a.asm"); err == nil {
			t.Errorf("push(a.asm) from lib/a.asm should resolve to itself and fail")
		}
	})
}

func TestSplitLines(t *testing.T) {
	lines := splitLines("a\r\nb\n\nc")
	want := []sourceLine{{1, "a"}, {2, "b"}, {3, ""}, {4, "c"}}
	if len(lines) != len(want) {
		t.Fatalf("splitLines() = %v; want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %+v; want %+v", i, lines[i], want[i])
		}
	}
}
