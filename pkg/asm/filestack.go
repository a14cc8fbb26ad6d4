package asm

import (
	"strings"

	"github.com/golang/glog"

	"byteasm/pkg/srcfs"
)

type sourceLine struct {
	num  int
	text string
}

type frame struct {
	path  string // absolute, used for cycle detection and relative includes
	name  string // shown in diagnostics
	lines []sourceLine
	next  int
}

// fileStack yields source lines in inclusion order. An included file is
// drained completely before the including file resumes.
type fileStack struct {
	fs     srcfs.FS
	frames []*frame
}

func newFileStack(fsys srcfs.FS) *fileStack {
	return &fileStack{fs: fsys}
}

// init seeds the stack with the entry source.
func (s *fileStack) init(name, text string) error {
	path, err := s.fs.Abs(name)
	if err != nil {
		return err
	}
	s.frames = []*frame{{path: path, name: name, lines: splitLines(text)}}
	return nil
}

// push resolves target against the file on top of the stack and starts
// reading it.
func (s *fileStack) push(target string) error {
	base := "."
	if top := s.top(); top != nil {
		base = top.path
	}

	path, err := srcfs.Resolve(s.fs, base, target)
	if err != nil {
		return &IOError{Path: target, Err: err}
	}
	if !s.fs.IsRegularFile(path) {
		return &NotAFileError{Path: path}
	}
	for _, f := range s.frames {
		if f.path == path {
			return &RecursiveInclusionError{Path: path}
		}
	}

	content, err := s.fs.ReadFile(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	glog.V(1).Infof("including %s (depth %d)", path, len(s.frames))
	s.frames = append(s.frames, &frame{path: path, name: path, lines: splitLines(string(content))})
	return nil
}

// pop returns the next line and the name of the file it came from. ok is
// false once every frame is exhausted.
func (s *fileStack) pop() (name string, line sourceLine, ok bool) {
	for len(s.frames) > 0 {
		top := s.frames[len(s.frames)-1]
		if top.next < len(top.lines) {
			line = top.lines[top.next]
			top.next++
			return top.name, line, true
		}
		s.frames = s.frames[:len(s.frames)-1]
	}
	return "", sourceLine{}, false
}

func (s *fileStack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *fileStack) depth() int {
	return len(s.frames)
}

func splitLines(text string) []sourceLine {
	raw := strings.Split(text, "\n")
	lines := make([]sourceLine, 0, len(raw))
	for i, l := range raw {
		lines = append(lines, sourceLine{num: i + 1, text: strings.TrimSuffix(l, "\r")})
	}
	return lines
}
