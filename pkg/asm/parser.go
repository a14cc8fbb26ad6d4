package asm

import (
	"sort"
	"strconv"
	"strings"

	"byteasm/pkg/isa"
)

// ParseLine parses one line of source text. A failed parse returns a
// *ParseError whose Line is 1 and whose File is empty; callers that know
// where the text came from fill those in.
func ParseLine(text string) (Line, error) {
	p := &lineParser{src: strings.TrimRight(text, "\r\n"), failPos: -1}
	line, ok := p.line()
	if !ok {
		return Line{}, p.err()
	}
	return line, nil
}

// lineParser is a backtracking-free recursive descent parser over a single
// line. Every failed match records what it wanted at the current offset; the
// error reports the set recorded at the furthest offset reached.
type lineParser struct {
	src      string
	pos      int
	failPos  int
	expected map[string]bool
}

func (p *lineParser) err() *ParseError {
	exp := make([]string, 0, len(p.expected))
	for k := range p.expected {
		exp = append(exp, k)
	}
	sort.Strings(exp)
	return &ParseError{Line: 1, Column: p.failPos + 1, Expected: exp}
}

func (p *lineParser) failAt(pos int, desc string) {
	if pos > p.failPos {
		p.failPos = pos
		p.expected = make(map[string]bool)
	}
	if pos == p.failPos {
		p.expected[desc] = true
	}
}

// fail records desc at the current offset and returns false.
func (p *lineParser) fail(desc string) bool {
	p.failAt(p.pos, desc)
	return false
}

func (p *lineParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *lineParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *lineParser) atEOL() bool {
	return p.pos >= len(p.src) || p.src[p.pos] == ';'
}

func (p *lineParser) line() (Line, bool) {
	var line Line

	p.skipSpace()
	if p.atEOL() {
		return line, true
	}

	start := p.pos
	if name, ok := p.labelRef("label"); ok {
		p.skipSpace()
		if p.peek() == ':' {
			p.pos++
			line.Label = name
		} else {
			p.pos = start
		}
	}

	p.skipSpace()
	if !p.atEOL() {
		ins, ok := p.instruction()
		if !ok {
			return Line{}, false
		}
		line.Instruction = ins
	}

	p.skipSpace()
	if !p.atEOL() {
		return Line{}, p.fail("end of line")
	}
	return line, true
}

func (p *lineParser) ident() string {
	start := p.pos
	if !isIdentStart(p.peek()) {
		return ""
	}
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *lineParser) instruction() (Instruction, bool) {
	start := p.pos
	word := p.ident()
	if word == "" {
		return nil, p.fail("instruction")
	}

	switch strings.ToLower(word) {
	case "db":
		return p.db()
	case "ds":
		n, ok := p.word()
		return Ds{Size: n}, ok
	case "org":
		n, ok := p.word()
		return Org{Addr: n}, ok
	case "include":
		path, ok := p.str()
		return Include{Path: path}, ok
	}

	info, found := isa.Lookup(word)
	if !found {
		p.pos = start
		return nil, p.fail("instruction")
	}
	op := info.Opcode

	switch info.Form {
	case isa.FormNullary:
		return Nullary{Op: op}, true

	case isa.FormUnaryReg:
		r, ok := p.register()
		return UnaryReg{Op: op, Reg: r}, ok

	case isa.FormUnaryAddr:
		addr, ok := p.address()
		return UnaryAddr{Op: op, Addr: addr}, ok

	case isa.FormBinaryRegIm:
		r, ok := p.register()
		if !ok || !p.literal(',') {
			return nil, false
		}
		v, ok := p.value()
		return BinaryRegIm{Op: op, Reg: r, Value: v}, ok

	case isa.FormBinaryRegReg:
		r0, ok := p.register()
		if !ok || !p.literal(',') {
			return nil, false
		}
		r1, ok := p.register()
		return BinaryRegReg{Op: op, R0: r0, R1: r1}, ok

	case isa.FormBinaryRegAddr:
		r, ok := p.register()
		if !ok || !p.literal(',') {
			return nil, false
		}
		addr, ok := p.address()
		return BinaryRegAddr{Op: op, Reg: r, Addr: addr}, ok

	case isa.FormBinaryRegDeref:
		r, ok := p.register()
		if !ok || !p.literal(',') || !p.literal('[') {
			return nil, false
		}
		hi, ok := p.register()
		if !ok || !p.literal(':') {
			return nil, false
		}
		lo, ok := p.register()
		if !ok || !p.literal(']') {
			return nil, false
		}
		return BinaryRegDeref{Op: op, Reg: r, High: hi, Low: lo}, true
	}

	p.pos = start
	return nil, p.fail("instruction")
}

func (p *lineParser) db() (Instruction, bool) {
	var items []DataItem
	for {
		item, ok := p.dataItem()
		if !ok {
			return nil, false
		}
		items = append(items, item)

		p.skipSpace()
		if p.peek() != ',' {
			p.failAt(p.pos, `","`)
			break
		}
		p.pos++
	}
	return Db{Items: items}, true
}

func (p *lineParser) dataItem() (DataItem, bool) {
	p.skipSpace()
	if p.peek() == '"' {
		s, ok := p.str()
		return DataItem{Text: s, IsText: true}, ok
	}
	p.failAt(p.pos, "string")
	b, ok := p.byteLit()
	return DataItem{Byte: b}, ok
}

func (p *lineParser) literal(c byte) bool {
	p.skipSpace()
	if p.peek() != c {
		return p.fail(strconv.Quote(string(c)))
	}
	p.pos++
	return true
}

func (p *lineParser) register() (Register, bool) {
	p.skipSpace()
	start := p.pos
	if c := p.peek(); c != 'R' && c != 'r' {
		return 0, p.fail("register")
	}
	p.pos++
	for isDigit(p.peek()) {
		p.pos++
	}
	digits := p.src[start+1 : p.pos]
	n, err := strconv.Atoi(digits)
	if digits == "" || isIdentPart(p.peek()) || err != nil || n >= isa.NumRegisters {
		p.pos = start
		return 0, p.fail("register")
	}
	return Register(n), true
}

func (p *lineParser) number(max uint64, desc string) (uint64, bool) {
	p.skipSpace()
	start := p.pos
	if !isDigit(p.peek()) {
		return 0, p.fail(desc)
	}
	for isIdentPart(p.peek()) {
		p.pos++
	}
	n, err := strconv.ParseUint(p.src[start:p.pos], 0, 64)
	if err != nil || n > max {
		p.pos = start
		return 0, p.fail(desc)
	}
	return n, true
}

func (p *lineParser) word() (uint16, bool) {
	n, ok := p.number(0xFFFF, "number")
	return uint16(n), ok
}

func (p *lineParser) byteLit() (byte, bool) {
	p.skipSpace()
	if p.peek() == '\'' {
		return p.char()
	}
	n, ok := p.number(0xFF, "byte")
	return byte(n), ok
}

func (p *lineParser) char() (byte, bool) {
	p.pos++
	var b byte
	switch c := p.peek(); {
	case p.pos >= len(p.src) || c == '\'':
		return 0, p.fail("character")
	case c == '\\':
		var ok bool
		if b, ok = p.escape(); !ok {
			return 0, false
		}
	default:
		b = c
		p.pos++
	}
	if p.peek() != '\'' {
		return 0, p.fail(`"'"`)
	}
	p.pos++
	return b, true
}

func (p *lineParser) str() (string, bool) {
	p.skipSpace()
	if p.peek() != '"' {
		return "", p.fail("string")
	}
	p.pos++

	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.fail(`"\""`)
		}
		switch c := p.src[p.pos]; c {
		case '"':
			p.pos++
			return sb.String(), true
		case '\\':
			b, ok := p.escape()
			if !ok {
				return "", false
			}
			sb.WriteByte(b)
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

// escape decodes the escape sequence starting at the backslash under the cursor.
func (p *lineParser) escape() (byte, bool) {
	p.pos++
	c := p.peek()
	if p.pos >= len(p.src) {
		return 0, p.fail("escape sequence")
	}
	p.pos++
	switch c {
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case '0':
		return 0, true
	case '\\', '"', '\'':
		return c, true
	case 'x':
		if p.pos+2 > len(p.src) {
			return 0, p.fail("hex digits")
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+2], 16, 8)
		if err != nil {
			return 0, p.fail("hex digits")
		}
		p.pos += 2
		return byte(n), true
	}
	p.pos--
	return 0, p.fail("escape sequence")
}

func (p *lineParser) labelRef(desc string) (string, bool) {
	p.skipSpace()
	start := p.pos
	if p.peek() == '.' {
		p.pos++
	}
	if p.ident() == "" {
		p.pos = start
		return "", p.fail(desc)
	}
	return p.src[start:p.pos], true
}

func (p *lineParser) address() (Address, bool) {
	p.skipSpace()
	if isDigit(p.peek()) {
		n, ok := p.word()
		return Imm(n), ok
	}
	p.failAt(p.pos, "number")
	name, ok := p.labelRef("label")
	return LabelRef(name), ok
}

func (p *lineParser) value() (Value, bool) {
	p.skipSpace()
	if c := p.peek(); isDigit(c) || c == '\'' {
		b, ok := p.byteLit()
		return Value{Imm: b}, ok
	}

	start := p.pos
	sel := SelBoth
	switch strings.ToLower(p.ident()) {
	case "hi":
		sel = SelHigh
	case "lo":
		sel = SelLow
	}
	if sel == SelBoth {
		p.pos = start
		p.fail(`"hi("`)
		p.fail(`"lo("`)
		return Value{}, p.fail("byte")
	}

	if !p.literal('(') {
		return Value{}, false
	}
	addr, ok := p.address()
	if !ok || !p.literal(')') {
		return Value{}, false
	}

	if addr.IsLabel() {
		return Value{Label: addr.Label, Sel: sel}, true
	}
	if sel == SelHigh {
		return Value{Imm: byte(addr.Imm >> 8)}, true
	}
	return Value{Imm: byte(addr.Imm)}, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
