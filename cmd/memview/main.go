// Command memview shows the 64 KiB image of a program as a 256x256 map, one
// pixel per byte, and reports what lives under the mouse pointer.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"byteasm/pkg/asm"
	"byteasm/pkg/memmap"
	"byteasm/pkg/srcfs"
)

const statusHeight = 32

// program is what the viewer displays.
type program struct {
	name      string
	binary    []byte
	symbols   asm.SymbolTable
	sourceMap map[uint16]asm.SourceLoc
}

// loadProgram assembles path, or reads it as a raw image when it ends in
// .bin. symfile, when set, supplies symbols for raw images.
func loadProgram(path, symfile string) (*program, error) {
	fullPath, _, err := srcfs.PathInfo(srcfs.OS{}, path)
	if err != nil {
		return nil, err
	}

	p := &program{name: filepath.Base(fullPath)}
	if strings.EqualFold(filepath.Ext(fullPath), ".bin") {
		p.binary, err = os.ReadFile(fullPath)
		if err != nil {
			return nil, err
		}
	} else {
		prog, err := asm.AssembleFile(fullPath, asm.Options{})
		if err != nil {
			return nil, err
		}
		p.binary, p.symbols, p.sourceMap = prog.Binary, prog.Symbols, prog.SourceMap
	}

	if symfile != "" {
		f, err := os.Open(symfile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if p.symbols, err = asm.DecodeSymbols(f); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// nearestSource returns the location of the closest line at or before addr
// that emitted bytes.
func nearestSource(sourceMap map[uint16]asm.SourceLoc, addr uint16) (asm.SourceLoc, bool) {
	starts := make([]int, 0, len(sourceMap))
	for a := range sourceMap {
		starts = append(starts, int(a))
	}
	sort.Ints(starts)

	i := sort.SearchInts(starts, int(addr)+1) - 1
	if i < 0 {
		return asm.SourceLoc{}, false
	}
	return sourceMap[uint16(starts[i])], true
}

// status describes the byte at addr.
func (p *program) status(addr uint16) string {
	var v byte
	if int(addr) < len(p.binary) {
		v = p.binary[addr]
	}
	s := fmt.Sprintf("%04X: %02X", addr, v)
	if name, off, ok := memmap.NearestSymbol(p.symbols, addr); ok {
		if off == 0 {
			s += "  " + name
		} else {
			s += fmt.Sprintf("  %s+%d", name, off)
		}
	}
	if loc, ok := nearestSource(p.sourceMap, addr); ok {
		s += "  " + loc.String()
	}
	return s
}

type Viewer struct {
	prog     *program
	mapImg   *ebiten.Image
	hover    uint16
	hovering bool
}

func (v *Viewer) Update() error {
	x, y := ebiten.CursorPosition()
	v.hover, v.hovering = memmap.AddressAt(x, y)

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		out := strings.TrimSuffix(v.prog.name, filepath.Ext(v.prog.name)) + ".png"
		if err := memmap.SavePNG(out, v.prog.binary, 2); err != nil {
			glog.Errorf("save %s: %v", out, err)
		} else {
			glog.Infof("saved %s", out)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.mapImg == nil {
		v.mapImg = ebiten.NewImage(memmap.Width, memmap.Height)
		v.mapImg.WritePixels(memmap.RenderRGBA(v.prog.binary))
	}
	screen.DrawImage(v.mapImg, nil)

	msg := fmt.Sprintf("%s  %d bytes  [P] save png", v.prog.name, len(v.prog.binary))
	if v.hovering {
		msg = v.prog.status(v.hover)
	}
	ebitenutil.DebugPrintAt(screen, msg, 2, memmap.Height+2)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return memmap.Width, memmap.Height + statusHeight
}

func main() {
	symfile := flag.String("s", "", "symbol table for a .bin image")
	scale := flag.Int("scale", 2, "window scale")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: memview [flags] FILE\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	prog, err := loadProgram(flag.Arg(0), *symfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memview: %v\n", err)
		os.Exit(1)
	}
	glog.V(1).Infof("loaded %s: %d bytes, %d symbols", prog.name, len(prog.binary), len(prog.symbols))

	s := *scale
	ebiten.SetWindowSize(memmap.Width*s, (memmap.Height+statusHeight)*s)
	ebiten.SetWindowTitle("memview - " + prog.name)
	if err := ebiten.RunGame(&Viewer{prog: prog}); err != nil {
		glog.Exitf("memview: %v", err)
	}
	glog.Flush()
}
