// Package memmap draws an assembled image as a picture of the address space:
// one pixel per byte, 256 bytes per row.
package memmap

import (
	"image"
	"image/png"
	"io"
	"os"
	"sort"

	"golang.org/x/image/draw"

	"byteasm/pkg/grid"
)

const (
	Width  = 256
	Height = 256
)

// rgb332ToRGBA expands a byte read as RGB332 into RGBA8888 using bit
// replication, so 0x00 is black and 0xFF is white.
func rgb332ToRGBA(v byte) (r, g, b, a byte) {
	r3 := v >> 5
	g3 := (v >> 2) & 0x07
	b2 := v & 0x03
	r = r3<<5 | r3<<2 | r3>>1
	g = g3<<5 | g3<<2 | g3>>1
	b = b2 * 0x55
	a = 0xFF
	return
}

// RenderRGBA returns the RGBA8888 pixels (Width*Height*4 bytes) for a binary.
// Addresses past the end of binary are drawn as zero bytes.
func RenderRGBA(binary []byte) []byte {
	pixels := make([]byte, Width*Height*4)
	for addr := 0; addr < Width*Height; addr++ {
		var v byte
		if addr < len(binary) {
			v = binary[addr]
		}
		r, g, b, a := rgb332ToRGBA(v)
		pixels[addr*4+0] = r
		pixels[addr*4+1] = g
		pixels[addr*4+2] = b
		pixels[addr*4+3] = a
	}
	return pixels
}

// Render returns the memory map as an *image.RGBA.
func Render(binary []byte) *image.RGBA {
	return &image.RGBA{
		Pix:    RenderRGBA(binary),
		Stride: Width * 4,
		Rect:   image.Rect(0, 0, Width, Height),
	}
}

// Scale enlarges src by an integer factor with nearest-neighbour sampling so
// that single bytes stay crisp.
func Scale(src *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// EncodePNG writes the scaled memory map of binary to w.
func EncodePNG(w io.Writer, binary []byte, scale int) error {
	return png.Encode(w, Scale(Render(binary), scale))
}

// SavePNG writes the memory map to filename.
func SavePNG(filename string, binary []byte, scale int) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodePNG(f, binary, scale)
}

// PixelOf returns the pixel of the unscaled map that shows addr.
func PixelOf(addr uint16) (x, y int) {
	return grid.GetGridCoords(int(addr), Width)
}

// AddressAt maps a pixel of the unscaled map to an address.
func AddressAt(x, y int) (uint16, bool) {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return 0, false
	}
	return uint16(grid.Index(x, y, Width)), true
}

// NearestSymbol returns the symbol with the highest address not above addr
// and the distance from it. Symbols sharing an address are ordered by name.
func NearestSymbol(symbols map[string]uint16, addr uint16) (name string, offset uint16, ok bool) {
	names := make([]string, 0, len(symbols))
	for n := range symbols {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		a := symbols[n]
		if a > addr {
			continue
		}
		if !ok || a > symbols[name] {
			name, ok = n, true
		}
	}
	if !ok {
		return "", 0, false
	}
	return name, addr - symbols[name], true
}
