// Package tilegrid stores the per-cell data for a tile layer's physical
// grid. A plain tile layer and each of the six special gameplay layers
// (game, teleport, speedup, front, switch, tune) share one width/height but
// differ in how many bytes each cell occupies and which byte carries the
// tile id; this package models that as one flat byte buffer per grid plus
// a variant tag, the way the reference tile managers do.
package tilegrid

import (
	"fmt"
	"sync"
)

// Variant identifies a physical cell layout.
type Variant int

const (
	Vanilla Variant = iota
	Tele
	Speedup
	Switch
	Tune
)

// bytesPerCell gives the wire size of one cell for each variant: vanilla,
// switch and front share the 4-byte layout, tele and tune use 2 bytes,
// speedup uses 6.
func bytesPerCell(v Variant) int {
	switch v {
	case Vanilla, Switch:
		return 4
	case Tele, Tune:
		return 2
	case Speedup:
		return 6
	default:
		panic(fmt.Sprintf("tilegrid: unknown variant %d", v))
	}
}

// idByte gives the byte offset within a cell that holds the tile id, for
// variants where an id is defined.
func idByte(v Variant) (int, bool) {
	switch v {
	case Vanilla:
		return 0, true
	case Tele, Speedup, Switch:
		return 1, true
	default:
		return 0, false
	}
}

// flagsByte gives the byte offset within a cell that holds the vanilla
// flags bitset (VFLIP=1, HFLIP=2, OPAQUE=4, ROTATE=8). Only the vanilla
// variant defines one.
func flagsByte(v Variant) (int, bool) {
	if v == Vanilla {
		return 1, true
	}
	return 0, false
}

// Grid is a width x height array of fixed-size cells for one variant.
type Grid struct {
	variant       Variant
	width, height int
	cellSize      int
	data          []byte
}

// New allocates a zeroed grid of the given dimensions and variant.
func New(variant Variant, width, height int) *Grid {
	cellSize := bytesPerCell(variant)
	return &Grid{
		variant:  variant,
		width:    width,
		height:   height,
		cellSize: cellSize,
		data:     get(width, height, cellSize),
	}
}

// FromBytes wraps an existing raw buffer as a grid, without copying. The
// caller must not retain other references to raw afterward.
func FromBytes(variant Variant, width, height int, raw []byte) (*Grid, error) {
	cellSize := bytesPerCell(variant)
	want := width * height * cellSize
	if len(raw) != want {
		return nil, fmt.Errorf("tilegrid: buffer is %d bytes, want %d for %dx%d cells of %d bytes", len(raw), want, width, height, cellSize)
	}
	return &Grid{variant: variant, width: width, height: height, cellSize: cellSize, data: raw}, nil
}

// Variant reports the grid's cell layout.
func (g *Grid) Variant() Variant { return g.variant }

// Width and Height report the grid dimensions in cells.
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// BytesPerCell reports the wire size of one cell.
func (g *Grid) BytesPerCell() int { return g.cellSize }

// Bytes returns the raw backing buffer, row-major, one fixed-size cell per
// (x, y) position, for codec passthrough.
func (g *Grid) Bytes() []byte { return g.data }

// Release returns the grid's backing buffer to the pool. The grid must not
// be used afterward.
func (g *Grid) Release() {
	put(g.width, g.height, g.cellSize, g.data)
	g.data = nil
}

func (g *Grid) cellOffset(x, y int) (int, error) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrOutOfRange, x, y, g.width, g.height)
	}
	return (y*g.width + x) * g.cellSize, nil
}

// Byte reads byte n of the cell at (x, y).
func (g *Grid) Byte(x, y, n int) (byte, error) {
	off, err := g.cellOffset(x, y)
	if err != nil {
		return 0, err
	}
	if n < 0 || n >= g.cellSize {
		return 0, fmt.Errorf("tilegrid: byte %d outside %d-byte cell", n, g.cellSize)
	}
	return g.data[off+n], nil
}

// SetByte writes byte n of the cell at (x, y).
func (g *Grid) SetByte(x, y, n int, value byte) error {
	off, err := g.cellOffset(x, y)
	if err != nil {
		return err
	}
	if n < 0 || n >= g.cellSize {
		return fmt.Errorf("tilegrid: byte %d outside %d-byte cell", n, g.cellSize)
	}
	g.data[off+n] = value
	return nil
}

// ID reads the tile id of the cell at (x, y). It returns an error if the
// grid's variant has no id byte (only tune lacks one).
func (g *Grid) ID(x, y int) (int, error) {
	n, ok := idByte(g.variant)
	if !ok {
		return 0, fmt.Errorf("tilegrid: variant %d has no id field", g.variant)
	}
	b, err := g.Byte(x, y, n)
	return int(b), err
}

// SetID writes the tile id of the cell at (x, y).
func (g *Grid) SetID(x, y, value int) error {
	n, ok := idByte(g.variant)
	if !ok {
		return fmt.Errorf("tilegrid: variant %d has no id field", g.variant)
	}
	return g.SetByte(x, y, n, byte(value))
}

// HasFlag reports whether the vanilla flags byte at (x, y) has bit set.
// Only the vanilla variant carries a flags byte.
func (g *Grid) HasFlag(x, y, bit int) (bool, error) {
	n, ok := flagsByte(g.variant)
	if !ok {
		return false, fmt.Errorf("tilegrid: variant %d has no flags field", g.variant)
	}
	b, err := g.Byte(x, y, n)
	if err != nil {
		return false, err
	}
	return int(b)&bit != 0, nil
}

type poolKey struct {
	w, h, cellSize int
}

// pools maps (width, height, bytesPerCell) -> *sync.Pool of []byte, the
// same shape as the reference image-buffer pool generalized from one
// fixed pixel format to tilegrid's cell layouts.
var pools sync.Map

func get(w, h, cellSize int) []byte {
	key := poolKey{w, h, cellSize}
	if p, ok := pools.Load(key); ok {
		if v := p.(*sync.Pool).Get(); v != nil {
			buf := v.([]byte)
			clear(buf)
			return buf
		}
	}
	return make([]byte, w*h*cellSize)
}

func put(w, h, cellSize int, buf []byte) {
	if buf == nil {
		return
	}
	key := poolKey{w, h, cellSize}
	p, _ := pools.LoadOrStore(key, &sync.Pool{})
	p.(*sync.Pool).Put(buf)
}
