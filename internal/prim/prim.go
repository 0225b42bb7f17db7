// Package prim implements the self-describing primitive leaves of the
// DataFile wire format: little-endian 32-bit integers, 4-byte raw ASCII
// tags, fixed-length int-encoded strings, and the small composite structs
// (RGBA color, 2D point) built on top of them.
//
// Each type's encode/decode pair is hand-written rather than derived via
// reflection: the wire contract is "concatenate fields in declared order",
// and a fixed, explicit field list is the most direct way to express that
// in Go.
package prim

import (
	"fmt"

	"github.com/tilemap/datafile/internal/cursor"
)

// Int32Size is the wire size of a single little-endian signed 32-bit
// integer, the atomic unit every other primitive in this package is built
// from.
const Int32Size = 4

// ReadInt32 decodes one little-endian signed 32-bit integer.
func ReadInt32(c *cursor.Cursor) (int32, error) {
	return c.ReadInt32()
}

// WriteInt32 encodes one little-endian signed 32-bit integer.
func WriteInt32(c *cursor.Cursor, v int32) {
	c.WriteInt32(v)
}

// RawStr4Size is the wire size of a 4-byte raw ASCII tag.
const RawStr4Size = 4

// ReadRawStr4 decodes a 4-byte raw (unencoded) ASCII tag, used for the
// container magic bytes.
func ReadRawStr4(c *cursor.Cursor) (string, error) {
	b, err := c.ReadBytes(RawStr4Size)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteRawStr4 encodes a 4-byte raw ASCII tag. The value must be exactly 4
// bytes; callers that already validated the tag (e.g. the container magic)
// can rely on this never failing, but out-of-range input is still checked.
func WriteRawStr4(c *cursor.Cursor, s string) error {
	if len(s) != RawStr4Size {
		return fmt.Errorf("prim: rawstr4 value %q is not %d bytes", s, RawStr4Size)
	}
	c.Append([]byte(s))
	return nil
}

// safeOrd mirrors the reference implementation's signed byte-biasing:
// characters above the ASCII range are folded into the negative half of a
// signed byte rather than rejected, so that the bias-by-128 step below
// never overflows a byte.
func safeOrd(ch byte) int {
	n := int(ch)
	if n > 0x7F {
		n = 0x100 - n
		if n < 128 {
			return -n
		}
		return -128
	}
	return n
}

// safeChr inverts safeOrd, clamping to the 0..255 byte range.
func safeChr(i int) byte {
	if i < 0 {
		i += 256
	}
	if i < 0 {
		return 0
	}
	if i > 255 {
		return 255
	}
	return byte(i)
}

// EncodeIntStr encodes s as an int-encoded string of the given word length
// (layer and group names use 3 words, envelope names use 8): the string is
// padded to 4*words-1 bytes plus a terminating NUL, split into 4-byte
// groups with byte order reversed within each group, and each byte biased
// by +128.
func EncodeIntStr(s string, words int) []byte {
	n := words * 4
	padded := make([]byte, n)
	copy(padded, s)
	// padded[len(s):] is already zero, which serves as the NUL padding.

	out := make([]byte, n)
	for wordStart := 0; wordStart < n; wordStart += 4 {
		word := padded[wordStart : wordStart+4]
		for j := 0; j < 4; j++ {
			out[wordStart+3-j] = byte(safeOrd(word[j]) + 128)
		}
	}
	// The final word's low byte (position n-4, the last byte written for
	// that word, i.e. j=3) must be the NUL terminator: byte(safeOrd(0)+128).
	out[n-4] = byte(safeOrd(0) + 128)
	return out
}

// DecodeIntStr reverses EncodeIntStr, returning the string with trailing
// NULs trimmed.
func DecodeIntStr(b []byte) string {
	out := make([]byte, 0, len(b))
	for wordStart := 0; wordStart < len(b); wordStart += 4 {
		word := b[wordStart : wordStart+4]
		for j := 0; j < 4; j++ {
			out = append(out, safeChr(int(word[3-j])-128))
		}
	}
	if len(out) > 0 {
		out = out[:len(out)-1]
	}
	i := len(out)
	for i > 0 && out[i-1] == 0 {
		i--
	}
	return string(out[:i])
}

// FitsIntStr reports whether s can round-trip through an int-encoded string
// of the given word length, i.e. its encoded form (including terminator)
// fits within words*4 bytes.
func FitsIntStr(s string, words int) bool {
	return len(s) <= words*4-1
}

// ReadIntStr decodes an int-encoded string of the given word length from c.
func ReadIntStr(c *cursor.Cursor, words int) (string, error) {
	b, err := c.ReadBytes(words * 4)
	if err != nil {
		return "", err
	}
	return DecodeIntStr(b), nil
}

// WriteIntStr encodes s as an int-encoded string of the given word length
// and appends it to c. The caller must have validated FitsIntStr(s, words).
func WriteIntStr(c *cursor.Cursor, s string, words int) {
	c.Append(EncodeIntStr(s, words))
}

// Color is an RGBA color with components in 0..255, stored as four i32
// fields.
type Color struct {
	R, G, B, A int32
}

// ColorSize is the wire size of a Color.
const ColorSize = 4 * Int32Size

// ReadColor decodes a Color.
func ReadColor(c *cursor.Cursor) (Color, error) {
	var col Color
	var err error
	if col.R, err = c.ReadInt32(); err != nil {
		return Color{}, err
	}
	if col.G, err = c.ReadInt32(); err != nil {
		return Color{}, err
	}
	if col.B, err = c.ReadInt32(); err != nil {
		return Color{}, err
	}
	if col.A, err = c.ReadInt32(); err != nil {
		return Color{}, err
	}
	return col, nil
}

// WriteColor encodes a Color.
func WriteColor(c *cursor.Cursor, col Color) {
	c.WriteInt32(col.R)
	c.WriteInt32(col.G)
	c.WriteInt32(col.B)
	c.WriteInt32(col.A)
}

// Point is a 2D integer point, stored as two i32 fields.
type Point struct {
	X, Y int32
}

// PointSize is the wire size of a Point.
const PointSize = 2 * Int32Size

// ReadPoint decodes a Point.
func ReadPoint(c *cursor.Cursor) (Point, error) {
	var p Point
	var err error
	if p.X, err = c.ReadInt32(); err != nil {
		return Point{}, err
	}
	if p.Y, err = c.ReadInt32(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// WritePoint encodes a Point.
func WritePoint(c *cursor.Cursor, p Point) {
	c.WriteInt32(p.X)
	c.WriteInt32(p.Y)
}
