// Package cursor provides a bounded in-memory read/write cursor over a byte
// buffer, used by the codec layers to decode and encode the DataFile wire
// format without copying the whole buffer at every step.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a read would consume more bytes than remain
// in the buffer.
var ErrTruncated = errors.New("cursor: truncated read")

// ErrOutOfRange is returned when Seek is given a position outside the
// buffer. The bound applies to every cursor, including one from NewWriter.
var ErrOutOfRange = errors.New("cursor: seek out of range")

// Cursor is a position-tracking view over a byte slice. Reads advance the
// position and fail once they would run past the end of the buffer; writes
// always append and grow the buffer.
type Cursor struct {
	data []byte
	pos  int
}

// New wraps an existing byte slice for reading.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// NewWriter returns an empty cursor suitable for building up a buffer with
// Append/Write*.
func NewWriter() *Cursor {
	return &Cursor{data: make([]byte, 0, 256)}
}

// Len returns the total length of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Tell returns the current read/write position.
func (c *Cursor) Tell() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Seek moves the cursor to an absolute position. Positions beyond the end
// of the buffer are rejected with ErrOutOfRange.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return fmt.Errorf("%w: pos=%d len=%d", ErrOutOfRange, pos, len(c.data))
	}
	c.pos = pos
	return nil
}

// Bytes returns the full underlying buffer.
func (c *Cursor) Bytes() []byte {
	return c.data
}

// ReadBytes reads and returns the next n bytes, advancing the cursor. The
// returned slice aliases the underlying buffer and must not be retained
// past further writes to it.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("%w: want=%d remaining=%d", ErrTruncated, n, c.Remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadInt32 reads a little-endian signed 32-bit integer.
func (c *Cursor) ReadInt32() (int32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Append writes raw bytes to the end of the buffer and advances the cursor
// to the new end.
func (c *Cursor) Append(b []byte) {
	c.data = append(c.data, b...)
	c.pos = len(c.data)
}

// WriteInt32 appends a little-endian signed 32-bit integer.
func (c *Cursor) WriteInt32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	c.Append(b[:])
}
