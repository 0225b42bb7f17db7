package cursor

import (
	"errors"
	"testing"
)

func TestReadBytesAdvancesAndBounds(t *testing.T) {
	c := New([]byte{1, 2, 3, 4, 5})
	b, err := c.ReadBytes(3)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != string([]byte{1, 2, 3}) {
		t.Errorf("got %v", b)
	}
	if c.Tell() != 3 {
		t.Errorf("Tell() = %d, want 3", c.Tell())
	}
	if c.Remaining() != 2 {
		t.Errorf("Remaining() = %d, want 2", c.Remaining())
	}

	if _, err := c.ReadBytes(10); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadBytes past end: got %v, want ErrTruncated", err)
	}
}

func TestReadInt32LittleEndian(t *testing.T) {
	c := New([]byte{0x01, 0x00, 0x00, 0x00})
	v, err := c.ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Errorf("got %d, want 1", v)
	}
}

func TestSeekBounds(t *testing.T) {
	c := New([]byte{1, 2, 3})
	if err := c.Seek(2); err != nil {
		t.Fatal(err)
	}
	if c.Tell() != 2 {
		t.Errorf("Tell() = %d, want 2", c.Tell())
	}
	if err := c.Seek(4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Seek past end: got %v, want ErrOutOfRange", err)
	}
	if err := c.Seek(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Seek negative: got %v, want ErrOutOfRange", err)
	}
}

func TestWriterAppendAndInt32(t *testing.T) {
	c := NewWriter()
	c.Append([]byte{0xAA})
	c.WriteInt32(-1)
	want := []byte{0xAA, 0xFF, 0xFF, 0xFF, 0xFF}
	if string(c.Bytes()) != string(want) {
		t.Errorf("got % x, want % x", c.Bytes(), want)
	}
}
