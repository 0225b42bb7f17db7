package prim

import (
	"testing"

	"github.com/tilemap/datafile/internal/cursor"
)

func TestInt32RoundTrip(t *testing.T) {
	tests := []int32{0, 1, -1, 127, -128, 1 << 30, -(1 << 30)}
	for _, v := range tests {
		c := cursor.NewWriter()
		WriteInt32(c, v)
		rc := cursor.New(c.Bytes())
		got, err := ReadInt32(rc)
		if err != nil {
			t.Fatalf("ReadInt32(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d, got %d", v, got)
		}
	}
}

func TestRawStr4RoundTrip(t *testing.T) {
	c := cursor.NewWriter()
	if err := WriteRawStr4(c, "DATA"); err != nil {
		t.Fatal(err)
	}
	rc := cursor.New(c.Bytes())
	got, err := ReadRawStr4(rc)
	if err != nil {
		t.Fatal(err)
	}
	if got != "DATA" {
		t.Errorf("got %q, want DATA", got)
	}
}

func TestWriteRawStr4WrongLength(t *testing.T) {
	c := cursor.NewWriter()
	if err := WriteRawStr4(c, "AB"); err == nil {
		t.Error("expected an error for a non-4-byte tag")
	}
}

func TestIntStrRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		words int
	}{
		{"empty 3-word", "", 3},
		{"short name", "air", 3},
		{"max length 3-word", "12345678901", 3}, // 11 bytes, fits in 3*4-1
		{"empty 8-word", "", 8},
		{"envelope name", "tune_value 5", 8},
		{"max length 8-word", "1234567890123456789012345678901", 8}, // 31 bytes

	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !FitsIntStr(tt.s, tt.words) {
				t.Fatalf("FitsIntStr(%q, %d) = false, test input too long", tt.s, tt.words)
			}
			c := cursor.NewWriter()
			WriteIntStr(c, tt.s, tt.words)
			if got := c.Len(); got != tt.words*4 {
				t.Fatalf("encoded length %d, want %d", got, tt.words*4)
			}
			rc := cursor.New(c.Bytes())
			got, err := ReadIntStr(rc, tt.words)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.s {
				t.Errorf("round trip %q, got %q", tt.s, got)
			}
		})
	}
}

func TestFitsIntStr(t *testing.T) {
	if !FitsIntStr("abc", 1) {
		t.Error("3-byte string should fit a 1-word (3-byte) int-str")
	}
	if FitsIntStr("abcd", 1) {
		t.Error("4-byte string should not fit a 1-word (3-byte) int-str")
	}
}

func TestColorRoundTrip(t *testing.T) {
	want := Color{R: 255, G: 128, B: 0, A: 255}
	c := cursor.NewWriter()
	WriteColor(c, want)
	rc := cursor.New(c.Bytes())
	got, err := ReadColor(rc)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPointRoundTrip(t *testing.T) {
	want := Point{X: -5, Y: 1000}
	c := cursor.NewWriter()
	WritePoint(c, want)
	rc := cursor.New(c.Bytes())
	got, err := ReadPoint(rc)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
