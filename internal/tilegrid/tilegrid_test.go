package tilegrid

import (
	"errors"
	"testing"
)

func TestBytesPerCellPerVariant(t *testing.T) {
	tests := []struct {
		variant Variant
		want    int
	}{
		{Vanilla, 4},
		{Switch, 4},
		{Tele, 2},
		{Tune, 2},
		{Speedup, 6},
	}
	for _, tt := range tests {
		g := New(tt.variant, 1, 1)
		if got := g.BytesPerCell(); got != tt.want {
			t.Errorf("variant %d: BytesPerCell() = %d, want %d", tt.variant, got, tt.want)
		}
	}
}

func TestSetByteGetByte(t *testing.T) {
	g := New(Vanilla, 3, 2)
	if err := g.SetByte(2, 1, 0, 42); err != nil {
		t.Fatal(err)
	}
	got, err := g.Byte(2, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	// A neighboring cell must be untouched.
	zero, err := g.Byte(1, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if zero != 0 {
		t.Errorf("neighboring cell byte = %d, want 0", zero)
	}
}

func TestIDByteByVariant(t *testing.T) {
	tests := []struct {
		variant Variant
		hasID   bool
	}{
		{Vanilla, true},
		{Tele, true},
		{Speedup, true},
		{Switch, true},
		{Tune, false},
	}
	for _, tt := range tests {
		g := New(tt.variant, 1, 1)
		err := g.SetID(0, 0, 7)
		if tt.hasID && err != nil {
			t.Errorf("variant %d: SetID failed: %v", tt.variant, err)
		}
		if !tt.hasID && err == nil {
			t.Errorf("variant %d: expected SetID to fail, no id field defined", tt.variant)
		}
		if tt.hasID {
			got, err := g.ID(0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if got != 7 {
				t.Errorf("variant %d: ID() = %d, want 7", tt.variant, got)
			}
		}
	}
}

func TestHasFlagOnlyVanilla(t *testing.T) {
	g := New(Vanilla, 1, 1)
	if err := g.SetByte(0, 0, 1, 0x01); err != nil {
		t.Fatal(err)
	}
	has, err := g.HasFlag(0, 0, 0x01)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("expected flag bit 0x01 set")
	}
	has, err = g.HasFlag(0, 0, 0x02)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("expected flag bit 0x02 unset")
	}

	tele := New(Tele, 1, 1)
	if _, err := tele.HasFlag(0, 0, 0x01); err == nil {
		t.Error("tele variant has no flags byte, expected an error")
	}
}

func TestOutOfRangeCoordinates(t *testing.T) {
	g := New(Vanilla, 2, 2)
	tests := [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}}
	for _, xy := range tests {
		if _, err := g.Byte(xy[0], xy[1], 0); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Byte(%d,%d,0): got %v, want ErrOutOfRange", xy[0], xy[1], err)
		}
	}
}

func TestFromBytesSizeMismatch(t *testing.T) {
	if _, err := FromBytes(Vanilla, 2, 2, make([]byte, 15)); err == nil {
		t.Error("expected a size-mismatch error for a 2x2 vanilla grid (needs 16 bytes)")
	}
}

func TestFromBytesWrapsWithoutCopy(t *testing.T) {
	raw := make([]byte, 2*2*4)
	raw[0] = 9
	g, err := FromBytes(Vanilla, 2, 2, raw)
	if err != nil {
		t.Fatal(err)
	}
	if g.Bytes()[0] != 9 {
		t.Errorf("FromBytes did not wrap the given buffer")
	}
}

func TestReleaseThenNewReusesPool(t *testing.T) {
	g1 := New(Vanilla, 4, 4)
	if err := g1.SetByte(0, 0, 0, 5); err != nil {
		t.Fatal(err)
	}
	g1.Release()

	g2 := New(Vanilla, 4, 4)
	got, err := g2.Byte(0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("pooled buffer was not cleared: byte = %d", got)
	}
}
