package datafile

import (
	"errors"
	"testing"
)

func TestNewMapHasNoSpecialLayers(t *testing.T) {
	m := New()
	for _, h := range []LayerHandle{m.GameLayer(), m.TeleLayer(), m.SpeedupLayer(), m.FrontLayer(), m.SwitchLayer(), m.TuneLayer()} {
		if h != NoLayer {
			t.Errorf("new map has a special layer assigned: %d", h)
		}
	}
}

func TestArenaHandlesAreSequential(t *testing.T) {
	m := New()
	h0 := m.AddImage(Image{Name: "a"})
	h1 := m.AddImage(Image{Name: "b"})
	if h0 != 0 || h1 != 1 {
		t.Fatalf("got handles %d, %d, want 0, 1", h0, h1)
	}
	if m.NumImages() != 2 {
		t.Errorf("NumImages() = %d, want 2", m.NumImages())
	}
	img, err := m.Image(h1)
	if err != nil {
		t.Fatal(err)
	}
	if img.Name != "b" {
		t.Errorf("Image(%d).Name = %q, want b", h1, img.Name)
	}
}

func TestImageOutOfRange(t *testing.T) {
	m := New()
	if _, err := m.Image(0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("got %v, want ErrOutOfRange", err)
	}
	if _, err := m.Image(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative handle: got %v, want ErrOutOfRange", err)
	}
}
