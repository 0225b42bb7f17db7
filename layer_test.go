package datafile

import (
	"testing"

	"github.com/tilemap/datafile/internal/tilegrid"
)

func TestFlagTransferMovesGameFlag(t *testing.T) {
	m := New()
	a := m.AddLayer(&Layer{Tile: NewTileLayer("A", 4, 4)})
	b := m.AddLayer(&Layer{Tile: NewTileLayer("B", 4, 4)})

	if err := m.SetGameLayer(a); err != nil {
		t.Fatal(err)
	}
	layerA, _ := m.Layer(a)
	if !layerA.Tile.IsGame() {
		t.Fatal("A should carry GAME after SetGameLayer(a)")
	}

	if err := m.SetGameLayer(b); err != nil {
		t.Fatal(err)
	}
	layerB, _ := m.Layer(b)
	if layerA.Tile.IsGame() {
		t.Error("A.IsGame() should be false after moving GAME to B")
	}
	if !layerB.Tile.IsGame() {
		t.Error("B.IsGame() should be true after SetGameLayer(b)")
	}
	if m.GameLayer() != b {
		t.Errorf("GameLayer() = %d, want %d", m.GameLayer(), b)
	}
}

func TestSetSpecialRejectsWrongVariant(t *testing.T) {
	m := New()
	h := m.AddLayer(&Layer{Tile: NewTileLayer("plain", 2, 2)})
	if err := m.SetTeleLayer(h); err == nil {
		t.Error("expected an error assigning TELE to a vanilla-grid layer")
	}
}

func TestSetSpecialRejectsNonTileLayer(t *testing.T) {
	m := New()
	h := m.AddLayer(&Layer{Quad: &QuadLayer{}})
	if err := m.SetGameLayer(h); err == nil {
		t.Error("expected an error assigning GAME to a quad layer")
	}
}

func TestClearSpecialRemovesFlag(t *testing.T) {
	m := New()
	tele := NewTileLayer("tele", 2, 2)
	tele.Grid = tilegrid.New(tilegrid.Tele, 2, 2)
	h := m.AddLayer(&Layer{Tile: tele})
	layer, _ := m.Layer(h)

	if err := m.SetTeleLayer(h); err != nil {
		t.Fatal(err)
	}
	if m.TeleLayer() != h {
		t.Fatalf("TeleLayer() = %d, want %d", m.TeleLayer(), h)
	}
	m.ClearTeleLayer()
	if m.TeleLayer() != NoLayer {
		t.Errorf("TeleLayer() = %d after clear, want NoLayer", m.TeleLayer())
	}
	if layer.Tile.IsTele() {
		t.Error("layer should no longer report IsTele() after ClearTeleLayer")
	}
}

func TestSettingSameFlagTwiceIsIdempotent(t *testing.T) {
	m := New()
	h := m.AddLayer(&Layer{Tile: NewTileLayer("A", 2, 2)})
	if err := m.SetGameLayer(h); err != nil {
		t.Fatal(err)
	}
	if err := m.SetGameLayer(h); err != nil {
		t.Fatal(err)
	}
	if m.GameLayer() != h {
		t.Errorf("GameLayer() = %d, want %d", m.GameLayer(), h)
	}
}
