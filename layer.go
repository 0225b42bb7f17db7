package datafile

import (
	"fmt"

	"github.com/tilemap/datafile/internal/tilegrid"
	"github.com/tilemap/datafile/internal/wire"
)

// Layer is a single entry of the flat layer array. Exactly one of Tile,
// Quad or Sound is set, mirroring the on-disk layer-header type tag.
type Layer struct {
	Detail bool

	Tile  *TileLayer
	Quad  *QuadLayer
	Sound *SoundLayer
}

// TileLayer is a grid of fixed-size cells, optionally carrying one of the
// six special gameplay flags. Which flag (if any) it carries is managed
// through the owning Map's SetGameLayer/SetTeleLayer/... methods, not by
// mutating the layer directly, so that exclusivity across the map's layers
// is always maintained.
type TileLayer struct {
	Name                string
	Width, Height       int
	Grid                *tilegrid.Grid
	Color               Color
	ColorEnvelope       EnvelopeHandle
	ColorEnvelopeOffset int32
	Image               ImageHandle

	specialFlag int32
}

// NewTileLayer allocates a plain vanilla-grid tile layer with no special
// flag, no color tint applied (opaque white), and no image or envelope
// reference.
func NewTileLayer(name string, width, height int) *TileLayer {
	return &TileLayer{
		Name:          name,
		Width:         width,
		Height:        height,
		Grid:          tilegrid.New(tilegrid.Vanilla, width, height),
		Color:         Color{R: 255, G: 255, B: 255, A: 255},
		ColorEnvelope: NoEnvelope,
		Image:         NoImage,
	}
}

// IsGame, IsTele, IsSpeedup, IsFront, IsSwitch and IsTune report whether
// this layer currently carries that special gameplay flag.
func (t *TileLayer) IsGame() bool    { return t.specialFlag == wire.TileFlagGame }
func (t *TileLayer) IsTele() bool    { return t.specialFlag == wire.TileFlagTele }
func (t *TileLayer) IsSpeedup() bool { return t.specialFlag == wire.TileFlagSpeedup }
func (t *TileLayer) IsFront() bool   { return t.specialFlag == wire.TileFlagFront }
func (t *TileLayer) IsSwitch() bool  { return t.specialFlag == wire.TileFlagSwitch }
func (t *TileLayer) IsTune() bool    { return t.specialFlag == wire.TileFlagTune }

// QuadLayer is a type-5/QUADS layer. The quad records themselves are not
// decoded; Raw holds the data-pool blob referenced by DataPtr verbatim.
type QuadLayer struct {
	NumQuads int32
	Image    ImageHandle
	Name     string
	Raw      []byte
}

// SoundLayer is a type-5/SOUNDS (or SOUNDS_DEPRECATED) layer. Its body has
// no decoded schema; Raw holds the bytes following the 12-byte layer
// header verbatim.
type SoundLayer struct {
	Raw []byte
}

func requiredVariant(bit int32) tilegrid.Variant {
	switch bit {
	case wire.TileFlagTele:
		return tilegrid.Tele
	case wire.TileFlagSpeedup:
		return tilegrid.Speedup
	case wire.TileFlagSwitch:
		return tilegrid.Switch
	case wire.TileFlagTune:
		return tilegrid.Tune
	default:
		// GAME and FRONT both use the vanilla cell layout.
		return tilegrid.Vanilla
	}
}

func (m *Map) specialSlot(bit int32) *LayerHandle {
	switch bit {
	case wire.TileFlagGame:
		return &m.gameLayer
	case wire.TileFlagTele:
		return &m.teleLayer
	case wire.TileFlagSpeedup:
		return &m.speedupLayer
	case wire.TileFlagFront:
		return &m.frontLayer
	case wire.TileFlagSwitch:
		return &m.switchLayer
	case wire.TileFlagTune:
		return &m.tuneLayer
	default:
		return nil
	}
}

// setSpecial moves flag bit onto the tile layer at h, clearing it from
// whichever layer previously held it and resetting any other special flag
// h itself held (a layer carries at most one of the six flags at a time).
func (m *Map) setSpecial(bit int32, h LayerHandle) error {
	layer, err := m.Layer(h)
	if err != nil {
		return err
	}
	if layer.Tile == nil {
		return fmt.Errorf("%w: layer %d is not a tile layer", ErrInvariantViolation, h)
	}
	if layer.Tile.Grid.Variant() != requiredVariant(bit) {
		return fmt.Errorf("%w: layer %d has the wrong tile-grid variant for this flag", ErrInvariantViolation, h)
	}

	slot := m.specialSlot(bit)
	if prev := *slot; prev >= 0 && prev != h {
		if prevLayer, err := m.Layer(prev); err == nil && prevLayer.Tile != nil && prevLayer.Tile.specialFlag == bit {
			prevLayer.Tile.specialFlag = 0
		}
	}
	// A layer can hold at most one special flag; moving this one onto h
	// displaces whatever h previously held.
	if old := layer.Tile.specialFlag; old != 0 && old != bit {
		if oldSlot := m.specialSlot(old); oldSlot != nil && *oldSlot == h {
			*oldSlot = NoLayer
		}
	}
	layer.Tile.specialFlag = bit
	*slot = h
	return nil
}

// SetGameLayer makes h the unique layer carrying the GAME flag, moving the
// flag away from whichever layer held it before. h must be a vanilla-grid
// tile layer. The GAME flag cannot be cleared directly, only moved.
func (m *Map) SetGameLayer(h LayerHandle) error { return m.setSpecial(wire.TileFlagGame, h) }

// SetTeleLayer makes h the unique layer carrying the TELE flag. h must use
// the tele tile-grid variant.
func (m *Map) SetTeleLayer(h LayerHandle) error { return m.setSpecial(wire.TileFlagTele, h) }

// SetSpeedupLayer makes h the unique layer carrying the SPEEDUP flag. h
// must use the speedup tile-grid variant.
func (m *Map) SetSpeedupLayer(h LayerHandle) error { return m.setSpecial(wire.TileFlagSpeedup, h) }

// SetFrontLayer makes h the unique layer carrying the FRONT flag. h must
// be a vanilla-grid tile layer.
func (m *Map) SetFrontLayer(h LayerHandle) error { return m.setSpecial(wire.TileFlagFront, h) }

// SetSwitchLayer makes h the unique layer carrying the SWITCH flag. h must
// use the switch tile-grid variant.
func (m *Map) SetSwitchLayer(h LayerHandle) error { return m.setSpecial(wire.TileFlagSwitch, h) }

// SetTuneLayer makes h the unique layer carrying the TUNE flag. h must use
// the tune tile-grid variant.
func (m *Map) SetTuneLayer(h LayerHandle) error { return m.setSpecial(wire.TileFlagTune, h) }

func (m *Map) clearSpecial(bit int32) {
	slot := m.specialSlot(bit)
	if h := *slot; h >= 0 {
		if layer, err := m.Layer(h); err == nil && layer.Tile != nil {
			layer.Tile.specialFlag = 0
		}
	}
	*slot = NoLayer
}

// ClearTeleLayer, ClearSpeedupLayer, ClearFrontLayer, ClearSwitchLayer and
// ClearTuneLayer remove that special flag from the map entirely, leaving
// no layer carrying it. There is no ClearGameLayer: the GAME flag can only
// be moved to another layer, never removed outright.
func (m *Map) ClearTeleLayer()    { m.clearSpecial(wire.TileFlagTele) }
func (m *Map) ClearSpeedupLayer() { m.clearSpecial(wire.TileFlagSpeedup) }
func (m *Map) ClearFrontLayer()   { m.clearSpecial(wire.TileFlagFront) }
func (m *Map) ClearSwitchLayer()  { m.clearSpecial(wire.TileFlagSwitch) }
func (m *Map) ClearTuneLayer()    { m.clearSpecial(wire.TileFlagTune) }
