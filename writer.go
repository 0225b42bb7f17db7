package datafile

import (
	"bytes"
	"fmt"

	"github.com/tilemap/datafile/internal/container"
	"github.com/tilemap/datafile/internal/cursor"
	"github.com/tilemap/datafile/internal/prim"
	"github.com/tilemap/datafile/internal/tilegrid"
	"github.com/tilemap/datafile/internal/wire"
)

// Save walks the map and emits a container byte-identical in structure to
// a freshly read one, modulo legitimate reordering (layers are laid out in
// group-iteration order) and data-pool recompression.
func (m *Map) Save() ([]byte, error) {
	w := container.NewWriter()

	c := cursor.NewWriter()
	wire.WriteVersion(c, wire.Version{Version: wire.VersionVersion})
	w.AddItem(wire.TypeVersion, c.Bytes())

	if err := saveInfo(w, m); err != nil {
		return nil, err
	}
	saveImages(w, m)
	allPoints := saveEnvelopes(w, m)
	if len(allPoints) > 0 {
		c := cursor.NewWriter()
		for _, p := range allPoints {
			wire.WriteEnvPoint(c, p)
		}
		w.AddItem(wire.TypeEnvPoints, c.Bytes())
	}

	layerIndex, ordered := m.orderLayers()
	for _, h := range ordered {
		layer := m.layers[h]
		body, err := encodeLayer(w, layer)
		if err != nil {
			return nil, err
		}
		w.AddItem(wire.TypeLayer, body)
	}

	if err := saveGroups(w, m, layerIndex); err != nil {
		return nil, err
	}
	saveSounds(w, m)

	return w.Assemble(), nil
}

func writeDataStrOrNone(w *container.Writer, s string) int32 {
	if s == "" {
		return -1
	}
	return int32(w.AddData(append([]byte(s), 0)))
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func saveInfo(w *container.Writer, m *Map) error {
	authorPtr := writeDataStrOrNone(w, m.Info.Author)
	mapVersionPtr := writeDataStrOrNone(w, m.Info.MapVersion)
	creditsPtr := writeDataStrOrNone(w, m.Info.Credits)
	licensePtr := writeDataStrOrNone(w, m.Info.License)

	settingsPtr := int32(-1)
	if len(m.Info.Settings) > 0 {
		var buf bytes.Buffer
		for _, s := range m.Info.Settings {
			buf.WriteString(s)
			buf.WriteByte(0)
		}
		settingsPtr = int32(w.AddData(buf.Bytes()))
	}

	c := cursor.NewWriter()
	wire.WriteInfo(c, wire.Info{
		Version: wire.VersionInfo, AuthorPtr: authorPtr, MapVersionPtr: mapVersionPtr,
		CreditsPtr: creditsPtr, LicensePtr: licensePtr, SettingsPtr: settingsPtr,
	})
	w.AddItem(wire.TypeInfo, c.Bytes())
	return nil
}

func saveImages(w *container.Writer, m *Map) {
	for _, img := range m.images {
		namePtr := writeDataStrOrNone(w, img.Name)
		dataPtr := int32(-1)
		external := int32(0)
		if img.External {
			external = 1
		} else {
			dataPtr = int32(w.AddData(img.Pixels))
		}
		c := cursor.NewWriter()
		wire.WriteImage(c, wire.Image{
			Version: wire.VersionImage, Width: int32(img.Width), Height: int32(img.Height),
			External: external, NamePtr: namePtr, DataPtr: dataPtr,
		})
		w.AddItem(wire.TypeImage, c.Bytes())
	}
}

func saveEnvelopes(w *container.Writer, m *Map) []wire.EnvPoint {
	var allPoints []wire.EnvPoint
	for _, env := range m.envelopes {
		startPoint := int32(len(allPoints))
		for _, p := range env.Points {
			allPoints = append(allPoints, wire.EnvPoint{Time: p.Time, Curve: p.Curve, Values: p.Values})
		}
		c := cursor.NewWriter()
		wire.WriteEnvelope(c, wire.Envelope{
			Version: wire.VersionEnvelope, Channels: env.Channels, StartPoint: startPoint,
			NumPoints: int32(len(env.Points)), Name: env.Name, Synchronized: boolToInt32(env.Synchronized),
		})
		w.AddItem(wire.TypeEnvelope, c.Bytes())
	}
	return allPoints
}

func saveSounds(w *container.Writer, m *Map) {
	for _, s := range m.sounds {
		namePtr := writeDataStrOrNone(w, s.Name)
		dataPtr := int32(-1)
		dataSize := int32(0)
		external := int32(0)
		if s.External {
			external = 1
		} else {
			dataPtr = int32(w.AddData(s.Samples))
			dataSize = int32(len(s.Samples))
		}
		c := cursor.NewWriter()
		wire.WriteSound(c, wire.Sound{
			Version: 1, External: external, NamePtr: namePtr, DataPtr: dataPtr, DataSize: dataSize,
		})
		w.AddItem(wire.TypeSound, c.Bytes())
	}
}

// orderLayers assigns each layer handle its on-disk index: groups are
// walked in order and their member layers concatenated, so every group's
// window is a contiguous range; layers belonging to no group (not
// expected in a well-formed map) are appended at the end.
func (m *Map) orderLayers() (map[LayerHandle]int32, []LayerHandle) {
	index := make(map[LayerHandle]int32, len(m.layers))
	ordered := make([]LayerHandle, 0, len(m.layers))
	for _, g := range m.groups {
		for _, h := range g.Layers {
			if _, seen := index[h]; seen {
				continue
			}
			index[h] = int32(len(ordered))
			ordered = append(ordered, h)
		}
	}
	for h := range m.layers {
		lh := LayerHandle(h)
		if _, seen := index[lh]; !seen {
			index[lh] = int32(len(ordered))
			ordered = append(ordered, lh)
		}
	}
	return index, ordered
}

func saveGroups(w *container.Writer, m *Map, layerIndex map[LayerHandle]int32) error {
	for _, g := range m.groups {
		start := int32(0)
		if len(g.Layers) > 0 {
			start = layerIndex[g.Layers[0]]
			for i, h := range g.Layers {
				if layerIndex[h] != start+int32(i) {
					return fmt.Errorf("%w: group %q layers are not contiguous on disk", ErrInvariantViolation, g.Name)
				}
			}
		}
		c := cursor.NewWriter()
		wire.WriteGroup(c, wire.Group{
			Version: wire.VersionGroup, XOffset: g.XOffset, YOffset: g.YOffset,
			XParallax: g.XParallax, YParallax: g.YParallax,
			StartLayer: start, NumLayers: int32(len(g.Layers)),
			Clipping: boolToInt32(g.Clipping), ClipX: g.ClipX, ClipY: g.ClipY,
			ClipWidth: g.ClipWidth, ClipHeight: g.ClipHeight, Name: g.Name,
		})
		w.AddItem(wire.TypeGroup, c.Bytes())
	}
	return nil
}

// compatibilityBlob registers a zero-filled vanilla-layout blob so that
// clients reading only the vanilla data_ptr of a variant tile layer still
// see a correctly sized, if inert, grid. The scratch grid is pool-backed
// and released once its bytes are copied into the writer's data pool.
func compatibilityBlob(w *container.Writer, width, height int) int32 {
	g := tilegrid.New(tilegrid.Vanilla, width, height)
	ptr := int32(w.AddData(g.Bytes()))
	g.Release()
	return ptr
}

func encodeLayer(w *container.Writer, layer *Layer) ([]byte, error) {
	c := cursor.NewWriter()
	flags := int32(0)
	if layer.Detail {
		flags |= wire.LayerFlagDetail
	}

	switch {
	case layer.Tile != nil:
		t := layer.Tile
		wire.WriteLayerHeader(c, wire.LayerHeader{Version: -1, Type: wire.LayerTypeTiles, Flags: flags})
		dataPtr := int32(w.AddData(t.Grid.Bytes()))
		tb := wire.TileLayerBody{
			Version: wire.VersionTileBody, Width: int32(t.Width), Height: int32(t.Height),
			Flags: t.specialFlag,
			Color: prim.Color{R: t.Color.R, G: t.Color.G, B: t.Color.B, A: t.Color.A},
			ColorEnvelopeRef: int32(t.ColorEnvelope), ColorEnvelopeOffset: t.ColorEnvelopeOffset,
			ImageRef: int32(t.Image), Name: t.Name,
			DataPtr: -1, DataTelePtr: -1, DataSpeedupPtr: -1, DataFrontPtr: -1, DataSwitchPtr: -1, DataTunePtr: -1,
		}
		switch t.specialFlag {
		case wire.TileFlagGame:
			tb.DataPtr = dataPtr
		case wire.TileFlagFront:
			tb.DataFrontPtr = dataPtr
			tb.DataPtr = compatibilityBlob(w, t.Width, t.Height)
		case wire.TileFlagTele:
			tb.DataTelePtr = dataPtr
			tb.DataPtr = compatibilityBlob(w, t.Width, t.Height)
		case wire.TileFlagSpeedup:
			tb.DataSpeedupPtr = dataPtr
			tb.DataPtr = compatibilityBlob(w, t.Width, t.Height)
		case wire.TileFlagSwitch:
			tb.DataSwitchPtr = dataPtr
			tb.DataPtr = compatibilityBlob(w, t.Width, t.Height)
		case wire.TileFlagTune:
			tb.DataTunePtr = dataPtr
			tb.DataPtr = compatibilityBlob(w, t.Width, t.Height)
		default:
			tb.DataPtr = dataPtr
		}
		wire.WriteTileLayerBody(c, tb)

	case layer.Quad != nil:
		q := layer.Quad
		wire.WriteLayerHeader(c, wire.LayerHeader{Version: -1, Type: wire.LayerTypeQuads, Flags: flags})
		dataPtr := int32(-1)
		if len(q.Raw) > 0 {
			dataPtr = int32(w.AddData(q.Raw))
		}
		wire.WriteQuadLayerBody(c, wire.QuadLayerBody{
			Version: wire.VersionQuadBody, NumQuads: q.NumQuads, DataPtr: dataPtr,
			ImageRef: int32(q.Image), Name: q.Name,
		})

	case layer.Sound != nil:
		wire.WriteLayerHeader(c, wire.LayerHeader{Version: -1, Type: wire.LayerTypeSounds, Flags: flags})
		wire.WriteOpaqueLayerBody(c, wire.OpaqueLayerBody{Raw: layer.Sound.Raw})

	default:
		return nil, fmt.Errorf("%w: layer has no kind set", ErrInvariantViolation)
	}

	return c.Bytes(), nil
}
