package datafile

import (
	"fmt"
	"strings"

	"github.com/tilemap/datafile/internal/container"
	"github.com/tilemap/datafile/internal/cursor"
	"github.com/tilemap/datafile/internal/tilegrid"
	"github.com/tilemap/datafile/internal/wire"
)

// Load parses data as a DataFile container and materializes it into a Map,
// resolving data-pool strings and blobs and classifying tile layers into
// their gameplay variant by flag.
func Load(data []byte) (*Map, error) {
	cr, err := container.Open(data)
	if err != nil {
		return nil, err
	}

	m := New()

	if cr.Count(wire.TypeVersion) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one version item", ErrInvariantViolation)
	}
	vBody, err := fetchItem(cr, wire.TypeVersion, 0, wire.VersionSize)
	if err != nil {
		return nil, err
	}
	v, err := wire.ReadVersion(cursor.New(vBody))
	if err != nil {
		return nil, err
	}
	if v.Version != wire.VersionVersion {
		return nil, fmt.Errorf("%w: version item version %d", ErrUnsupportedItemVersion, v.Version)
	}
	m.Version = v.Version

	if err := loadInfo(cr, m); err != nil {
		return nil, err
	}
	if err := loadImages(cr, m); err != nil {
		return nil, err
	}
	allPoints, err := loadEnvPoints(cr)
	if err != nil {
		return nil, err
	}
	if err := loadEnvelopes(cr, m, allPoints); err != nil {
		return nil, err
	}
	if err := loadSounds(cr, m); err != nil {
		return nil, err
	}
	if err := loadLayers(cr, m); err != nil {
		return nil, err
	}
	if err := loadGroups(cr, m); err != nil {
		return nil, err
	}

	if m.gameLayer == NoLayer {
		return nil, fmt.Errorf("%w: no layer carries the GAME flag", ErrInvariantViolation)
	}
	foundInGroup := false
	for _, g := range m.groups {
		for _, lh := range g.Layers {
			if lh == m.gameLayer {
				foundInGroup = true
			}
		}
	}
	if !foundInGroup {
		return nil, fmt.Errorf("%w: game layer does not belong to any group", ErrInvariantViolation)
	}

	return m, nil
}

// fetchItem retrieves item (typeID, index) and checks its declared size
// against the fixed schema size for kinds whose body has no variants.
func fetchItem(cr *container.Reader, typeID, index, expectedSize int) ([]byte, error) {
	body, err := cr.Item(typeID, index)
	if err != nil {
		return nil, err
	}
	if len(body) != expectedSize {
		return nil, fmt.Errorf("%w: type %d item %d is %d bytes, want %d", ErrSizeMismatch, typeID, index, len(body), expectedSize)
	}
	return body, nil
}

func readDataStr(cr *container.Reader, ptr int32) (string, error) {
	if ptr < 0 {
		return "", nil
	}
	b, err := cr.Blob(int(ptr))
	if err != nil {
		return "", err
	}
	if len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b), nil
}

func readSettings(cr *container.Reader, ptr int32) ([]string, error) {
	if ptr < 0 {
		return nil, nil
	}
	b, err := cr.Blob(int(ptr))
	if err != nil {
		return nil, err
	}
	parts := strings.Split(string(b), "\x00")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts, nil
}

func loadInfo(cr *container.Reader, m *Map) error {
	if cr.Count(wire.TypeInfo) != 1 {
		return fmt.Errorf("%w: expected exactly one info item", ErrInvariantViolation)
	}
	body, err := fetchItem(cr, wire.TypeInfo, 0, wire.InfoSize)
	if err != nil {
		return err
	}
	in, err := wire.ReadInfo(cursor.New(body))
	if err != nil {
		return err
	}
	if in.Version != wire.VersionInfo {
		return fmt.Errorf("%w: info item version %d", ErrUnsupportedItemVersion, in.Version)
	}
	if m.Info.Author, err = readDataStr(cr, in.AuthorPtr); err != nil {
		return err
	}
	if m.Info.MapVersion, err = readDataStr(cr, in.MapVersionPtr); err != nil {
		return err
	}
	if m.Info.Credits, err = readDataStr(cr, in.CreditsPtr); err != nil {
		return err
	}
	if m.Info.License, err = readDataStr(cr, in.LicensePtr); err != nil {
		return err
	}
	if m.Info.Settings, err = readSettings(cr, in.SettingsPtr); err != nil {
		return err
	}
	return nil
}

func loadImages(cr *container.Reader, m *Map) error {
	n := cr.Count(wire.TypeImage)
	for i := 0; i < n; i++ {
		body, err := fetchItem(cr, wire.TypeImage, i, wire.ImageSize)
		if err != nil {
			return err
		}
		wi, err := wire.ReadImage(cursor.New(body))
		if err != nil {
			return err
		}
		if wi.Version != wire.VersionImage {
			return fmt.Errorf("%w: image %d version %d", ErrUnsupportedItemVersion, i, wi.Version)
		}
		img := Image{Width: int(wi.Width), Height: int(wi.Height), External: wi.External != 0}
		if img.Name, err = readDataStr(cr, wi.NamePtr); err != nil {
			return err
		}
		if !img.External {
			pixels, err := cr.Blob(int(wi.DataPtr))
			if err != nil {
				return err
			}
			if want := img.Width * img.Height * 4; len(pixels) != want {
				return fmt.Errorf("%w: image %d pixel blob is %d bytes, want %d", ErrInvariantViolation, i, len(pixels), want)
			}
			img.Pixels = append([]byte(nil), pixels...)
		}
		m.AddImage(img)
	}
	return nil
}

func loadEnvPoints(cr *container.Reader) ([]wire.EnvPoint, error) {
	if cr.Count(wire.TypeEnvPoints) == 0 {
		return nil, nil
	}
	body, err := cr.Item(wire.TypeEnvPoints, 0)
	if err != nil {
		return nil, err
	}
	if len(body)%wire.EnvPointSize != 0 {
		return nil, fmt.Errorf("%w: envpoints body is %d bytes, not a multiple of %d", ErrSizeMismatch, len(body), wire.EnvPointSize)
	}
	c := cursor.New(body)
	out := make([]wire.EnvPoint, len(body)/wire.EnvPointSize)
	for i := range out {
		if out[i], err = wire.ReadEnvPoint(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func loadEnvelopes(cr *container.Reader, m *Map, allPoints []wire.EnvPoint) error {
	n := cr.Count(wire.TypeEnvelope)
	for i := 0; i < n; i++ {
		body, err := fetchItem(cr, wire.TypeEnvelope, i, wire.EnvelopeSize)
		if err != nil {
			return err
		}
		we, err := wire.ReadEnvelope(cursor.New(body))
		if err != nil {
			return err
		}
		if we.Version != wire.VersionEnvelope {
			return fmt.Errorf("%w: envelope %d version %d", ErrUnsupportedItemVersion, i, we.Version)
		}
		start, num := int(we.StartPoint), int(we.NumPoints)
		if start < 0 || num < 0 || start+num > len(allPoints) {
			return fmt.Errorf("%w: envelope %d points range [%d,%d) exceeds %d points", ErrOutOfRange, i, start, start+num, len(allPoints))
		}
		env := Envelope{Channels: we.Channels, Name: we.Name, Synchronized: we.Synchronized != 0}
		env.Points = make([]EnvPoint, num)
		for j, p := range allPoints[start : start+num] {
			env.Points[j] = EnvPoint{Time: p.Time, Curve: p.Curve, Values: p.Values}
		}
		m.AddEnvelope(env)
	}
	return nil
}

func loadSounds(cr *container.Reader, m *Map) error {
	n := cr.Count(wire.TypeSound)
	for i := 0; i < n; i++ {
		body, err := fetchItem(cr, wire.TypeSound, i, wire.SoundSize)
		if err != nil {
			return err
		}
		ws, err := wire.ReadSound(cursor.New(body))
		if err != nil {
			return err
		}
		s := Sound{External: ws.External != 0}
		if s.Name, err = readDataStr(cr, ws.NamePtr); err != nil {
			return err
		}
		if !s.External {
			samples, err := cr.Blob(int(ws.DataPtr))
			if err != nil {
				return err
			}
			if len(samples) != int(ws.DataSize) {
				return fmt.Errorf("%w: sound %d is %d bytes, want %d", ErrInvariantViolation, i, len(samples), ws.DataSize)
			}
			s.Samples = append([]byte(nil), samples...)
		}
		m.AddSound(s)
	}
	return nil
}

func loadLayers(cr *container.Reader, m *Map) error {
	n := cr.Count(wire.TypeLayer)
	for i := 0; i < n; i++ {
		body, err := cr.Item(wire.TypeLayer, i)
		if err != nil {
			return err
		}
		c := cursor.New(body)
		lh, err := wire.ReadLayerHeader(c)
		if err != nil {
			return err
		}
		detail := lh.Flags&wire.LayerFlagDetail != 0

		switch lh.Type {
		case wire.LayerTypeTiles:
			if len(body) != wire.LayerHeaderSize+wire.TileLayerBodySize {
				return fmt.Errorf("%w: tile layer %d is %d bytes, want %d", ErrSizeMismatch, i, len(body), wire.LayerHeaderSize+wire.TileLayerBodySize)
			}
			layer, flagBit, err := decodeTileLayer(cr, c, i)
			if err != nil {
				return err
			}
			layer.Detail = detail
			h := m.AddLayer(layer)
			if slot := m.specialSlot(flagBit); slot != nil {
				if *slot != NoLayer {
					return fmt.Errorf("%w: more than one layer carries flag %d", ErrInvariantViolation, flagBit)
				}
				*slot = h
			}
		case wire.LayerTypeQuads:
			if len(body) != wire.LayerHeaderSize+wire.QuadLayerBodySize {
				return fmt.Errorf("%w: quad layer %d is %d bytes, want %d", ErrSizeMismatch, i, len(body), wire.LayerHeaderSize+wire.QuadLayerBodySize)
			}
			qb, err := wire.ReadQuadLayerBody(c)
			if err != nil {
				return err
			}
			if qb.Version != wire.VersionQuadBody {
				return fmt.Errorf("%w: quad layer %d version %d", ErrUnsupportedItemVersion, i, qb.Version)
			}
			var raw []byte
			if qb.DataPtr >= 0 {
				if raw, err = cr.Blob(int(qb.DataPtr)); err != nil {
					return err
				}
				raw = append([]byte(nil), raw...)
			}
			m.AddLayer(&Layer{Detail: detail, Quad: &QuadLayer{
				NumQuads: qb.NumQuads, Image: ImageHandle(qb.ImageRef), Name: qb.Name, Raw: raw,
			}})
		case wire.LayerTypeSounds, wire.LayerTypeSoundsDeprecated:
			ob, err := wire.ReadOpaqueLayerBody(c, len(body)-wire.LayerHeaderSize)
			if err != nil {
				return err
			}
			m.AddLayer(&Layer{Detail: detail, Sound: &SoundLayer{Raw: ob.Raw}})
		default:
			return fmt.Errorf("%w: layer %d has type %d", ErrUnknownKind, i, lh.Type)
		}
	}
	return nil
}

func decodeTileLayer(cr *container.Reader, c *cursor.Cursor, index int) (*Layer, int32, error) {
	tb, err := wire.ReadTileLayerBody(c)
	if err != nil {
		return nil, 0, err
	}
	if tb.Version != wire.VersionTileBody {
		return nil, 0, fmt.Errorf("%w: tile layer %d version %d", ErrUnsupportedItemVersion, index, tb.Version)
	}

	variant := tilegrid.Vanilla
	dataPtr := tb.DataPtr
	flagBit := int32(0)
	switch {
	case tb.Flags&wire.TileFlagTele != 0:
		variant, dataPtr, flagBit = tilegrid.Tele, tb.DataTelePtr, wire.TileFlagTele
	case tb.Flags&wire.TileFlagSpeedup != 0:
		variant, dataPtr, flagBit = tilegrid.Speedup, tb.DataSpeedupPtr, wire.TileFlagSpeedup
	case tb.Flags&wire.TileFlagSwitch != 0:
		variant, dataPtr, flagBit = tilegrid.Switch, tb.DataSwitchPtr, wire.TileFlagSwitch
	case tb.Flags&wire.TileFlagTune != 0:
		variant, dataPtr, flagBit = tilegrid.Tune, tb.DataTunePtr, wire.TileFlagTune
	case tb.Flags&wire.TileFlagFront != 0:
		variant, dataPtr, flagBit = tilegrid.Vanilla, tb.DataFrontPtr, wire.TileFlagFront
	case tb.Flags&wire.TileFlagGame != 0:
		variant, dataPtr, flagBit = tilegrid.Vanilla, tb.DataPtr, wire.TileFlagGame
	}

	if dataPtr < 0 {
		return nil, 0, fmt.Errorf("%w: tile layer %d has no data pointer for its variant", ErrInvariantViolation, index)
	}
	raw, err := cr.Blob(int(dataPtr))
	if err != nil {
		return nil, 0, err
	}
	grid, err := tilegrid.FromBytes(variant, int(tb.Width), int(tb.Height), append([]byte(nil), raw...))
	if err != nil {
		return nil, 0, err
	}

	tile := &TileLayer{
		Name:                tb.Name,
		Width:               int(tb.Width),
		Height:              int(tb.Height),
		Grid:                grid,
		Color:               Color{R: tb.Color.R, G: tb.Color.G, B: tb.Color.B, A: tb.Color.A},
		ColorEnvelope:       EnvelopeHandle(tb.ColorEnvelopeRef),
		ColorEnvelopeOffset: tb.ColorEnvelopeOffset,
		Image:               ImageHandle(tb.ImageRef),
		specialFlag:         flagBit,
	}
	return &Layer{Tile: tile}, flagBit, nil
}

func loadGroups(cr *container.Reader, m *Map) error {
	n := cr.Count(wire.TypeGroup)
	if n == 0 {
		return fmt.Errorf("%w: expected at least one group", ErrInvariantViolation)
	}
	for i := 0; i < n; i++ {
		body, err := fetchItem(cr, wire.TypeGroup, i, wire.GroupSize)
		if err != nil {
			return err
		}
		wg, err := wire.ReadGroup(cursor.New(body))
		if err != nil {
			return err
		}
		if wg.Version != wire.VersionGroup {
			return fmt.Errorf("%w: group %d version %d", ErrUnsupportedItemVersion, i, wg.Version)
		}
		start, num := int(wg.StartLayer), int(wg.NumLayers)
		if num > 0 && (start < 0 || start+num > m.NumLayers()) {
			return fmt.Errorf("%w: group %d layer range [%d,%d) exceeds %d layers", ErrOutOfRange, i, start, start+num, m.NumLayers())
		}
		g := &Group{
			XOffset: wg.XOffset, YOffset: wg.YOffset,
			XParallax: wg.XParallax, YParallax: wg.YParallax,
			Clipping:  wg.Clipping != 0,
			ClipX:     wg.ClipX, ClipY: wg.ClipY,
			ClipWidth: wg.ClipWidth, ClipHeight: wg.ClipHeight,
			Name: wg.Name,
		}
		g.Layers = make([]LayerHandle, num)
		for j := 0; j < num; j++ {
			g.Layers[j] = LayerHandle(start + j)
		}
		m.AddGroup(g)
	}
	return nil
}
