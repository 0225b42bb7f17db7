// Package datafile reads and writes the binary map file format of a 2D
// tile-based game: a container envelope wrapping version-stamped item
// records, materialized into a tree of groups holding typed layers plus
// shared image and envelope resources.
package datafile

import "fmt"

// ImageHandle, EnvelopeHandle, LayerHandle and GroupHandle address items in
// a Map's per-kind arenas. They are dense, map-scoped integers, not stable
// across separate Load calls, and -1 denotes "no reference" the way the
// on-disk format uses -1 for an absent index.
type (
	ImageHandle    int32
	EnvelopeHandle int32
	SoundHandle    int32
	LayerHandle    int32
	GroupHandle    int32
)

// NoImage, NoEnvelope, NoSound, NoLayer and NoGroup are the "absent
// reference" values for their respective handle types.
const (
	NoImage    ImageHandle    = -1
	NoEnvelope EnvelopeHandle = -1
	NoSound    SoundHandle    = -1
	NoLayer    LayerHandle    = -1
	NoGroup    GroupHandle    = -1
)

// Info holds the map's global metadata, mirroring the single type-1 item.
type Info struct {
	Author     string
	MapVersion string
	Credits    string
	License    string
	Settings   []string
}

// Map is the root in-memory object model: an arena per item kind plus the
// cached handles of the six special gameplay layers. A Map is exclusively
// owned by its caller; nothing in this package keeps process-wide state.
type Map struct {
	Version int32
	Info    Info

	images    []Image
	envelopes []Envelope
	sounds    []Sound
	layers    []*Layer
	groups    []*Group

	gameLayer    LayerHandle
	teleLayer    LayerHandle
	speedupLayer LayerHandle
	frontLayer   LayerHandle
	switchLayer  LayerHandle
	tuneLayer    LayerHandle
}

// New returns an empty map with no items and no special layers assigned.
func New() *Map {
	return &Map{
		Version:      1,
		gameLayer:    NoLayer,
		teleLayer:    NoLayer,
		speedupLayer: NoLayer,
		frontLayer:   NoLayer,
		switchLayer:  NoLayer,
		tuneLayer:    NoLayer,
	}
}

// AddImage appends img to the image arena and returns its handle.
func (m *Map) AddImage(img Image) ImageHandle {
	m.images = append(m.images, img)
	return ImageHandle(len(m.images) - 1)
}

// Image returns a pointer to the image at h, for reading or mutating it in
// place.
func (m *Map) Image(h ImageHandle) (*Image, error) {
	if h < 0 || int(h) >= len(m.images) {
		return nil, wrapOutOfRange("image", int(h), len(m.images))
	}
	return &m.images[h], nil
}

// NumImages reports the number of images in the arena.
func (m *Map) NumImages() int { return len(m.images) }

// AddEnvelope appends env to the envelope arena and returns its handle.
func (m *Map) AddEnvelope(env Envelope) EnvelopeHandle {
	m.envelopes = append(m.envelopes, env)
	return EnvelopeHandle(len(m.envelopes) - 1)
}

// Envelope returns a pointer to the envelope at h.
func (m *Map) Envelope(h EnvelopeHandle) (*Envelope, error) {
	if h < 0 || int(h) >= len(m.envelopes) {
		return nil, wrapOutOfRange("envelope", int(h), len(m.envelopes))
	}
	return &m.envelopes[h], nil
}

// NumEnvelopes reports the number of envelopes in the arena.
func (m *Map) NumEnvelopes() int { return len(m.envelopes) }

// AddSound appends s to the sound arena and returns its handle.
func (m *Map) AddSound(s Sound) SoundHandle {
	m.sounds = append(m.sounds, s)
	return SoundHandle(len(m.sounds) - 1)
}

// Sound returns a pointer to the sound at h.
func (m *Map) Sound(h SoundHandle) (*Sound, error) {
	if h < 0 || int(h) >= len(m.sounds) {
		return nil, wrapOutOfRange("sound", int(h), len(m.sounds))
	}
	return &m.sounds[h], nil
}

// NumSounds reports the number of sounds in the arena.
func (m *Map) NumSounds() int { return len(m.sounds) }

// AddLayer appends layer to the layer arena and returns its handle. The
// layer starts with no membership in any group and no special flag.
func (m *Map) AddLayer(layer *Layer) LayerHandle {
	m.layers = append(m.layers, layer)
	return LayerHandle(len(m.layers) - 1)
}

// Layer returns the layer at h.
func (m *Map) Layer(h LayerHandle) (*Layer, error) {
	if h < 0 || int(h) >= len(m.layers) {
		return nil, wrapOutOfRange("layer", int(h), len(m.layers))
	}
	return m.layers[h], nil
}

// NumLayers reports the number of layers in the arena.
func (m *Map) NumLayers() int { return len(m.layers) }

// AddGroup appends group to the group arena and returns its handle.
func (m *Map) AddGroup(group *Group) GroupHandle {
	m.groups = append(m.groups, group)
	return GroupHandle(len(m.groups) - 1)
}

// Group returns the group at h.
func (m *Map) Group(h GroupHandle) (*Group, error) {
	if h < 0 || int(h) >= len(m.groups) {
		return nil, wrapOutOfRange("group", int(h), len(m.groups))
	}
	return m.groups[h], nil
}

// NumGroups reports the number of groups in the arena.
func (m *Map) NumGroups() int { return len(m.groups) }

// GameLayer, TeleLayer, SpeedupLayer, FrontLayer, SwitchLayer and TuneLayer
// return the handle of the layer currently carrying that special flag, or
// NoLayer if none does.
func (m *Map) GameLayer() LayerHandle    { return m.gameLayer }
func (m *Map) TeleLayer() LayerHandle    { return m.teleLayer }
func (m *Map) SpeedupLayer() LayerHandle { return m.speedupLayer }
func (m *Map) FrontLayer() LayerHandle   { return m.frontLayer }
func (m *Map) SwitchLayer() LayerHandle  { return m.switchLayer }
func (m *Map) TuneLayer() LayerHandle    { return m.tuneLayer }

func wrapOutOfRange(kind string, i, n int) error {
	return fmt.Errorf("%w: %s handle %d of %d", ErrOutOfRange, kind, i, n)
}
