// Package wire defines the on-disk record layout for every map-file item
// kind: the container envelope records (version header, fixed header,
// item-type entry, item header) and the per-kind item bodies
// (version, info, image, envelope, group, layer header, tile/quad/sound
// layer bodies, envelope points, sound).
//
// Each record type knows its own wire size and how to encode/decode itself
// against an internal/cursor.Cursor; internal/container drives them to
// assemble the full file.
package wire

import (
	"fmt"

	"github.com/tilemap/datafile/internal/cursor"
	"github.com/tilemap/datafile/internal/prim"
)

// Item type IDs.
const (
	TypeVersion   = 0
	TypeInfo      = 1
	TypeImage     = 2
	TypeEnvelope  = 3
	TypeGroup     = 4
	TypeLayer     = 5
	TypeEnvPoints = 6
	TypeSound     = 7
	TypeUUID      = 0xFFFF
)

// Layer type tags, stored in LayerHeader.Type.
const (
	LayerTypeTiles            = 2
	LayerTypeQuads            = 3
	LayerTypeSoundsDeprecated = 9
	LayerTypeSounds           = 10
)

// Layer flag bits, stored in LayerHeader.Flags.
const LayerFlagDetail = 1

// Tile-layer flag bits, stored in TileLayerBody.Flags. Exactly one of these
// (or none, for a plain tile layer) may be set on a given layer.
const (
	TileFlagGame    = 1
	TileFlagTele    = 2
	TileFlagSpeedup = 4
	TileFlagFront   = 8
	TileFlagSwitch  = 16
	TileFlagTune    = 32
)

// Expected item-record versions. A version that doesn't match is an
// unsupported-item-version condition at the call site.
const (
	VersionVersion  = 1
	VersionInfo     = 1
	VersionImage    = 1
	VersionEnvelope = 2
	VersionGroup    = 3
	VersionTileBody = 3
	VersionQuadBody = 2
)

// ItemHeader is the 8-byte record preceding every item body: a packed
// type/index word followed by the body size in bytes.
type ItemHeader struct {
	TypeIDIndex int32
	Size        int32
}

// ItemHeaderSize is the wire size of ItemHeader.
const ItemHeaderSize = 2 * prim.Int32Size

// PackTypeIDIndex combines a type id and item index into the wire word.
func PackTypeIDIndex(typeID, index int) int32 {
	return int32((typeID << 16) | (index & 0xffff))
}

// UnpackTypeIDIndex splits a wire word back into type id and index.
func UnpackTypeIDIndex(v int32) (typeID, index int) {
	u := uint32(v)
	return int((u >> 16) & 0xffff), int(u & 0xffff)
}

// ReadItemHeader decodes an ItemHeader.
func ReadItemHeader(c *cursor.Cursor) (ItemHeader, error) {
	var h ItemHeader
	var err error
	if h.TypeIDIndex, err = prim.ReadInt32(c); err != nil {
		return ItemHeader{}, err
	}
	if h.Size, err = prim.ReadInt32(c); err != nil {
		return ItemHeader{}, err
	}
	return h, nil
}

// WriteItemHeader encodes an ItemHeader.
func WriteItemHeader(c *cursor.Cursor, h ItemHeader) {
	prim.WriteInt32(c, h.TypeIDIndex)
	prim.WriteInt32(c, h.Size)
}

// VersionHeader is the leading container record: a 4-byte magic tag
// ("DATA" or its byte-swapped form "ATAD") plus a container format version.
type VersionHeader struct {
	Magic   string
	Version int32
}

// VersionHeaderSize is the wire size of VersionHeader.
const VersionHeaderSize = prim.RawStr4Size + prim.Int32Size

// ReadVersionHeader decodes a VersionHeader.
func ReadVersionHeader(c *cursor.Cursor) (VersionHeader, error) {
	var h VersionHeader
	var err error
	if h.Magic, err = prim.ReadRawStr4(c); err != nil {
		return VersionHeader{}, err
	}
	if h.Version, err = prim.ReadInt32(c); err != nil {
		return VersionHeader{}, err
	}
	return h, nil
}

// WriteVersionHeader encodes a VersionHeader.
func WriteVersionHeader(c *cursor.Cursor, h VersionHeader) error {
	if err := prim.WriteRawStr4(c, h.Magic); err != nil {
		return err
	}
	prim.WriteInt32(c, h.Version)
	return nil
}

// FixedHeader is the container's 7-field size/count header, immediately
// following VersionHeader.
type FixedHeader struct {
	Size                 int32
	Swaplen              int32
	NumItemTypes         int32
	NumItems             int32
	NumData              int32
	ItemSize             int32
	DataSizeUncompressed int32
}

// FixedHeaderSize is the wire size of FixedHeader.
const FixedHeaderSize = 7 * prim.Int32Size

// ReadFixedHeader decodes a FixedHeader.
func ReadFixedHeader(c *cursor.Cursor) (FixedHeader, error) {
	fields := make([]*int32, 7)
	var h FixedHeader
	fields[0], fields[1], fields[2] = &h.Size, &h.Swaplen, &h.NumItemTypes
	fields[3], fields[4], fields[5] = &h.NumItems, &h.NumData, &h.ItemSize
	fields[6] = &h.DataSizeUncompressed
	for _, f := range fields {
		v, err := prim.ReadInt32(c)
		if err != nil {
			return FixedHeader{}, err
		}
		*f = v
	}
	return h, nil
}

// WriteFixedHeader encodes a FixedHeader.
func WriteFixedHeader(c *cursor.Cursor, h FixedHeader) {
	for _, v := range []int32{h.Size, h.Swaplen, h.NumItemTypes, h.NumItems, h.NumData, h.ItemSize, h.DataSizeUncompressed} {
		prim.WriteInt32(c, v)
	}
}

// ItemTypeEntry is one row of the item-type index, giving the contiguous
// run of item-offset-table slots that hold every item of one kind.
type ItemTypeEntry struct {
	TypeID int32
	Start  int32
	Num    int32
}

// ItemTypeEntrySize is the wire size of ItemTypeEntry.
const ItemTypeEntrySize = 3 * prim.Int32Size

// ReadItemTypeEntry decodes an ItemTypeEntry.
func ReadItemTypeEntry(c *cursor.Cursor) (ItemTypeEntry, error) {
	var e ItemTypeEntry
	var err error
	if e.TypeID, err = prim.ReadInt32(c); err != nil {
		return ItemTypeEntry{}, err
	}
	if e.Start, err = prim.ReadInt32(c); err != nil {
		return ItemTypeEntry{}, err
	}
	if e.Num, err = prim.ReadInt32(c); err != nil {
		return ItemTypeEntry{}, err
	}
	return e, nil
}

// WriteItemTypeEntry encodes an ItemTypeEntry.
func WriteItemTypeEntry(c *cursor.Cursor, e ItemTypeEntry) {
	prim.WriteInt32(c, e.TypeID)
	prim.WriteInt32(c, e.Start)
	prim.WriteInt32(c, e.Num)
}

// ---- Item bodies ----

// Version is the sole type-0 item body.
type Version struct {
	Version int32
}

const VersionSize = prim.Int32Size

func ReadVersion(c *cursor.Cursor) (Version, error) {
	v, err := prim.ReadInt32(c)
	return Version{Version: v}, err
}

func WriteVersion(c *cursor.Cursor, v Version) {
	prim.WriteInt32(c, v.Version)
}

// Info is the sole type-1 item body: a version plus five data-pool string
// pointers.
type Info struct {
	Version      int32
	AuthorPtr    int32
	MapVersionPtr int32
	CreditsPtr   int32
	LicensePtr   int32
	SettingsPtr  int32
}

const InfoSize = 6 * prim.Int32Size

func ReadInfo(c *cursor.Cursor) (Info, error) {
	vals, err := readInt32s(c, 6)
	if err != nil {
		return Info{}, err
	}
	return Info{vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]}, nil
}

func WriteInfo(c *cursor.Cursor, in Info) {
	writeInt32s(c, in.Version, in.AuthorPtr, in.MapVersionPtr, in.CreditsPtr, in.LicensePtr, in.SettingsPtr)
}

// Image is a type-2 item body.
type Image struct {
	Version  int32
	Width    int32
	Height   int32
	External int32
	NamePtr  int32
	DataPtr  int32
}

const ImageSize = 6 * prim.Int32Size

func ReadImage(c *cursor.Cursor) (Image, error) {
	vals, err := readInt32s(c, 6)
	if err != nil {
		return Image{}, err
	}
	return Image{vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]}, nil
}

func WriteImage(c *cursor.Cursor, im Image) {
	writeInt32s(c, im.Version, im.Width, im.Height, im.External, im.NamePtr, im.DataPtr)
}

// Envelope is a type-3 item body. Name is an 8-word int-encoded string.
type Envelope struct {
	Version       int32
	Channels      int32
	StartPoint    int32
	NumPoints     int32
	Name          string
	Synchronized  int32
}

const envelopeNameWords = 8
const EnvelopeSize = 4*prim.Int32Size + envelopeNameWords*prim.Int32Size + prim.Int32Size

func ReadEnvelope(c *cursor.Cursor) (Envelope, error) {
	var e Envelope
	var err error
	if e.Version, err = prim.ReadInt32(c); err != nil {
		return Envelope{}, err
	}
	if e.Channels, err = prim.ReadInt32(c); err != nil {
		return Envelope{}, err
	}
	if e.StartPoint, err = prim.ReadInt32(c); err != nil {
		return Envelope{}, err
	}
	if e.NumPoints, err = prim.ReadInt32(c); err != nil {
		return Envelope{}, err
	}
	if e.Name, err = prim.ReadIntStr(c, envelopeNameWords); err != nil {
		return Envelope{}, err
	}
	if e.Synchronized, err = prim.ReadInt32(c); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func WriteEnvelope(c *cursor.Cursor, e Envelope) {
	prim.WriteInt32(c, e.Version)
	prim.WriteInt32(c, e.Channels)
	prim.WriteInt32(c, e.StartPoint)
	prim.WriteInt32(c, e.NumPoints)
	prim.WriteIntStr(c, e.Name, envelopeNameWords)
	prim.WriteInt32(c, e.Synchronized)
}

// Group is a type-4 item body. Name is a 3-word int-encoded string.
type Group struct {
	Version     int32
	XOffset     int32
	YOffset     int32
	XParallax   int32
	YParallax   int32
	StartLayer  int32
	NumLayers   int32
	Clipping    int32
	ClipX       int32
	ClipY       int32
	ClipWidth   int32
	ClipHeight  int32
	Name        string
}

const groupIntFields = 12
const groupNameWords = 3
const GroupSize = groupIntFields*prim.Int32Size + groupNameWords*prim.Int32Size

func ReadGroup(c *cursor.Cursor) (Group, error) {
	vals, err := readInt32s(c, groupIntFields)
	if err != nil {
		return Group{}, err
	}
	name, err := prim.ReadIntStr(c, groupNameWords)
	if err != nil {
		return Group{}, err
	}
	return Group{
		Version: vals[0], XOffset: vals[1], YOffset: vals[2],
		XParallax: vals[3], YParallax: vals[4],
		StartLayer: vals[5], NumLayers: vals[6],
		Clipping: vals[7], ClipX: vals[8], ClipY: vals[9],
		ClipWidth: vals[10], ClipHeight: vals[11],
		Name: name,
	}, nil
}

func WriteGroup(c *cursor.Cursor, g Group) {
	writeInt32s(c, g.Version, g.XOffset, g.YOffset, g.XParallax, g.YParallax,
		g.StartLayer, g.NumLayers, g.Clipping, g.ClipX, g.ClipY, g.ClipWidth, g.ClipHeight)
	prim.WriteIntStr(c, g.Name, groupNameWords)
}

// LayerHeader is the common 12-byte prefix of every type-5 item.
type LayerHeader struct {
	Version int32
	Type    int32
	Flags   int32
}

const LayerHeaderSize = 3 * prim.Int32Size

func ReadLayerHeader(c *cursor.Cursor) (LayerHeader, error) {
	vals, err := readInt32s(c, 3)
	if err != nil {
		return LayerHeader{}, err
	}
	return LayerHeader{vals[0], vals[1], vals[2]}, nil
}

func WriteLayerHeader(c *cursor.Cursor, h LayerHeader) {
	writeInt32s(c, h.Version, h.Type, h.Flags)
}

// TileLayerBody is the type-5/TILES variant body, 80 bytes beyond the
// 12-byte LayerHeader. Like every item body, it carries its own leading
// version field distinct from the shared LayerHeader.Version.
type TileLayerBody struct {
	Version             int32
	Width               int32
	Height              int32
	Flags               int32
	Color               prim.Color
	ColorEnvelopeRef    int32
	ColorEnvelopeOffset int32
	ImageRef            int32
	DataPtr             int32
	Name                string
	DataTelePtr         int32
	DataSpeedupPtr      int32
	DataFrontPtr        int32
	DataSwitchPtr       int32
	DataTunePtr         int32
}

const tileLayerNameWords = 3
const TileLayerBodySize = 13*prim.Int32Size + prim.ColorSize + tileLayerNameWords*prim.Int32Size

func ReadTileLayerBody(c *cursor.Cursor) (TileLayerBody, error) {
	var b TileLayerBody
	var err error
	if b.Version, err = prim.ReadInt32(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.Width, err = prim.ReadInt32(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.Height, err = prim.ReadInt32(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.Flags, err = prim.ReadInt32(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.Color, err = prim.ReadColor(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.ColorEnvelopeRef, err = prim.ReadInt32(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.ColorEnvelopeOffset, err = prim.ReadInt32(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.ImageRef, err = prim.ReadInt32(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.DataPtr, err = prim.ReadInt32(c); err != nil {
		return TileLayerBody{}, err
	}
	if b.Name, err = prim.ReadIntStr(c, tileLayerNameWords); err != nil {
		return TileLayerBody{}, err
	}
	ptrs, err := readInt32s(c, 5)
	if err != nil {
		return TileLayerBody{}, err
	}
	b.DataTelePtr, b.DataSpeedupPtr, b.DataFrontPtr, b.DataSwitchPtr, b.DataTunePtr = ptrs[0], ptrs[1], ptrs[2], ptrs[3], ptrs[4]
	return b, nil
}

func WriteTileLayerBody(c *cursor.Cursor, b TileLayerBody) {
	prim.WriteInt32(c, b.Version)
	prim.WriteInt32(c, b.Width)
	prim.WriteInt32(c, b.Height)
	prim.WriteInt32(c, b.Flags)
	prim.WriteColor(c, b.Color)
	prim.WriteInt32(c, b.ColorEnvelopeRef)
	prim.WriteInt32(c, b.ColorEnvelopeOffset)
	prim.WriteInt32(c, b.ImageRef)
	prim.WriteInt32(c, b.DataPtr)
	prim.WriteIntStr(c, b.Name, tileLayerNameWords)
	writeInt32s(c, b.DataTelePtr, b.DataSpeedupPtr, b.DataFrontPtr, b.DataSwitchPtr, b.DataTunePtr)
}

// QuadLayerBody is the type-5/QUADS variant body, 28 bytes beyond the
// 12-byte LayerHeader.
type QuadLayerBody struct {
	Version  int32
	NumQuads int32
	DataPtr  int32
	ImageRef int32
	Name     string
}

const quadLayerNameWords = 3
const QuadLayerBodySize = 4*prim.Int32Size + quadLayerNameWords*prim.Int32Size

func ReadQuadLayerBody(c *cursor.Cursor) (QuadLayerBody, error) {
	vals, err := readInt32s(c, 4)
	if err != nil {
		return QuadLayerBody{}, err
	}
	name, err := prim.ReadIntStr(c, quadLayerNameWords)
	if err != nil {
		return QuadLayerBody{}, err
	}
	return QuadLayerBody{vals[0], vals[1], vals[2], vals[3], name}, nil
}

func WriteQuadLayerBody(c *cursor.Cursor, b QuadLayerBody) {
	writeInt32s(c, b.Version, b.NumQuads, b.DataPtr, b.ImageRef)
	prim.WriteIntStr(c, b.Name, quadLayerNameWords)
}

// OpaqueLayerBody is a layer body this codec does not interpret: the sound
// layer variants, whose field layout is not decoded. The raw bytes are
// captured verbatim and re-emitted unchanged on write, so a map with sound
// layers round-trips without data loss even though their contents are
// never inspected.
type OpaqueLayerBody struct {
	Raw []byte
}

func ReadOpaqueLayerBody(c *cursor.Cursor, size int) (OpaqueLayerBody, error) {
	b, err := c.ReadBytes(size)
	if err != nil {
		return OpaqueLayerBody{}, err
	}
	raw := make([]byte, len(b))
	copy(raw, b)
	return OpaqueLayerBody{Raw: raw}, nil
}

func WriteOpaqueLayerBody(c *cursor.Cursor, b OpaqueLayerBody) {
	c.Append(b.Raw)
}

// Sound is a type-7 item body.
type Sound struct {
	Version  int32
	External int32
	NamePtr  int32
	DataPtr  int32
	DataSize int32
}

const SoundSize = 5 * prim.Int32Size

func ReadSound(c *cursor.Cursor) (Sound, error) {
	vals, err := readInt32s(c, 5)
	if err != nil {
		return Sound{}, err
	}
	return Sound{vals[0], vals[1], vals[2], vals[3], vals[4]}, nil
}

func WriteSound(c *cursor.Cursor, s Sound) {
	writeInt32s(c, s.Version, s.External, s.NamePtr, s.DataPtr, s.DataSize)
}

// EnvPoint is one point of a type-6 envelope-points block. Bezier control
// points (envelope version > 2) are not represented here.
type EnvPoint struct {
	Time     int32
	Curve    int32
	Values   [4]int32
}

const EnvPointSize = 2*prim.Int32Size + 4*prim.Int32Size

func ReadEnvPoint(c *cursor.Cursor) (EnvPoint, error) {
	var p EnvPoint
	var err error
	if p.Time, err = prim.ReadInt32(c); err != nil {
		return EnvPoint{}, err
	}
	if p.Curve, err = prim.ReadInt32(c); err != nil {
		return EnvPoint{}, err
	}
	for i := range p.Values {
		if p.Values[i], err = prim.ReadInt32(c); err != nil {
			return EnvPoint{}, err
		}
	}
	return p, nil
}

func WriteEnvPoint(c *cursor.Cursor, p EnvPoint) {
	prim.WriteInt32(c, p.Time)
	prim.WriteInt32(c, p.Curve)
	for _, v := range p.Values {
		prim.WriteInt32(c, v)
	}
}

// readInt32s reads n consecutive little-endian i32 fields, in declaration
// order, the way c_struct.from_data iterates annotated fields.
func readInt32s(c *cursor.Cursor, n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		v, err := prim.ReadInt32(c)
		if err != nil {
			return nil, fmt.Errorf("wire: field %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func writeInt32s(c *cursor.Cursor, vals ...int32) {
	for _, v := range vals {
		prim.WriteInt32(c, v)
	}
}
