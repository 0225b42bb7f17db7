// Package container implements the DataFile envelope: the version and
// fixed headers, the item-type index, the item and data offset tables, and
// the trailing zlib-compressed data pool. It knows nothing about what an
// item kind means — that belongs to internal/wire for record layout and to
// the root package for domain semantics — only how to locate an item's raw
// bytes by (type, index) and a data blob's raw bytes by pointer.
package container

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zlib"

	"github.com/tilemap/datafile/internal/cursor"
	"github.com/tilemap/datafile/internal/prim"
	"github.com/tilemap/datafile/internal/wire"
)

const containerVersion = 4

// magicNative and magicSwapped are the two accepted forms of the version
// header tag; a file stored with the swapped form has every other i32
// field byte-swapped too, but nothing in this codec ever emits that form,
// and no swapping support is implemented beyond recognizing the tag.
const (
	magicNative  = "DATA"
	magicSwapped = "ATAD"
)

// Reader parses a DataFile container and serves up raw item and data blob
// bytes by location, leaving interpretation to the caller.
type Reader struct {
	cur         *cursor.Cursor
	header      wire.FixedHeader
	itemTypes   []wire.ItemTypeEntry
	itemOffsets []int32
	dataOffsets []int32
	dataSizes   []int32
	itemsStart  int
	dataStart   int
}

// Open parses the container envelope of data: the two headers, the
// item-type index, and the offset tables. It does not touch any item body
// or data blob; those are fetched lazily via Item and Blob.
func Open(data []byte) (*Reader, error) {
	c := cursor.New(data)

	vh, err := wire.ReadVersionHeader(c)
	if err != nil {
		return nil, err
	}
	if vh.Magic != magicNative && vh.Magic != magicSwapped {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, vh.Magic)
	}
	if vh.Version != containerVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, vh.Version)
	}

	fh, err := wire.ReadFixedHeader(c)
	if err != nil {
		return nil, err
	}

	itemTypes := make([]wire.ItemTypeEntry, fh.NumItemTypes)
	for i := range itemTypes {
		if itemTypes[i], err = wire.ReadItemTypeEntry(c); err != nil {
			return nil, err
		}
	}

	itemOffsets, err := readInt32Slice(c, int(fh.NumItems))
	if err != nil {
		return nil, err
	}
	dataOffsets, err := readInt32Slice(c, int(fh.NumData))
	if err != nil {
		return nil, err
	}
	dataSizes, err := readInt32Slice(c, int(fh.NumData))
	if err != nil {
		return nil, err
	}

	itemsStart := c.Tell()
	dataStart := itemsStart + int(fh.ItemSize)

	return &Reader{
		cur:         c,
		header:      fh,
		itemTypes:   itemTypes,
		itemOffsets: itemOffsets,
		dataOffsets: dataOffsets,
		dataSizes:   dataSizes,
		itemsStart:  itemsStart,
		dataStart:   dataStart,
	}, nil
}

// DataSizeUncompressed is the sum of the uncompressed lengths of every
// blob in the data pool, as recorded in the fixed header.
func (r *Reader) DataSizeUncompressed() int {
	return int(r.header.DataSizeUncompressed)
}

// ItemTypeCount reports how many distinct item kinds the file declares.
func (r *Reader) ItemTypeCount() int {
	return len(r.itemTypes)
}

// Count returns the number of items of the given kind.
func (r *Reader) Count(typeID int) int {
	for _, e := range r.itemTypes {
		if int(e.TypeID) == typeID {
			return int(e.Num)
		}
	}
	return 0
}

func (r *Reader) typeStart(typeID int) (int, bool) {
	for _, e := range r.itemTypes {
		if int(e.TypeID) == typeID {
			return int(e.Start), true
		}
	}
	return 0, false
}

// Item returns the raw body bytes of item index within kind typeID,
// excluding the 8-byte item header. It validates that the item's packed
// header word names the same (type, index) the caller asked for.
func (r *Reader) Item(typeID, index int) ([]byte, error) {
	start, ok := r.typeStart(typeID)
	if !ok {
		return nil, fmt.Errorf("%w: type %d", ErrUnknownKind, typeID)
	}
	count := r.Count(typeID)
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: index %d of %d items of type %d", ErrOutOfRange, index, count, typeID)
	}
	slot := start + index
	if slot < 0 || slot >= len(r.itemOffsets) {
		return nil, fmt.Errorf("%w: item slot %d", ErrOutOfRange, slot)
	}
	if err := r.cur.Seek(r.itemsStart + int(r.itemOffsets[slot])); err != nil {
		return nil, err
	}
	hdr, err := wire.ReadItemHeader(r.cur)
	if err != nil {
		return nil, err
	}
	gotType, gotIndex := wire.UnpackTypeIDIndex(hdr.TypeIDIndex)
	if gotType != typeID || gotIndex != index {
		return nil, fmt.Errorf("%w: slot %d wants (%d,%d), header says (%d,%d)",
			ErrIndexMismatch, slot, typeID, index, gotType, gotIndex)
	}
	if hdr.Size < 0 {
		return nil, fmt.Errorf("%w: negative item size %d", ErrInvariantViolation, hdr.Size)
	}
	return r.cur.ReadBytes(int(hdr.Size))
}

// NumBlobs returns the number of entries in the data pool.
func (r *Reader) NumBlobs() int {
	return len(r.dataOffsets)
}

// Blob decompresses and returns the data-pool entry at ptr. A negative ptr
// means "no data" to callers and is never passed here; callers translate
// that sentinel upstream.
func (r *Reader) Blob(ptr int) ([]byte, error) {
	if ptr < 0 || ptr >= len(r.dataOffsets) {
		return nil, fmt.Errorf("%w: data pointer %d of %d", ErrOutOfRange, ptr, len(r.dataOffsets))
	}
	poolSize := int(r.header.Size) - int(r.header.Swaplen) - wire.VersionHeaderSize
	begin := int(r.dataOffsets[ptr])
	end := poolSize
	if ptr+1 < len(r.dataOffsets) {
		end = int(r.dataOffsets[ptr+1])
	}
	if end < begin {
		return nil, fmt.Errorf("%w: data pointer %d has negative length", ErrInvariantViolation, ptr)
	}
	if err := r.cur.Seek(r.dataStart + begin); err != nil {
		return nil, err
	}
	compressed, err := r.cur.ReadBytes(end - begin)
	if err != nil {
		return nil, err
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if want := int(r.dataSizes[ptr]); len(out) != want {
		return nil, fmt.Errorf("%w: blob %d decompressed to %d bytes, want %d", ErrCorruptBlob, ptr, len(out), want)
	}
	return out, nil
}

func readInt32Slice(c *cursor.Cursor, n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		v, err := prim.ReadInt32(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Writer assembles a DataFile container from item bodies and data blobs
// registered in the order the caller wants them to appear. Items are
// grouped by kind on assembly (the wire format requires items of one kind
// to occupy a contiguous run of the offset table); within a kind, items
// keep registration order and receive sequential indices.
type Writer struct {
	items       map[int32][][]byte
	dataOffsets []int32
	dataSizes   []int32
	dataBuf     []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{items: make(map[int32][][]byte)}
}

// AddItem registers body as the next item of kind typeID and returns the
// index it was assigned within that kind. body is everything after the
// item's 8-byte header; for layer items that includes the 12-byte
// LayerHeader followed by the variant body.
func (w *Writer) AddItem(typeID int32, body []byte) int {
	w.items[typeID] = append(w.items[typeID], body)
	return len(w.items[typeID]) - 1
}

// AddData compresses raw and appends it to the data pool, returning its
// pointer.
func (w *Writer) AddData(raw []byte) int {
	offset := len(w.dataBuf)
	w.dataOffsets = append(w.dataOffsets, int32(offset))
	w.dataSizes = append(w.dataSizes, int32(len(raw)))

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(raw)
	zw.Close()
	w.dataBuf = append(w.dataBuf, buf.Bytes()...)
	return len(w.dataOffsets) - 1
}

// Assemble serializes the full container: version header, fixed header,
// item-type index, offset tables, items, then the data pool.
func (w *Writer) Assemble() []byte {
	typeIDs := make([]int32, 0, len(w.items))
	for t := range w.items {
		typeIDs = append(typeIDs, t)
	}
	sort.Slice(typeIDs, func(i, j int) bool { return typeIDs[i] < typeIDs[j] })

	typeEntries := make([]wire.ItemTypeEntry, 0, len(typeIDs))
	itemOffsets := make([]int32, 0)
	numItems := 0
	itemSize := int32(0)
	start := int32(0)
	for _, tid := range typeIDs {
		bodies := w.items[tid]
		typeEntries = append(typeEntries, wire.ItemTypeEntry{TypeID: tid, Start: start, Num: int32(len(bodies))})
		for _, body := range bodies {
			itemOffsets = append(itemOffsets, itemSize)
			itemSize += int32(wire.ItemHeaderSize + len(body))
		}
		start += int32(len(bodies))
		numItems += len(bodies)
	}

	numData := len(w.dataOffsets)
	dataSizeUncompressed := int32(0)
	for _, s := range w.dataSizes {
		dataSizeUncompressed += s
	}

	swaplen := (wire.FixedHeaderSize - 2*prim.Int32Size) +
		len(typeEntries)*wire.ItemTypeEntrySize +
		numItems*prim.Int32Size +
		2*numData*prim.Int32Size +
		int(itemSize)
	size := swaplen + len(w.dataBuf) + wire.VersionHeaderSize

	c := cursor.NewWriter()
	wire.WriteVersionHeader(c, wire.VersionHeader{Magic: magicNative, Version: containerVersion})
	wire.WriteFixedHeader(c, wire.FixedHeader{
		Size:                 int32(size),
		Swaplen:              int32(swaplen),
		NumItemTypes:         int32(len(typeEntries)),
		NumItems:             int32(numItems),
		NumData:              int32(numData),
		ItemSize:             itemSize,
		DataSizeUncompressed: dataSizeUncompressed,
	})
	for _, e := range typeEntries {
		wire.WriteItemTypeEntry(c, e)
	}
	for _, off := range itemOffsets {
		prim.WriteInt32(c, off)
	}
	for _, off := range w.dataOffsets {
		prim.WriteInt32(c, off)
	}
	for _, sz := range w.dataSizes {
		prim.WriteInt32(c, sz)
	}
	for _, tid := range typeIDs {
		for idx, body := range w.items[tid] {
			wire.WriteItemHeader(c, wire.ItemHeader{
				TypeIDIndex: wire.PackTypeIDIndex(int(tid), idx),
				Size:        int32(len(body)),
			})
			c.Append(body)
		}
	}
	c.Append(w.dataBuf)
	return c.Bytes()
}
