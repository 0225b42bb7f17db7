package datafile

// Group positions a contiguous run of layers in the map's parallax space.
// A group owns its member layers by handle, in render order; the writer is
// responsible for laying these out as a contiguous range of the flat
// on-disk layer array.
type Group struct {
	XOffset, YOffset     int32
	XParallax, YParallax int32
	Clipping             bool
	ClipX, ClipY         int32
	ClipWidth, ClipHeight int32
	Name                 string

	Layers []LayerHandle
}

// NewGroup returns a group with no parallax offset (100/100, matching the
// game group) and no member layers.
func NewGroup(name string) *Group {
	return &Group{XParallax: 100, YParallax: 100, Name: name}
}
