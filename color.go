package datafile

// Color is an RGBA color with components in 0..255, matching the tint
// carried by a tile layer.
type Color struct {
	R, G, B, A int32
}
