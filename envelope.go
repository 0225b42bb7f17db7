package datafile

// EnvPoint is one keyframe of an envelope's value curve.
type EnvPoint struct {
	Time   int32
	Curve  int32
	Values [4]int32
}

// Envelope is a named, channel-typed curve shared by layers and quads
// through an EnvelopeHandle.
type Envelope struct {
	Channels     int32
	Name         string
	Synchronized bool
	Points       []EnvPoint
}
