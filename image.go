package datafile

// Image is either an external image (resolved by name through a
// collaborator outside this package; Width/Height are advisory) or an
// internal image carrying its own RGBA pixel blob.
type Image struct {
	External bool
	Name     string
	Width    int
	Height   int

	// Pixels holds width*height*4 RGBA bytes for an internal image, and is
	// nil for an external one.
	Pixels []byte
}
