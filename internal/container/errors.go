package container

import (
	"errors"

	"github.com/tilemap/datafile/internal/cursor"
)

// Error kinds for the DataFile container format. ErrTruncated and
// ErrOutOfRange are the same sentinels internal/cursor already defines for
// buffer-bounds failures; the rest are specific to the container and item
// schema.
var (
	ErrTruncated            = cursor.ErrTruncated
	ErrOutOfRange           = cursor.ErrOutOfRange
	ErrBadMagic             = errors.New("container: bad magic")
	ErrUnsupportedVersion   = errors.New("container: unsupported container version")
	ErrUnsupportedItemVersion = errors.New("container: unsupported item version")
	ErrUnknownKind          = errors.New("container: unknown item kind")
	ErrSizeMismatch         = errors.New("container: item size mismatch")
	ErrIndexMismatch        = errors.New("container: item index mismatch")
	ErrCorruptBlob          = errors.New("container: corrupt data blob")
	ErrInvariantViolation   = errors.New("container: invariant violation")
)
