package datafile

import "github.com/tilemap/datafile/internal/container"

// Error kinds surfaced by Load and Save. They alias the same sentinels
// internal/container defines, exported here so callers never need to
// import an internal package to use errors.Is against them.
var (
	ErrTruncated              = container.ErrTruncated
	ErrBadMagic               = container.ErrBadMagic
	ErrUnsupportedVersion     = container.ErrUnsupportedVersion
	ErrUnsupportedItemVersion = container.ErrUnsupportedItemVersion
	ErrUnknownKind            = container.ErrUnknownKind
	ErrSizeMismatch           = container.ErrSizeMismatch
	ErrIndexMismatch          = container.ErrIndexMismatch
	ErrOutOfRange             = container.ErrOutOfRange
	ErrCorruptBlob            = container.ErrCorruptBlob
	ErrInvariantViolation     = container.ErrInvariantViolation
)
