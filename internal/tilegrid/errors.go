package tilegrid

import "errors"

// ErrOutOfRange is returned when a cell coordinate falls outside the grid.
var ErrOutOfRange = errors.New("tilegrid: coordinate out of range")
