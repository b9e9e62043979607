package tables

import "errors"

// Sentinel error kinds for this package.
var (
	ErrDecode       = errors.New("decode table")
	ErrInvalidTable = errors.New("invalid table")
)
