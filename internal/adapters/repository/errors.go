package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("question not found")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrInvalidID    = errors.New("question id must not be empty")
)
