package location

import "errors"

// ErrInvalidCoordinate is returned for a latitude or longitude out of range.
var ErrInvalidCoordinate = errors.New("location: invalid coordinate")
