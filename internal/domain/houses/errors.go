package houses

import "errors"

// ErrUnknownSystem is returned for a house system name the resolver does not implement.
var ErrUnknownSystem = errors.New("unknown house system")
