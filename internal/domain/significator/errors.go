package significator

import (
	"errors"
	"fmt"
)

// ErrInvariant marks corrupted chart data that no rule can recover from.
var ErrInvariant = errors.New("significator: invariant violated")

// InvariantViolation reports a house cusp whose sign index is out of range.
type InvariantViolation struct {
	House int
	Sign  int
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("significator: house %d cusp has invalid sign index %d", e.House, e.Sign)
}

// Is lets errors.Is(err, ErrInvariant) match.
func (e *InvariantViolation) Is(target error) bool { return target == ErrInvariant }
