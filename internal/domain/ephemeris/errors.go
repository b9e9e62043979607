package ephemeris

import (
	"errors"
	"fmt"
	"time"
)

// ErrOutOfRange marks a timestamp outside the supported ephemeris window.
var ErrOutOfRange = errors.New("ephemeris: timestamp out of supported range")

// RangeError reports the rejected instant and the window it fell outside.
type RangeError struct {
	At       time.Time
	Min, Max time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("ephemeris: %s outside supported range %s..%s",
		e.At.Format(time.RFC3339), e.Min.Format("2006-01-02"), e.Max.Format("2006-01-02"))
}

// Is lets errors.Is(err, ErrOutOfRange) match.
func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }
