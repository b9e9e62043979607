package chart

import (
	"errors"

	"github.com/okian/horary/internal/domain/ephemeris"
)

func isRange(err error) bool { return errors.Is(err, ephemeris.ErrOutOfRange) }
