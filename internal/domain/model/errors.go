package model

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidSign   = errors.New("invalid sign")
	ErrInvalidBody   = errors.New("invalid body")
	ErrPlanetsShape  = errors.New("planets must be an object or an array")
	ErrMissingPlanet = errors.New("planet missing from chart")
)
