// Package model contains the chart value types passed between engine stages.
//
// Every value in this package is created once per chart request and treated
// as read-only afterwards. Consumers must not mutate maps or slices reached
// through a ChartSnapshot.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Angle constants.
const (
	FullCircle  = 360.0
	HalfCircle  = 180.0
	SignWidth   = 30.0
	SignCount   = 12
	ElementSize = 4
)

// Sign is a zodiac sign index, 0 = Aries .. 11 = Pisces.
type Sign int

// Zodiac signs in ecliptic order.
const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [SignCount]string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

// Valid reports whether s is one of the twelve signs.
func (s Sign) Valid() bool { return s >= Aries && s <= Pisces }

func (s Sign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("sign(%d)", int(s))
	}
	return signNames[s]
}

// MarshalText encodes the sign by name.
func (s Sign) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSign, int(s))
	}
	return []byte(signNames[s]), nil
}

// UnmarshalText decodes a sign name.
func (s *Sign) UnmarshalText(b []byte) error {
	parsed, ok := ParseSign(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSign, string(b))
	}
	*s = parsed
	return nil
}

// ParseSign resolves a case-insensitive sign name.
func ParseSign(name string) (Sign, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range signNames {
		if n == name {
			return Sign(i), true
		}
	}
	return 0, false
}

// Opposite returns the sign 180 degrees away.
func (s Sign) Opposite() Sign { return Sign((int(s) + SignCount/2) % SignCount) }

// Element is the classical triplicity of a sign.
type Element string

// Elements in the order they repeat through the zodiac.
const (
	Fire  Element = "fire"
	Earth Element = "earth"
	Air   Element = "air"
	Water Element = "water"
)

var elements = [ElementSize]Element{Fire, Earth, Air, Water}

// Element returns the sign's triplicity.
func (s Sign) Element() Element { return elements[int(s)%ElementSize] }

// Normalize maps any angle into [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, FullCircle)
	if d < 0 {
		d += FullCircle
	}
	if d >= FullCircle {
		d = 0
	}
	return d
}

// SignOf returns the sign containing an ecliptic longitude.
func SignOf(lon float64) Sign {
	idx := int(math.Floor(Normalize(lon) / SignWidth))
	if idx >= SignCount {
		idx = SignCount - 1
	}
	return Sign(idx)
}

// DegreeInSign returns the offset of lon within its sign, in [0, 30).
func DegreeInSign(lon float64) float64 {
	return Normalize(lon) - float64(SignOf(lon))*SignWidth
}

// Separation returns the unsigned angular distance between two longitudes, in [0, 180].
func Separation(a, b float64) float64 {
	d := Normalize(a - b)
	if d > HalfCircle {
		d = FullCircle - d
	}
	return d
}

// SignedDelta returns the shortest signed arc from -> to, in (-180, 180].
func SignedDelta(from, to float64) float64 {
	d := Normalize(to - from)
	if d > HalfCircle {
		d -= FullCircle
	}
	return d
}

// FormatLongitude renders a longitude as "15°30' leo".
func FormatLongitude(lon float64) string {
	deg := DegreeInSign(lon)
	whole := math.Floor(deg)
	minutes := math.Floor((deg - whole) * 60)
	return fmt.Sprintf("%d°%02d' %s", int(whole), int(minutes), SignOf(lon))
}
