package model

import "strings"

// Body names a tracked chart body. The string form is the lowercase JSON key.
type Body string

// The seven traditional planets.
const (
	Sun     Body = "sun"
	Moon    Body = "moon"
	Mercury Body = "mercury"
	Venus   Body = "venus"
	Mars    Body = "mars"
	Jupiter Body = "jupiter"
	Saturn  Body = "saturn"
)

// Non-ruling points.
const (
	NorthNode     Body = "north_node"
	SouthNode     Body = "south_node"
	PartOfFortune Body = "part_of_fortune"
)

// Planets lists the seven traditional planets in a fixed order.
var Planets = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn}

// Points lists the derived, non-ruling points.
var Points = []Body{NorthNode, SouthNode, PartOfFortune}

// AllBodies is Planets followed by Points.
var AllBodies = append(append([]Body{}, Planets...), Points...)

// IsPlanet reports whether b is one of the seven traditional planets.
func (b Body) IsPlanet() bool {
	for _, p := range Planets {
		if p == b {
			return true
		}
	}
	return false
}

// IsLuminary reports whether b is the Sun or the Moon.
func (b Body) IsLuminary() bool { return b == Sun || b == Moon }

// Order returns the position of b in AllBodies, or len(AllBodies) if unknown.
func (b Body) Order() int {
	for i, x := range AllBodies {
		if x == b {
			return i
		}
	}
	return len(AllBodies)
}

// ParseBody resolves a case-insensitive body name.
func ParseBody(name string) (Body, bool) {
	b := Body(strings.ToLower(strings.TrimSpace(name)))
	if b.Order() == len(AllBodies) {
		return "", false
	}
	return b, true
}
