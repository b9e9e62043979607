package model

import (
	"fmt"
	"time"
)

// Instant is the sole input to chart computation: a UTC moment and the
// observer's geographic coordinate.
type Instant struct {
	At        time.Time `json:"timestamp_utc"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// NewInstant normalizes at to UTC and strips the monotonic clock reading.
func NewInstant(at time.Time, lat, lon float64) Instant {
	return Instant{At: at.UTC().Round(0), Latitude: lat, Longitude: lon}
}

func (i Instant) String() string {
	return fmt.Sprintf("%s @ %.4f,%.4f", i.At.Format(time.RFC3339), i.Latitude, i.Longitude)
}

// PlanetPosition is one body's resolved placement.
type PlanetPosition struct {
	Body         Body    `json:"name"`
	Longitude    float64 `json:"longitude"`
	Sign         Sign    `json:"sign"`
	DegreeInSign float64 `json:"degree_in_sign"`
	House        int     `json:"house"`
	Retrograde   bool    `json:"retrograde"`
	DailyMotion  float64 `json:"daily_motion"`
}

// HouseCusp is the start of one of the twelve houses.
type HouseCusp struct {
	Number    int     `json:"number"`
	Longitude float64 `json:"longitude"`
	Sign      Sign    `json:"sign"`
}

// HouseCategory groups houses by angularity.
type HouseCategory string

// House categories.
const (
	Angular   HouseCategory = "angular"
	Succedent HouseCategory = "succedent"
	Cadent    HouseCategory = "cadent"
)

// CategoryOf returns the angularity of a house number (1..12).
func CategoryOf(house int) HouseCategory {
	switch house % 3 {
	case 1:
		return Angular
	case 2:
		return Succedent
	default:
		return Cadent
	}
}

// ChartSnapshot is the immutable aggregate every evaluator consumes.
type ChartSnapshot struct {
	Instant               Instant                 `json:"instant"`
	Planets               map[Body]PlanetPosition `json:"planets"`
	Cusps                 [SignCount]HouseCusp    `json:"houses"`
	Ascendant             float64                 `json:"ascendant"`
	Midheaven             float64                 `json:"midheaven"`
	HouseSystem           string                  `json:"house_system"`
	HouseSystemDegenerate bool                    `json:"house_system_degenerate"`
	IsDayChart            bool                    `json:"is_day_chart"`
}

// Position returns the placement of b.
func (c ChartSnapshot) Position(b Body) (PlanetPosition, bool) {
	p, ok := c.Planets[b]
	return p, ok
}

// MustPosition returns the placement of b or an error naming the missing body.
func (c ChartSnapshot) MustPosition(b Body) (PlanetPosition, error) {
	p, ok := c.Planets[b]
	if !ok {
		return PlanetPosition{}, fmt.Errorf("%w: %s", ErrMissingPlanet, b)
	}
	return p, nil
}

// Cusp returns house cusp n (1..12).
func (c ChartSnapshot) Cusp(n int) HouseCusp {
	return c.Cusps[(n-1+SignCount)%SignCount]
}

// AscendantDegree is the ascendant's offset within its sign.
func (c ChartSnapshot) AscendantDegree() float64 { return DegreeInSign(c.Ascendant) }

// Ordinal renders a house number as 1st, 2nd, 3rd...
func Ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}
