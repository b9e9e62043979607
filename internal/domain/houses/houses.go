// Package houses resolves the twelve house cusps, ascendant and midheaven
// for an instant and coordinate.
package houses

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/horary/internal/domain/ephemeris"
	"github.com/okian/horary/internal/domain/model"
)

// System names a house division method.
type System string

// Supported systems.
const (
	Regiomontanus System = "regiomontanus"
	Porphyry      System = "porphyry"
	Equal         System = "equal"
)

const maxLatitude = 89.9999

// ParseSystem resolves a case-insensitive system name.
func ParseSystem(name string) (System, error) {
	s := System(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case Regiomontanus, Porphyry, Equal:
		return s, nil
	case "":
		return Regiomontanus, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSystem, name)
}

// Result is the resolved house frame. Cusps[0] is house 1.
type Result struct {
	Cusps      [model.SignCount]float64
	Ascendant  float64
	Midheaven  float64
	System     System
	Degenerate bool
}

// Cusp returns the longitude of house n (1..12).
func (r Result) Cusp(n int) float64 {
	return r.Cusps[(n-1+model.SignCount)%model.SignCount]
}

// HouseOf returns the house (1..12) containing lon. A longitude exactly on a
// cusp belongs to the house that starts there.
func (r Result) HouseOf(lon float64) int {
	lon = model.Normalize(lon)
	for i := range model.SignCount {
		start := r.Cusps[i]
		end := r.Cusps[(i+1)%model.SignCount]
		width := model.Normalize(end - start)
		if model.Normalize(lon-start) < width {
			return i + 1
		}
	}
	// Unreachable for a monotonic frame; pick the nearest cusp behind lon.
	best, bestDist := 1, math.Inf(1)
	for i := range model.SignCount {
		if d := model.Normalize(lon - r.Cusps[i]); d < bestDist {
			best, bestDist = i+1, d
		}
	}
	return best
}

// Resolver computes house frames using one System.
type Resolver struct {
	system System
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSystem selects the house system.
func WithSystem(s System) Option {
	return func(r *Resolver) {
		if s != "" {
			r.system = s
		}
	}
}

// New creates a Resolver; Regiomontanus is the default.
func New(opts ...Option) *Resolver {
	r := &Resolver{system: Regiomontanus}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// System returns the configured system.
func (r *Resolver) System() System { return r.system }

// Resolve computes the frame for inst. Quadrant systems that fail at the
// given latitude fall back to equal houses with Degenerate set.
func (r *Resolver) Resolve(inst model.Instant) (Result, error) {
	if _, err := ParseSystem(string(r.system)); err != nil {
		return Result{}, err
	}

	jd := ephemeris.JulianDay(inst.At)
	eps := ephemeris.Obliquity(jd)
	ramc := SiderealTime(jd, inst.Longitude)
	lat := math.Max(-maxLatitude, math.Min(maxLatitude, inst.Latitude))

	mc := eclipticPoint(ramc, 0, eps)
	asc := eclipticPoint(ramc+90, math.Tan(rad(lat)), eps)

	res := Result{Ascendant: asc, Midheaven: mc, System: r.system}
	if r.system == Equal {
		res.Cusps = equalCusps(asc)
		return res, nil
	}

	if math.Abs(lat) >= 90-eps {
		res.Cusps = equalCusps(asc)
		res.System = Equal
		res.Degenerate = true
		return res, nil
	}

	var cusps [model.SignCount]float64
	switch r.system {
	case Porphyry:
		cusps = porphyryCusps(asc, mc)
	default:
		cusps = regiomontanusCusps(ramc, lat, eps)
	}
	if !monotonic(cusps) {
		res.Cusps = equalCusps(asc)
		res.System = Equal
		res.Degenerate = true
		return res, nil
	}
	res.Cusps = cusps
	return res, nil
}

// SiderealTime returns the local sidereal time in degrees (the RAMC) for a
// Julian day and east-positive longitude.
func SiderealTime(jd, longitude float64) float64 {
	T := ephemeris.Centuries(jd)
	gmst := 280.46061837 + 360.98564736629*(jd-2451545.0) + 0.000387933*T*T - T*T*T/38710000
	return model.Normalize(gmst + longitude)
}

// eclipticPoint projects right ascension ra through a house circle whose
// pole has tangent tanPole onto the ecliptic.
func eclipticPoint(ra, tanPole, eps float64) float64 {
	y := math.Sin(rad(ra))
	x := math.Cos(rad(ra))*math.Cos(rad(eps)) - tanPole*math.Sin(rad(eps))
	return model.Normalize(math.Atan2(y, x) * 180 / math.Pi)
}

func regiomontanusCusps(ramc, lat, eps float64) [model.SignCount]float64 {
	tanLat := math.Tan(rad(lat))
	var c [model.SignCount]float64
	c[9] = eclipticPoint(ramc, 0, eps)
	c[10] = eclipticPoint(ramc+30, tanLat*math.Sin(rad(30)), eps)
	c[11] = eclipticPoint(ramc+60, tanLat*math.Sin(rad(60)), eps)
	c[0] = eclipticPoint(ramc+90, tanLat, eps)
	c[1] = eclipticPoint(ramc+120, tanLat*math.Sin(rad(60)), eps)
	c[2] = eclipticPoint(ramc+150, tanLat*math.Sin(rad(30)), eps)
	fillOpposites(&c)
	return c
}

func porphyryCusps(asc, mc float64) [model.SignCount]float64 {
	var c [model.SignCount]float64
	upper := model.Normalize(asc - mc)
	lower := model.HalfCircle - upper
	c[9] = mc
	c[10] = model.Normalize(mc + upper/3)
	c[11] = model.Normalize(mc + 2*upper/3)
	c[0] = asc
	c[1] = model.Normalize(asc + lower/3)
	c[2] = model.Normalize(asc + 2*lower/3)
	fillOpposites(&c)
	return c
}

func equalCusps(asc float64) [model.SignCount]float64 {
	var c [model.SignCount]float64
	for i := range c {
		c[i] = model.Normalize(asc + float64(i)*model.SignWidth)
	}
	return c
}

func fillOpposites(c *[model.SignCount]float64) {
	for _, i := range []int{0, 1, 2, 9, 10, 11} {
		c[(i+6)%model.SignCount] = model.Normalize(c[i] + model.HalfCircle)
	}
}

// monotonic reports whether every house spans (0, 180) degrees and the
// ascendant lies east of the midheaven.
func monotonic(c [model.SignCount]float64) bool {
	total := 0.0
	for i := range c {
		arc := model.Normalize(c[(i+1)%model.SignCount] - c[i])
		if arc <= 0 || arc >= model.HalfCircle {
			return false
		}
		total += arc
	}
	if math.Abs(total-model.FullCircle) > 1e-6 {
		return false
	}
	d := model.Normalize(c[0] - c[9])
	return d > 0 && d < model.HalfCircle
}

func rad(d float64) float64 { return d * math.Pi / 180 }
