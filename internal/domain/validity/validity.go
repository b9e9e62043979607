// Package validity decides whether a chart is fit to be judged.
package validity

import (
	"fmt"

	"github.com/okian/horary/internal/domain/aspect"
	"github.com/okian/horary/internal/domain/model"
)

// Defaults for the admissibility rules.
const (
	// PerfectionOrb is how close an applying aspect must come before the
	// Moon leaves its sign for the Moon to count as not void. It is
	// separate from the detection orbs in package aspect.
	PerfectionOrb = 3.0

	RadicalMinDegree = 3.0
	RadicalMaxDegree = 27.0

	ViaCombustaStart = 195.0 // 15 Libra
	ViaCombustaEnd   = 225.0 // 15 Scorpio

	moonMeanMotion = 13.1764
	projectionStep = 0.02 // days
)

// Checker applies the classical considerations before judgment.
type Checker struct {
	perfectionOrb float64
	radicalMin    float64
	radicalMax    float64
}

// Option configures a Checker.
type Option func(*Checker)

// WithPerfectionOrb overrides the void-of-course perfection orb.
func WithPerfectionOrb(orb float64) Option {
	return func(c *Checker) {
		if orb > 0 {
			c.perfectionOrb = orb
		}
	}
}

// WithRadicalRange overrides the admissible ascendant degrees.
func WithRadicalRange(minDeg, maxDeg float64) Option {
	return func(c *Checker) {
		if minDeg >= 0 && maxDeg <= model.SignWidth && minDeg < maxDeg {
			c.radicalMin, c.radicalMax = minDeg, maxDeg
		}
	}
}

// New creates a Checker with the traditional limits.
func New(opts ...Option) *Checker {
	c := &Checker{perfectionOrb: PerfectionOrb, radicalMin: RadicalMinDegree, radicalMax: RadicalMaxDegree}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check evaluates radicality, the Moon's course, via combusta and Saturn.
// Only radicality changes the verdict; the rest are cautions.
func (c *Checker) Check(snap model.ChartSnapshot) model.Validity {
	v := model.Validity{AscendantDegree: snap.AscendantDegree(), MoonNotVoid: true, SaturnNotIn1stOr7th: true}

	switch {
	case v.AscendantDegree < c.radicalMin:
		v.RadicalityNote = model.TooEarly
		v.Cautions = append(v.Cautions, fmt.Sprintf("ascendant at %.1f° is too early to judge", v.AscendantDegree))
	case v.AscendantDegree > c.radicalMax:
		v.RadicalityNote = model.TooLate
		v.Cautions = append(v.Cautions, fmt.Sprintf("ascendant at %.1f° is too late to judge", v.AscendantDegree))
	default:
		v.Radical = true
	}

	if moon, ok := snap.Planets[model.Moon]; ok {
		contact := c.nextMoonContact(snap, moon)
		v.MoonNextContact = contact
		v.MoonNotVoid = contact != nil
		if !v.MoonNotVoid {
			v.Cautions = append(v.Cautions, "moon is void of course: nothing will come of the matter")
		}
		if moon.Longitude >= ViaCombustaStart && moon.Longitude <= ViaCombustaEnd {
			v.ViaCombusta = true
			v.Cautions = append(v.Cautions, "moon in the via combusta")
		}
	}

	if sat, ok := snap.Planets[model.Saturn]; ok {
		v.SaturnHouse = sat.House
		if sat.House == 1 || sat.House == 7 {
			v.SaturnNotIn1stOr7th = false
			v.Cautions = append(v.Cautions, fmt.Sprintf("saturn in the %s house may harm the judgment", model.Ordinal(sat.House)))
		}
	}

	if snap.HouseSystemDegenerate {
		v.Cautions = append(v.Cautions, "quadrant houses failed at this latitude; equal houses used")
	}
	return v
}

// IsVoidOfCourse reports whether the Moon perfects no major aspect before
// leaving its sign.
func (c *Checker) IsVoidOfCourse(snap model.ChartSnapshot) bool {
	moon, ok := snap.Planets[model.Moon]
	if !ok {
		return false
	}
	return c.nextMoonContact(snap, moon) == nil
}

// nextMoonContact projects the Moon forward to its sign boundary with the
// other planets moving at their daily rates. It returns the first aspect
// that closes to within the perfection orb, or nil.
func (c *Checker) nextMoonContact(snap model.ChartSnapshot, moon model.PlanetPosition) *model.MoonContact {
	speed := moon.DailyMotion
	if speed <= 0 {
		speed = moonMeanMotion
	}
	horizon := (model.SignWidth - moon.DegreeInSign) / speed

	type candidate struct {
		body model.Body
		pos  model.PlanetPosition
		typ  model.AspectType
		orb0 float64
	}
	var cands []candidate
	for _, b := range model.Planets {
		if b == model.Moon {
			continue
		}
		p, ok := snap.Planets[b]
		if !ok {
			continue
		}
		for _, t := range model.MajorAspects {
			cands = append(cands, candidate{b, p, t, aspect.OrbAfter(moon, p, t, 0)})
		}
	}

	for t := projectionStep; ; t += projectionStep {
		if t > horizon {
			t = horizon
		}
		for _, cd := range cands {
			orb := aspect.OrbAfter(moon, cd.pos, cd.typ, t)
			if orb <= c.perfectionOrb && orb < cd.orb0 {
				return &model.MoonContact{Body: cd.body, Type: cd.typ, InDays: t}
			}
		}
		if t >= horizon {
			return nil
		}
	}
}
