// Package aspect detects angular relationships between chart bodies.
package aspect

import (
	"math"
	"sort"

	"github.com/okian/horary/internal/domain/model"
)

// applyingStep is the forward step, in days, used to decide whether an orb
// is closing.
const applyingStep = 1e-3

// Orbs is the detection orb policy: the widest separation from exact at
// which an aspect is still recognized.
type Orbs map[model.AspectType]float64

// DefaultOrbs are the traditional moiety-free orbs.
func DefaultOrbs() Orbs {
	return Orbs{
		model.Conjunction: 8,
		model.Sextile:     6,
		model.Square:      7,
		model.Trine:       8,
		model.Opposition:  8,
		model.Quincunx:    3,
	}
}

// Detector finds aspects in a snapshot.
type Detector struct {
	orbs     Orbs
	points   bool
	quincunx bool
}

// Option configures a Detector.
type Option func(*Detector)

// WithPoints includes the nodes and Part of Fortune.
func WithPoints(enabled bool) Option {
	return func(d *Detector) { d.points = enabled }
}

// WithQuincunx adds the 150 degree aspect.
func WithQuincunx(enabled bool) Option {
	return func(d *Detector) { d.quincunx = enabled }
}

// WithOrbs overrides individual orbs.
func WithOrbs(orbs Orbs) Option {
	return func(d *Detector) {
		for t, o := range orbs {
			d.orbs[t] = o
		}
	}
}

// New creates a Detector over the seven planets with default orbs.
func New(opts ...Option) *Detector {
	d := &Detector{orbs: DefaultOrbs()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detector) types() []model.AspectType {
	if d.quincunx {
		return append(append([]model.AspectType{}, model.MajorAspects...), model.Quincunx)
	}
	return model.MajorAspects
}

// Match returns the aspect closest to exact for a separation in [0, 180],
// if any lies within its orb.
func (d *Detector) Match(sep float64) (model.AspectType, float64, bool) {
	var (
		best    model.AspectType
		bestOrb = math.Inf(1)
	)
	for _, t := range d.types() {
		orb := math.Abs(sep - t.Angle())
		if orb <= d.orbs[t] && orb < bestOrb {
			best, bestOrb = t, orb
		}
	}
	return best, bestOrb, best != ""
}

// Detect returns one aspect per connected pair, sorted by body order.
func (d *Detector) Detect(snap model.ChartSnapshot) []model.Aspect {
	bodies := make([]model.Body, 0, len(model.AllBodies))
	for _, b := range model.AllBodies {
		if !b.IsPlanet() && !d.points {
			continue
		}
		if _, ok := snap.Planets[b]; ok {
			bodies = append(bodies, b)
		}
	}

	var out []model.Aspect
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if !a.IsPlanet() && !b.IsPlanet() {
				continue
			}
			pa, pb := snap.Planets[a], snap.Planets[b]
			t, orb, ok := d.Match(model.Separation(pa.Longitude, pb.Longitude))
			if !ok {
				continue
			}
			out = append(out, model.Aspect{
				A:          a,
				B:          b,
				Type:       t,
				ExactAngle: t.Angle(),
				Orb:        orb,
				Applying:   Applying(pa, pb, t),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A.Order() < out[j].A.Order()
		}
		return out[i].B.Order() < out[j].B.Order()
	})
	return out
}

// OrbAfter returns the orb of aspect t between a and b after days, moving
// both bodies at their daily motion.
func OrbAfter(a, b model.PlanetPosition, t model.AspectType, days float64) float64 {
	la := a.Longitude + a.DailyMotion*days
	lb := b.Longitude + b.DailyMotion*days
	return math.Abs(model.Separation(la, lb) - t.Angle())
}

// Applying reports whether the orb of t between a and b is shrinking.
func Applying(a, b model.PlanetPosition, t model.AspectType) bool {
	return OrbAfter(a, b, t, applyingStep) < OrbAfter(a, b, t, 0)
}
