// Package ephemeris computes geocentric ecliptic longitudes of the seven
// traditional planets and the mean lunar node.
//
// The Keplerian provider evaluates mean orbital elements of date with the
// principal lunar and Jupiter/Saturn perturbations. Accuracy is about one to
// two arc-minutes for the luminaries and a few arc-minutes for the planets,
// which is enough to resolve sign, house and aspect but not for astronomy.
package ephemeris

import (
	"context"
	"math"
	"time"

	"github.com/okian/horary/internal/domain/model"
)

const (
	unixEpochJD = 2440587.5
	j2000JD     = 2451545.0
	// Day zero of the orbital element polynomials (1999-12-31 00:00 TT).
	elementEpochJD  = 2451543.5
	daysPerCentury  = 36525.0
	secondsPerDay   = 86400.0
	keplerTolerance = 1e-9
	keplerMaxIter   = 30
	defaultStep     = 24 * time.Hour
)

// Motion is one body's longitude and apparent daily motion.
type Motion struct {
	Longitude   float64 `json:"longitude"`
	DailyMotion float64 `json:"daily_motion"`
	Retrograde  bool    `json:"retrograde"`
}

// Provider yields body motions for an instant.
type Provider interface {
	Positions(ctx context.Context, at time.Time) (map[model.Body]Motion, error)
}

// Keplerian is a deterministic in-memory Provider. It holds no mutable state
// and is safe for concurrent use.
type Keplerian struct {
	min, max time.Time
	step     time.Duration
}

// Default supported years, inclusive.
const (
	DefaultMinYear = 1800
	DefaultMaxYear = 2199
)

// New creates a Keplerian provider supporting 1800-01-01..2199-12-31 UTC by default.
func New(opts ...Option) *Keplerian {
	k := &Keplerian{step: defaultStep}
	WithYearRange(DefaultMinYear, DefaultMaxYear)(k)
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Range returns the supported window.
func (k *Keplerian) Range() (time.Time, time.Time) { return k.min, k.max }

// Positions returns the seven planets and the mean north node at at.
func (k *Keplerian) Positions(ctx context.Context, at time.Time) (map[model.Body]Motion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	at = at.UTC()
	if at.Before(k.min) || at.After(k.max) {
		return nil, &RangeError{At: at, Min: k.min, Max: k.max}
	}

	jd := JulianDay(at)
	stepDays := k.step.Hours() / 24
	now := longitudes(jd)
	next := longitudes(jd + stepDays)

	out := make(map[model.Body]Motion, len(model.Planets)+1)
	for _, b := range model.Planets {
		out[b] = motion(now[b], next[b], stepDays)
	}
	out[model.NorthNode] = MeanNode(at)
	return out, nil
}

func motion(lon, later, stepDays float64) Motion {
	daily := model.SignedDelta(lon, later) / stepDays
	return Motion{Longitude: lon, DailyMotion: daily, Retrograde: daily < 0}
}

// JulianDay converts a time to a Julian day number (UT).
func JulianDay(t time.Time) float64 {
	return float64(t.UTC().UnixNano())/1e9/secondsPerDay + unixEpochJD
}

// Centuries returns Julian centuries since J2000 for jd.
func Centuries(jd float64) float64 { return (jd - j2000JD) / daysPerCentury }

// MeanNode returns the mean north lunar node. Its motion is always retrograde.
func MeanNode(at time.Time) Motion {
	T := Centuries(JulianDay(at))
	omega := 125.04452 - 1934.136261*T + 0.0020708*T*T + T*T*T/450000
	return Motion{
		Longitude:   model.Normalize(omega),
		DailyMotion: -1934.136261 / daysPerCentury,
		Retrograde:  true,
	}
}

// Obliquity returns the mean obliquity of the ecliptic in degrees.
func Obliquity(jd float64) float64 {
	return 23.439291 - 0.0130042*Centuries(jd)
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
func deg(r float64) float64   { return r * 180 / math.Pi }
func sind(x float64) float64  { return math.Sin(rad(x)) }
func cosd(x float64) float64  { return math.Cos(rad(x)) }
