// Package accidental scores accidental dignity: a planet's situational power
// from house, motion, the Sun and fixed stars. It is kept apart from
// essential dignity; only the verdict ever combines the two.
package accidental

import (
	"math"
	"sort"
	"time"

	"github.com/okian/horary/internal/domain/ephemeris"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/tables"
)

// Thresholds in degrees or fractions of mean motion.
const (
	CazimiOrb        = 16.0 / 60 // 0°16'
	CombustOrb       = 8.5
	UnderSunbeamsOrb = 17.0
	CloseToCuspOrb   = 5.0
	InsulationOrb    = 15.0
	FixedStarOrb     = 1.0

	fastRatio    = 1.10
	slowRatio    = 0.90
	stationRatio = 0.10

	precessionPerYear = 50.29 / 3600
	daysPerYear       = 365.25
	j2000JD           = 2451545.0
)

// Band thresholds for the accidental score, inclusive lower bounds.
const (
	veryStrongFrom = 11
	strongFrom     = 6
	moderateFrom   = 0
	weakFrom       = -4
)

// Assess bands an accidental score.
func Assess(score int) model.Assessment {
	switch {
	case score >= veryStrongFrom:
		return model.VeryStrong
	case score >= strongFrom:
		return model.Strong
	case score >= moderateFrom:
		return model.Moderate
	case score >= weakFrom:
		return model.Weak
	default:
		return model.VeryWeak
	}
}

// Input is one planet's situation. Sign and house come from the chart
// assembler; nothing here re-derives them from longitude.
type Input struct {
	Body          model.Body
	House         int
	Longitude     float64
	Sign          model.Sign
	DailyMotion   float64
	Retrograde    bool
	SunLongitude  float64
	SunSign       model.Sign
	CuspLongitude float64
	CuspSign      model.Sign
	Question      string
	At            time.Time
}

// Evaluator scores accidental dignity.
type Evaluator struct {
	t          *tables.Tables
	classifier ThemeClassifier
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithThemeClassifier replaces the keyword theme classifier.
func WithThemeClassifier(c ThemeClassifier) Option {
	return func(e *Evaluator) {
		if c != nil {
			e.classifier = c
		}
	}
}

// New creates an Evaluator over t.
func New(t *tables.Tables, opts ...Option) *Evaluator {
	e := &Evaluator{t: t, classifier: NewKeywordThemeClassifier(t.Themes)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores one body and attaches the contextual reading of its
// conditions for in.Question.
func (e *Evaluator) Evaluate(in Input) model.AccidentalDignity {
	p := e.t.Accidental
	d := model.AccidentalDignity{
		Body:          in.Body,
		House:         in.House,
		HouseCategory: model.CategoryOf(in.House),
		HouseScore:    e.t.HouseScore(in.House),
	}
	score := d.HouseScore

	switch d.HouseCategory {
	case model.Angular:
		d.Dignities.Angular = true
	case model.Cadent:
		d.Debilities.Cadent = true
	}

	d.CuspDistance = model.Normalize(in.Longitude - in.CuspLongitude)
	switch {
	case d.CuspDistance <= CloseToCuspOrb:
		d.CuspProximity = model.CuspClose
		d.Dignities.CloseToCusp = true
		score += p.CloseToCusp
	case in.Sign == in.CuspSign && d.CuspDistance > InsulationOrb:
		d.CuspProximity = model.CuspInsulated
	}

	if mean, ok := e.t.MeanMotion[in.Body]; ok && mean > 0 {
		score += e.motion(&d, in, mean)
	}

	if in.Body.IsPlanet() && in.Body != model.Sun {
		score += e.solar(&d, in)
	}

	for _, star := range e.t.FixedStars {
		lon := PrecessedLongitude(star.Longitude, in.At)
		orb := model.Separation(in.Longitude, lon)
		if orb > FixedStarOrb {
			continue
		}
		d.FixedStars = append(d.FixedStars, model.StarContact{Star: star.Name, Orb: orb, Score: star.Score})
		score += star.Score
		if star.Score > 0 {
			d.Dignities.BeneficStar = true
		} else {
			d.Debilities.MaleficStar = true
		}
	}

	if joy, ok := e.t.Joys[in.Body]; ok && joy == in.House {
		d.Dignities.InJoy = true
		score += p.Joy
	}

	d.Score = score
	d.Assessment = Assess(score)
	d.Context = ContextualInterpretation(d, in.Question, e.classifier)
	return d
}

// motion handles speed, station and direction. A stationing planet is
// flagged slow but scored only for the station.
func (e *Evaluator) motion(d *model.AccidentalDignity, in Input, mean float64) int {
	p := e.t.Accidental
	score := 0
	ratio := math.Abs(in.DailyMotion) / mean

	switch {
	case ratio > fastRatio:
		d.Speed = model.SpeedFast
		d.Dignities.Fast = true
		score += p.Fast
	case ratio < slowRatio:
		d.Speed = model.SpeedSlow
		d.Debilities.Slow = true
	default:
		d.Speed = model.SpeedAverage
	}

	if in.Body.IsLuminary() {
		if d.Debilities.Slow {
			score += p.Slow
		}
		return score
	}

	switch {
	case ratio < stationRatio && in.Retrograde:
		d.Station = model.StationDirect
		score += p.StationingDirect
	case ratio < stationRatio:
		d.Station = model.StationRetrograde
		d.Debilities.StationingRetrograde = true
		score += p.StationingRetrograde
	case d.Debilities.Slow:
		score += p.Slow
	}

	if in.Retrograde {
		d.Debilities.Retrograde = true
		score += p.Retrograde
	} else {
		d.Dignities.Direct = true
		score += p.Direct
	}
	return score
}

// solar classifies the planet against the Sun. Combustion needs the Sun's
// sign; across a sign boundary the planet is only under the beams.
func (e *Evaluator) solar(d *model.AccidentalDignity, in Input) int {
	p := e.t.Accidental
	d.SunDistance = model.Separation(in.Longitude, in.SunLongitude)
	switch {
	case d.SunDistance <= CazimiOrb:
		d.Solar = model.Cazimi
		d.Dignities.Cazimi = true
		return p.Cazimi
	case d.SunDistance <= CombustOrb && in.Sign == in.SunSign:
		d.Solar = model.Combust
		d.Debilities.Combust = true
		return p.Combust
	case d.SunDistance <= UnderSunbeamsOrb:
		d.Solar = model.UnderSunbeams
		d.Debilities.UnderSunbeams = true
		return p.UnderSunbeams
	default:
		d.Solar = model.FreeOfSun
		d.Dignities.FreeOfSun = true
		return p.FreeOfSun
	}
}

// EvaluateChart scores the seven planets of snap for question.
func (e *Evaluator) EvaluateChart(snap model.ChartSnapshot, question string) map[model.Body]model.AccidentalDignity {
	out := make(map[model.Body]model.AccidentalDignity, len(model.Planets))
	sun, hasSun := snap.Planets[model.Sun]
	for _, b := range model.Planets {
		pos, ok := snap.Planets[b]
		if !ok {
			continue
		}
		cusp := snap.Cusp(pos.House)
		in := Input{
			Body:          b,
			House:         pos.House,
			Longitude:     pos.Longitude,
			Sign:          pos.Sign,
			DailyMotion:   pos.DailyMotion,
			Retrograde:    pos.Retrograde,
			CuspLongitude: cusp.Longitude,
			CuspSign:      cusp.Sign,
			Question:      question,
			At:            snap.Instant.At,
		}
		if hasSun {
			in.SunLongitude, in.SunSign = sun.Longitude, sun.Sign
		} else {
			// Without a Sun every planet reads as free of it.
			in.SunLongitude = model.Normalize(pos.Longitude + model.HalfCircle)
		}
		out[b] = e.Evaluate(in)
	}
	return out
}

// PrecessedLongitude moves a J2000 star longitude to the equinox of at.
func PrecessedLongitude(j2000Lon float64, at time.Time) float64 {
	if at.IsZero() {
		return model.Normalize(j2000Lon)
	}
	years := (ephemeris.JulianDay(at) - j2000JD) / daysPerYear
	return model.Normalize(j2000Lon + years*precessionPerYear)
}

func sortedNotes(notes []model.ContextNote) []model.ContextNote {
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Condition < notes[j].Condition })
	return notes
}
