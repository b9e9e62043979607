// Package dignity scores essential dignity: a planet's strength from its
// zodiacal position alone.
package dignity

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/tables"
)

// Band thresholds, inclusive lower bounds.
const (
	veryStrongFrom = 7
	strongFrom     = 4
	moderateFrom   = 0
	weakFrom       = -4
)

// Assess bands an essential dignity score.
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

// Evaluator scores essential dignity from the rule tables.
type Evaluator struct {
	t *tables.Tables
}

// New creates an Evaluator over t.
func New(t *tables.Tables) *Evaluator {
	return &Evaluator{t: t}
}

// Evaluate scores body at degree (0..30) of sign. Rulership, exaltation,
// triplicity, term and face stack. When detriment and fall coincide only the
// larger penalty is scored; both flags stay set.
func (e *Evaluator) Evaluate(body model.Body, sign model.Sign, degree float64, isDay bool) model.EssentialDignity {
	d := model.EssentialDignity{Body: body, Sign: sign, Degree: degree}
	if !body.IsPlanet() || !sign.Valid() {
		d.Assessment = Assess(0)
		return d
	}
	p := e.t.Essential

	d.Rulership = e.t.Rules(body, sign)
	d.Exaltation = e.t.Exalted(body, sign)
	d.Triplicity = e.t.TriplicityRuler(sign, isDay) == body
	d.Term = e.t.TermRuler(sign, degree) == body
	d.Face = e.t.FaceRuler(sign, degree) == body
	d.Detriment = e.t.InDetriment(body, sign)
	d.Fall = e.t.InFall(body, sign)
	d.Peregrine = !d.HasPositive()

	score := 0
	for _, held := range []struct {
		ok  bool
		pts int
	}{
		{d.Rulership, p.Rulership},
		{d.Exaltation, p.Exaltation},
		{d.Triplicity, p.Triplicity},
		{d.Term, p.Term},
		{d.Face, p.Face},
	} {
		if held.ok {
			score += held.pts
		}
	}
	switch {
	case d.Detriment && d.Fall:
		score += min(p.Detriment, p.Fall)
	case d.Detriment:
		score += p.Detriment
	case d.Fall:
		score += p.Fall
	}

	d.Score = score
	d.Assessment = Assess(score)
	return d
}

// EvaluateChart scores the seven planets of snap.
func (e *Evaluator) EvaluateChart(snap model.ChartSnapshot) map[model.Body]model.EssentialDignity {
	out := make(map[model.Body]model.EssentialDignity, len(model.Planets))
	for _, b := range model.Planets {
		p, ok := snap.Planets[b]
		if !ok {
			continue
		}
		out[b] = e.Evaluate(b, p.Sign, p.DegreeInSign, snap.IsDayChart)
	}
	return out
}

// AnalyzeContradictions lists ambiguous evidence in d: a positive dignity
// held together with a debility, and detriment coinciding with fall. The
// caller decides what to make of it.
func (e *Evaluator) AnalyzeContradictions(d model.EssentialDignity) []model.Contradiction {
	var out []model.Contradiction

	positives := positiveNames(d)
	debilities := debilityNames(d)

	if len(positives) > 0 && len(debilities) > 0 {
		note := fmt.Sprintf("%s holds %s while in %s", d.Body,
			strings.Join(positives, ", "), strings.Join(debilities, " and "))
		if d.Fall && e.atExactFall(d) {
			note += " at the exact degree of its fall"
		}
		out = append(out, model.Contradiction{
			Body:       d.Body,
			Kind:       model.DignityWithDebility,
			Positive:   positives,
			Debilities: debilities,
			Note:       note,
		})
	}
	if d.Detriment && d.Fall {
		out = append(out, model.Contradiction{
			Body:       d.Body,
			Kind:       model.DetrimentAndFall,
			Debilities: debilities,
			Note:       fmt.Sprintf("%s is in both detriment and fall in %s; only detriment is scored", d.Body, d.Sign),
		})
	}
	return out
}

func (e *Evaluator) atExactFall(d model.EssentialDignity) bool {
	ex, ok := e.t.Exaltations[d.Body]
	return ok && math.Floor(d.Degree) == math.Floor(ex.Degree)
}

func positiveNames(d model.EssentialDignity) []string {
	var out []string
	for _, f := range []struct {
		ok   bool
		name string
	}{
		{d.Rulership, "rulership"},
		{d.Exaltation, "exaltation"},
		{d.Triplicity, "triplicity"},
		{d.Term, "term"},
		{d.Face, "face"},
	} {
		if f.ok {
			out = append(out, f.name)
		}
	}
	return out
}

func debilityNames(d model.EssentialDignity) []string {
	var out []string
	if d.Detriment {
		out = append(out, "detriment")
	}
	if d.Fall {
		out = append(out, "fall")
	}
	return out
}
