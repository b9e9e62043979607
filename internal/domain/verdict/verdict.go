// Package verdict turns the evaluated chart into a yes/no/maybe answer with
// timing and a short interpretation.
package verdict

import (
	"fmt"
	"math"
	"text/template"

	"github.com/okian/horary/internal/domain/dignity"
	"github.com/okian/horary/internal/domain/model"
)

// Score thresholds.
const (
	YesThreshold = 2
	NoThreshold  = -2
)

// Orb limits for the timing unit.
const (
	DaysOrb  = 2.0
	WeeksOrb = 5.0
)

// Rule names in the score breakdown.
const (
	RuleSameRuler       = "same_ruler"
	RuleHarmonious      = "harmonious_applying_aspect"
	RuleAffliction      = "square_or_opposition"
	RuleConjunction     = "conjunction"
	RuleSeparating      = "separating_aspect"
	RuleNoAspect        = "no_aspect"
	RuleEssentialPrefix = "essential_"
)

// TimingMultipliers scale the orb by the angularity of the quesited ruler.
var TimingMultipliers = map[model.HouseCategory]float64{
	model.Angular:   1.5,
	model.Succedent: 1.0,
	model.Cadent:    0.5,
}

// Input is everything the synthesizer reads. It never looks at raw text
// other than for the prose.
type Input struct {
	Chart         model.ChartSnapshot
	Aspects       []model.Aspect
	Essential     map[model.Body]model.EssentialDignity
	Significators model.SignificatorAssignment
	Validity      model.Validity
	Question      string
}

// Synthesizer computes verdicts.
type Synthesizer struct {
	multipliers map[model.HouseCategory]float64
	prose       *template.Template
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithMultipliers overrides timing multipliers per category.
func WithMultipliers(m map[model.HouseCategory]float64) Option {
	return func(s *Synthesizer) {
		for k, v := range m {
			s.multipliers[k] = v
		}
	}
}

// WithTemplate replaces the interpretation template. The template is
// executed with a Summary.
func WithTemplate(t *template.Template) Option {
	return func(s *Synthesizer) {
		if t != nil {
			s.prose = t
		}
	}
}

// New creates a Synthesizer with the default multipliers and prose.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{multipliers: make(map[model.HouseCategory]float64, len(TimingMultipliers)), prose: defaultTemplate}
	for k, v := range TimingMultipliers {
		s.multipliers[k] = v
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize scores the significators, picks the answer, derives timing and
// renders prose. Numeric fields are set even when the prose fails.
func (s *Synthesizer) Synthesize(in Input) model.Verdict {
	sig := in.Significators
	v := model.Verdict{
		IsRadical:     in.Validity.Radical,
		LowConfidence: in.Chart.HouseSystemDegenerate || sig.Confidence == model.ConfidenceLow,
	}

	asp, hasAspect := model.FindAspect(in.Aspects, sig.QuerentRuler, sig.QuesitedRuler)
	switch {
	case sig.SameRuler:
		v.Breakdown = append(v.Breakdown, model.ScoreTerm{Rule: RuleSameRuler, Points: 2})
		hasAspect = false
	case !hasAspect:
		v.Breakdown = append(v.Breakdown, model.ScoreTerm{Rule: RuleNoAspect, Points: -1})
	case asp.Type.Malefic():
		v.Breakdown = append(v.Breakdown, model.ScoreTerm{Rule: RuleAffliction, Points: -2})
	case asp.Type.Harmonious() && asp.Applying:
		v.Breakdown = append(v.Breakdown, model.ScoreTerm{Rule: RuleHarmonious, Points: 2})
	case asp.Type == model.Conjunction:
		v.Breakdown = append(v.Breakdown, model.ScoreTerm{Rule: RuleConjunction, Points: 0})
	default:
		v.Breakdown = append(v.Breakdown, model.ScoreTerm{Rule: RuleSeparating, Points: 0})
	}

	band := EssentialBand(in.Essential[sig.QuerentRuler].Score, in.Essential[sig.QuesitedRuler].Score)
	v.Breakdown = append(v.Breakdown, model.ScoreTerm{Rule: RuleEssentialPrefix + string(band), Points: bandPoints(band)})

	for _, t := range v.Breakdown {
		v.Score += t.Points
	}
	switch {
	case !v.IsRadical:
		v.Answer = model.Maybe
	case v.Score >= YesThreshold:
		v.Answer = model.Yes
	case v.Score <= NoThreshold:
		v.Answer = model.No
	default:
		v.Answer = model.Maybe
	}

	var source *model.Aspect
	if hasAspect && asp.Applying {
		source = &asp
	} else if sig.QuesitedRuler != model.Moon {
		if m, ok := model.FindAspect(in.Aspects, model.Moon, sig.QuesitedRuler); ok && m.Applying {
			source = &m
		}
	}
	v.Timing = s.timing(in, source)

	v.Interpretation, v.InterpretationErrors = s.render(in, v, aspectOrNil(asp, hasAspect))
	return v
}

// EssentialBand assesses the mean essential score of the two significators.
func EssentialBand(querent, quesited int) model.Assessment {
	mean := float64(querent+quesited) / 2
	return dignity.Assess(int(math.Round(mean)))
}

func bandPoints(a model.Assessment) int {
	switch a {
	case model.VeryStrong:
		return 2
	case model.Strong:
		return 1
	case model.Moderate:
		return 0
	default:
		return -1
	}
}

func (s *Synthesizer) timing(in Input, source *model.Aspect) model.Timing {
	if source == nil {
		return model.Timing{Text: "no applying aspect indicates timing"}
	}
	house := in.Significators.QuesitedHouse
	if p, ok := in.Chart.Planets[in.Significators.QuesitedRuler]; ok && p.House > 0 {
		house = p.House
	}
	cat := model.CategoryOf(house)
	mult := s.multipliers[cat]

	t := model.Timing{Indicated: true, Orb: source.Orb, Category: cat, Multiplier: mult}
	switch {
	case source.Orb < DaysOrb:
		t.Unit = model.Days
	case source.Orb < WeeksOrb:
		t.Unit = model.Weeks
	default:
		t.Unit = model.Months
	}
	t.Count = int(math.Round(source.Orb * mult))
	if t.Count < 1 {
		t.Count = 1
	}
	unit := string(t.Unit)
	if t.Count == 1 {
		unit = unit[:len(unit)-1]
	}
	t.Text = fmt.Sprintf("about %d %s (%s %s %s, %.1f° orb, %s)", t.Count, unit, source.A, source.Type, source.B, source.Orb, cat)
	return t
}

func aspectOrNil(a model.Aspect, ok bool) *model.Aspect {
	if !ok {
		return nil
	}
	return &a
}
