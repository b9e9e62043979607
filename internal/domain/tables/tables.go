// Package tables holds the immutable, versioned rule tables every evaluator
// reads: essential dignities, accidental scoring, fixed stars, and the
// question keyword lists. Tables are decoded from embedded YAML once and
// validated before use.
package tables

import (
	"github.com/okian/horary/internal/domain/model"
)

// Exaltation is a planet's exaltation sign and exact degree.
type Exaltation struct {
	Sign   model.Sign
	Degree float64
}

// TripRulers are the day and night triplicity rulers of an element.
type TripRulers struct {
	Day   model.Body
	Night model.Body
}

// Term is one Egyptian term, ruling up to (not including) End.
type Term struct {
	Ruler model.Body
	End   float64
}

// EssentialPoints are the score weights of essential dignities.
type EssentialPoints struct {
	Rulership  int
	Exaltation int
	Triplicity int
	Term       int
	Face       int
	Detriment  int
	Fall       int
}

// AccidentalPoints are the score weights of accidental conditions.
type AccidentalPoints struct {
	CloseToCusp          int
	Fast                 int
	Slow                 int
	StationingDirect     int
	StationingRetrograde int
	Retrograde           int
	Direct               int
	Cazimi               int
	Combust              int
	UnderSunbeams        int
	FreeOfSun            int
	Joy                  int
}

// FixedStar is a tabled star with its J2000 longitude.
type FixedStar struct {
	Name      string
	Longitude float64
	Score     int
}

// Topic maps question keywords to a house.
type Topic struct {
	Name     string
	House    int
	Keywords []string
}

// Theme is a question context that can reweight conditions.
type Theme struct {
	Name     string
	Keywords []string
}

// Tables is the full, validated rule set. Treat as read-only.
type Tables struct {
	Version string

	Rulers       [model.SignCount]model.Body
	Exaltations  map[model.Body]Exaltation
	Triplicities map[model.Element]TripRulers
	Terms        [model.SignCount][]Term
	Faces        [model.SignCount][3]model.Body
	Essential    EssentialPoints

	HouseScores [model.SignCount + 1]int
	MeanMotion  map[model.Body]float64
	Joys        map[model.Body]int
	FixedStars  []FixedStar
	Accidental  AccidentalPoints

	Topics       []Topic
	DefaultTopic Topic
	Themes       []Theme
}

// Ruler returns the domicile ruler of s.
func (t *Tables) Ruler(s model.Sign) model.Body { return t.Rulers[s] }

// Rules reports whether b rules s.
func (t *Tables) Rules(b model.Body, s model.Sign) bool { return t.Rulers[s] == b }

// InDetriment reports whether b is in the sign opposite one it rules.
func (t *Tables) InDetriment(b model.Body, s model.Sign) bool {
	return t.Rulers[s.Opposite()] == b
}

// Exalted reports whether b is exalted in s.
func (t *Tables) Exalted(b model.Body, s model.Sign) bool {
	e, ok := t.Exaltations[b]
	return ok && e.Sign == s
}

// InFall reports whether b is in the sign opposite its exaltation.
func (t *Tables) InFall(b model.Body, s model.Sign) bool {
	e, ok := t.Exaltations[b]
	return ok && e.Sign.Opposite() == s
}

// TriplicityRuler returns the sect-appropriate triplicity ruler of s.
func (t *Tables) TriplicityRuler(s model.Sign, isDay bool) model.Body {
	r := t.Triplicities[s.Element()]
	if isDay {
		return r.Day
	}
	return r.Night
}

// TermRuler returns the Egyptian term ruler at degree (0..30) of s.
func (t *Tables) TermRuler(s model.Sign, degree float64) model.Body {
	terms := t.Terms[s]
	for _, term := range terms {
		if degree < term.End {
			return term.Ruler
		}
	}
	return terms[len(terms)-1].Ruler
}

// FaceRuler returns the Chaldean face ruler at degree (0..30) of s.
func (t *Tables) FaceRuler(s model.Sign, degree float64) model.Body {
	idx := int(degree / 10)
	if idx > 2 {
		idx = 2
	}
	if idx < 0 {
		idx = 0
	}
	return t.Faces[s][idx]
}

// HouseScore returns the accidental score of house 1..12.
func (t *Tables) HouseScore(house int) int {
	if house < 1 || house > model.SignCount {
		return 0
	}
	return t.HouseScores[house]
}
