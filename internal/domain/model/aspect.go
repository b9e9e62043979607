package model

// AspectType is one of the classical Ptolemaic aspects, plus the optional quincunx.
type AspectType string

// Aspect kinds.
const (
	Conjunction AspectType = "conjunction"
	Sextile     AspectType = "sextile"
	Square      AspectType = "square"
	Trine       AspectType = "trine"
	Opposition  AspectType = "opposition"
	Quincunx    AspectType = "quincunx"
)

// MajorAspects are the five aspects horary judgment recognizes.
var MajorAspects = []AspectType{Conjunction, Sextile, Square, Trine, Opposition}

var aspectAngles = map[AspectType]float64{
	Conjunction: 0,
	Sextile:     60,
	Square:      90,
	Trine:       120,
	Quincunx:    150,
	Opposition:  180,
}

// Angle returns the exact separation of the aspect in degrees.
func (t AspectType) Angle() float64 { return aspectAngles[t] }

// Harmonious reports whether the aspect is a sextile or trine.
func (t AspectType) Harmonious() bool { return t == Sextile || t == Trine }

// Malefic reports whether the aspect is a square or opposition.
func (t AspectType) Malefic() bool { return t == Square || t == Opposition }

// Aspect is a detected angular relationship between two bodies.
type Aspect struct {
	A          Body       `json:"planet_a"`
	B          Body       `json:"planet_b"`
	Type       AspectType `json:"aspect_type"`
	ExactAngle float64    `json:"exact_angle"`
	Orb        float64    `json:"orb"`
	Applying   bool       `json:"applying"`
}

// Involves reports whether the aspect connects x and y in either order.
func (a Aspect) Involves(x, y Body) bool {
	return (a.A == x && a.B == y) || (a.A == y && a.B == x)
}

// FindAspect returns the aspect between x and y, if any.
func FindAspect(aspects []Aspect, x, y Body) (Aspect, bool) {
	for _, a := range aspects {
		if a.Involves(x, y) {
			return a, true
		}
	}
	return Aspect{}, false
}
