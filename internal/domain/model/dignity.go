package model

// Assessment is a five-step banding of a strength score.
type Assessment string

// Assessment bands from weakest to strongest.
const (
	VeryWeak   Assessment = "very_weak"
	Weak       Assessment = "weak"
	Moderate   Assessment = "moderate"
	Strong     Assessment = "strong"
	VeryStrong Assessment = "very_strong"
)

// EssentialDignity answers whether a planet "can act": its strength from
// zodiacal position alone.
type EssentialDignity struct {
	Body       Body       `json:"body"`
	Sign       Sign       `json:"sign"`
	Degree     float64    `json:"degree"`
	Rulership  bool       `json:"rulership"`
	Exaltation bool       `json:"exaltation"`
	Triplicity bool       `json:"triplicity"`
	Term       bool       `json:"term"`
	Face       bool       `json:"face"`
	Detriment  bool       `json:"detriment"`
	Fall       bool       `json:"fall"`
	Peregrine  bool       `json:"peregrine"`
	Score      int        `json:"strength_score"`
	Assessment Assessment `json:"overall_assessment"`
}

// HasPositive reports whether any positive dignity is held.
func (d EssentialDignity) HasPositive() bool {
	return d.Rulership || d.Exaltation || d.Triplicity || d.Term || d.Face
}

// HasDebility reports whether detriment or fall is held.
func (d EssentialDignity) HasDebility() bool { return d.Detriment || d.Fall }

// ContradictionKind labels ambiguous dignity evidence.
type ContradictionKind string

// Contradiction kinds.
const (
	DignityWithDebility ContradictionKind = "dignity_with_debility"
	DetrimentAndFall    ContradictionKind = "detriment_and_fall"
)

// Contradiction is surfaced to callers as ambiguous evidence; it is never
// resolved automatically.
type Contradiction struct {
	Body       Body              `json:"body"`
	Kind       ContradictionKind `json:"kind"`
	Positive   []string          `json:"positive,omitempty"`
	Debilities []string          `json:"debilities,omitempty"`
	Note       string            `json:"note"`
}

// SpeedClass compares a body's daily motion with its mean motion.
type SpeedClass string

// Speed classes.
const (
	SpeedFast    SpeedClass = "fast"
	SpeedAverage SpeedClass = "average"
	SpeedSlow    SpeedClass = "slow"
)

// Station describes a body about to change direction.
type Station string

// Station kinds. StationNone is the zero value.
const (
	StationNone       Station = ""
	StationDirect     Station = "stationing_direct"
	StationRetrograde Station = "stationing_retrograde"
)

// SolarCondition is a planet's relation to the Sun.
type SolarCondition string

// Solar conditions. SolarNone applies to the Sun itself.
const (
	SolarNone     SolarCondition = ""
	Cazimi        SolarCondition = "cazimi"
	Combust       SolarCondition = "combust"
	UnderSunbeams SolarCondition = "under_sunbeams"
	FreeOfSun     SolarCondition = "free"
)

// CuspProximity describes a planet's distance from its house cusp.
type CuspProximity string

// Cusp proximity kinds.
const (
	CuspNone      CuspProximity = ""
	CuspClose     CuspProximity = "close"
	CuspInsulated CuspProximity = "insulated"
)

// StarContact is a conjunction with a tabled fixed star.
type StarContact struct {
	Star  string  `json:"star"`
	Orb   float64 `json:"orb"`
	Score int     `json:"score"`
}

// AccidentalDignities are situational strengths.
type AccidentalDignities struct {
	Angular     bool `json:"angular"`
	Direct      bool `json:"direct"`
	Fast        bool `json:"fast"`
	Cazimi      bool `json:"cazimi"`
	FreeOfSun   bool `json:"free_of_sun"`
	InJoy       bool `json:"in_joy"`
	CloseToCusp bool `json:"close_to_cusp"`
	BeneficStar bool `json:"benefic_star"`
}

// AccidentalDebilities are situational weaknesses. These raw flags are never
// rewritten by contextual interpretation.
type AccidentalDebilities struct {
	Retrograde           bool `json:"retrograde"`
	StationingRetrograde bool `json:"stationing_retrograde"`
	Slow                 bool `json:"slow"`
	Combust              bool `json:"combust"`
	UnderSunbeams        bool `json:"under_sunbeams"`
	Cadent               bool `json:"cadent"`
	MaleficStar          bool `json:"malefic_star"`
}

// Effect is the reading of a condition as helping or hindering.
type Effect string

// Effects.
const (
	Favorable   Effect = "favorable"
	Neutral     Effect = "neutral"
	Unfavorable Effect = "unfavorable"
)

// ContextNote reinterprets a raw condition in light of the question asked.
type ContextNote struct {
	Condition  string `json:"condition"`
	Theme      string `json:"theme"`
	Raw        Effect `json:"raw"`
	Contextual Effect `json:"contextual"`
	Text       string `json:"text"`
}

// AccidentalDignity answers whether a planet "can perform": its situational
// power. It is kept apart from EssentialDignity through the whole pipeline.
type AccidentalDignity struct {
	Body          Body                 `json:"body"`
	House         int                  `json:"house"`
	HouseCategory HouseCategory        `json:"house_category"`
	HouseScore    int                  `json:"house_score"`
	CuspDistance  float64              `json:"cusp_distance"`
	CuspProximity CuspProximity        `json:"cusp_proximity,omitempty"`
	Speed         SpeedClass           `json:"speed"`
	Station       Station              `json:"station,omitempty"`
	Solar         SolarCondition       `json:"solar,omitempty"`
	SunDistance   float64              `json:"sun_distance"`
	FixedStars    []StarContact        `json:"fixed_stars,omitempty"`
	Dignities     AccidentalDignities  `json:"dignities"`
	Debilities    AccidentalDebilities `json:"debilities"`
	Score         int                  `json:"strength_score"`
	Assessment    Assessment           `json:"overall_assessment"`
	Context       []ContextNote        `json:"context,omitempty"`
}
