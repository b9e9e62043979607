package model

// Confidence tags how sure a classification is.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// SignificatorAssignment names the planets standing for the asker and the matter.
type SignificatorAssignment struct {
	QuerentRuler          Body       `json:"querent_ruler"`
	QuerentCoSignificator Body       `json:"querent_co_significator"`
	QuesitedRuler         Body       `json:"quesited_ruler"`
	QuesitedHouse         int        `json:"quesited_house"`
	Topic                 string     `json:"topic"`
	MatchedKeyword        string     `json:"matched_keyword,omitempty"`
	Confidence            Confidence `json:"confidence"`
	SameRuler             bool       `json:"same_ruler"`
}

// RadicalityNote explains a non-radical ascendant.
type RadicalityNote string

// Radicality notes.
const (
	RadicalOK RadicalityNote = ""
	TooEarly  RadicalityNote = "too_early"
	TooLate   RadicalityNote = "too_late"
)

// MoonContact is the next aspect the Moon perfects before leaving its sign.
type MoonContact struct {
	Body   Body       `json:"body"`
	Type   AspectType `json:"aspect_type"`
	InDays float64    `json:"in_days"`
}

// Validity records whether the chart is fit for judgment.
type Validity struct {
	Radical             bool           `json:"radical"`
	RadicalityNote      RadicalityNote `json:"radicality_note,omitempty"`
	AscendantDegree     float64        `json:"ascendant_degree"`
	MoonNotVoid         bool           `json:"moon_not_void"`
	MoonNextContact     *MoonContact   `json:"moon_next_contact,omitempty"`
	ViaCombusta         bool           `json:"via_combusta"`
	SaturnNotIn1stOr7th bool           `json:"saturn_not_in_1st_or_7th"`
	SaturnHouse         int            `json:"saturn_house"`
	Cautions            []string       `json:"cautions,omitempty"`
}

// Answer is the verdict's yes/no/maybe.
type Answer string

// Answers.
const (
	Yes   Answer = "yes"
	No    Answer = "no"
	Maybe Answer = "maybe"
)

// TimeUnit is the scale of a timing prediction.
type TimeUnit string

// Time units.
const (
	Days   TimeUnit = "days"
	Weeks  TimeUnit = "weeks"
	Months TimeUnit = "months"
)

// Timing is derived from the orb of the applying significator aspect.
type Timing struct {
	Indicated  bool          `json:"indicated"`
	Unit       TimeUnit      `json:"unit,omitempty"`
	Count      int           `json:"count,omitempty"`
	Orb        float64       `json:"orb,omitempty"`
	Category   HouseCategory `json:"house_category,omitempty"`
	Multiplier float64       `json:"multiplier,omitempty"`
	Text       string        `json:"text"`
}

// ScoreTerm is one contribution to the verdict score.
type ScoreTerm struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

// Verdict is the terminal output of the engine. Numeric fields are always
// populated; Interpretation is best-effort prose.
type Verdict struct {
	Answer               Answer      `json:"answer"`
	Score                int         `json:"score"`
	Breakdown            []ScoreTerm `json:"breakdown"`
	Timing               Timing      `json:"timing"`
	Interpretation       string      `json:"interpretation"`
	InterpretationErrors []string    `json:"interpretation_errors,omitempty"`
	IsRadical            bool        `json:"is_radical"`
	LowConfidence        bool        `json:"low_confidence"`
}
