package tables

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/okian/horary/internal/domain/model"
)

//go:embed data/*.yaml
var dataFS embed.FS

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// Default returns the embedded tables, decoded and validated on first use.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = LoadFS(dataFS)
	})
	return defaultTables, defaultErr
}

// MustDefault is Default for process start-up; it panics on a broken build.
func MustDefault() *Tables {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

type rawExaltation struct {
	Sign   string  `yaml:"sign"`
	Degree float64 `yaml:"degree"`
}

type rawTerm struct {
	Ruler string  `yaml:"ruler"`
	End   float64 `yaml:"end"`
}

type rawDignities struct {
	Version      string                       `yaml:"version"`
	Rulers       map[string]string            `yaml:"rulers"`
	Exaltations  map[string]rawExaltation     `yaml:"exaltations"`
	Triplicities map[string]map[string]string `yaml:"triplicities"`
	Terms        map[string][]rawTerm         `yaml:"terms"`
	Faces        map[string][]string          `yaml:"faces"`
	Points       map[string]int               `yaml:"points"`
}

type rawStar struct {
	Name      string  `yaml:"name"`
	Longitude float64 `yaml:"longitude"`
	Score     int     `yaml:"score"`
}

type rawAccidental struct {
	Version     string             `yaml:"version"`
	HouseScores map[int]int        `yaml:"house_scores"`
	MeanMotion  map[string]float64 `yaml:"mean_motion"`
	Joys        map[string]int     `yaml:"joys"`
	FixedStars  []rawStar          `yaml:"fixed_stars"`
	Points      map[string]int     `yaml:"points"`
}

type rawTopic struct {
	Name     string   `yaml:"name"`
	House    int      `yaml:"house"`
	Keywords []string `yaml:"keywords"`
}

type rawQuestions struct {
	Version      string     `yaml:"version"`
	Topics       []rawTopic `yaml:"topics"`
	DefaultTopic rawTopic   `yaml:"default_topic"`
	Themes       []rawTopic `yaml:"themes"`
}

// Source supplies the three YAML documents.
type Source interface {
	ReadFile(name string) ([]byte, error)
}

// LoadFS decodes and validates the tables found under data/ in src.
func LoadFS(src Source) (*Tables, error) {
	var (
		dig rawDignities
		acc rawAccidental
		qs  rawQuestions
	)
	for name, dst := range map[string]any{
		"data/dignities.yaml":  &dig,
		"data/accidental.yaml": &acc,
		"data/questions.yaml":  &qs,
	} {
		b, err := src.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
		}
		if err := yaml.Unmarshal(b, dst); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
		}
	}

	t := &Tables{
		Version:      fmt.Sprintf("dignities=%s accidental=%s questions=%s", dig.Version, acc.Version, qs.Version),
		Exaltations:  make(map[model.Body]Exaltation, len(dig.Exaltations)),
		Triplicities: make(map[model.Element]TripRulers, len(dig.Triplicities)),
		MeanMotion:   make(map[model.Body]float64, len(acc.MeanMotion)),
		Joys:         make(map[model.Body]int, len(acc.Joys)),
	}
	if err := t.buildEssential(dig); err != nil {
		return nil, err
	}
	if err := t.buildAccidental(acc); err != nil {
		return nil, err
	}
	if err := t.buildQuestions(qs); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTable, fmt.Sprintf(format, args...))
}

func parseSign(name string) (model.Sign, error) {
	s, ok := model.ParseSign(name)
	if !ok {
		return 0, invalid("unknown sign %q", name)
	}
	return s, nil
}

func parsePlanet(name string) (model.Body, error) {
	b, ok := model.ParseBody(name)
	if !ok || !b.IsPlanet() {
		return "", invalid("unknown planet %q", name)
	}
	return b, nil
}

func (t *Tables) buildEssential(raw rawDignities) error {
	for sign, ruler := range raw.Rulers {
		s, err := parseSign(sign)
		if err != nil {
			return err
		}
		b, err := parsePlanet(ruler)
		if err != nil {
			return err
		}
		t.Rulers[s] = b
	}
	for planet, ex := range raw.Exaltations {
		b, err := parsePlanet(planet)
		if err != nil {
			return err
		}
		s, err := parseSign(ex.Sign)
		if err != nil {
			return err
		}
		t.Exaltations[b] = Exaltation{Sign: s, Degree: ex.Degree}
	}
	for element, sect := range raw.Triplicities {
		day, err := parsePlanet(sect["day"])
		if err != nil {
			return err
		}
		night, err := parsePlanet(sect["night"])
		if err != nil {
			return err
		}
		t.Triplicities[model.Element(element)] = TripRulers{Day: day, Night: night}
	}
	for sign, terms := range raw.Terms {
		s, err := parseSign(sign)
		if err != nil {
			return err
		}
		out := make([]Term, 0, len(terms))
		for _, term := range terms {
			b, err := parsePlanet(term.Ruler)
			if err != nil {
				return err
			}
			out = append(out, Term{Ruler: b, End: term.End})
		}
		t.Terms[s] = out
	}
	for sign, faces := range raw.Faces {
		s, err := parseSign(sign)
		if err != nil {
			return err
		}
		if len(faces) != 3 {
			return invalid("%s has %d faces, want 3", sign, len(faces))
		}
		for i, f := range faces {
			b, err := parsePlanet(f)
			if err != nil {
				return err
			}
			t.Faces[s][i] = b
		}
	}
	t.Essential = EssentialPoints{
		Rulership:  raw.Points["rulership"],
		Exaltation: raw.Points["exaltation"],
		Triplicity: raw.Points["triplicity"],
		Term:       raw.Points["term"],
		Face:       raw.Points["face"],
		Detriment:  raw.Points["detriment"],
		Fall:       raw.Points["fall"],
	}
	return nil
}

func (t *Tables) buildAccidental(raw rawAccidental) error {
	for house, score := range raw.HouseScores {
		if house < 1 || house > model.SignCount {
			return invalid("house %d out of range", house)
		}
		t.HouseScores[house] = score
	}
	for planet, motion := range raw.MeanMotion {
		b, err := parsePlanet(planet)
		if err != nil {
			return err
		}
		t.MeanMotion[b] = motion
	}
	for planet, house := range raw.Joys {
		b, err := parsePlanet(planet)
		if err != nil {
			return err
		}
		t.Joys[b] = house
	}
	for _, s := range raw.FixedStars {
		t.FixedStars = append(t.FixedStars, FixedStar(s))
	}
	p := raw.Points
	t.Accidental = AccidentalPoints{
		CloseToCusp:          p["close_to_cusp"],
		Fast:                 p["fast"],
		Slow:                 p["slow"],
		StationingDirect:     p["stationing_direct"],
		StationingRetrograde: p["stationing_retrograde"],
		Retrograde:           p["retrograde"],
		Direct:               p["direct"],
		Cazimi:               p["cazimi"],
		Combust:              p["combust"],
		UnderSunbeams:        p["under_sunbeams"],
		FreeOfSun:            p["free_of_sun"],
		Joy:                  p["joy"],
	}
	return nil
}

func (t *Tables) buildQuestions(raw rawQuestions) error {
	for _, tp := range raw.Topics {
		t.Topics = append(t.Topics, Topic(tp))
	}
	t.DefaultTopic = Topic(raw.DefaultTopic)
	for _, th := range raw.Themes {
		t.Themes = append(t.Themes, Theme{Name: th.Name, Keywords: th.Keywords})
	}
	return nil
}

// Validate checks the structural rules the evaluators rely on.
func (t *Tables) Validate() error {
	for s := model.Aries; s <= model.Pisces; s++ {
		if t.Rulers[s] == "" {
			return invalid("%s has no ruler", s)
		}
		terms := t.Terms[s]
		if len(terms) == 0 {
			return invalid("%s has no terms", s)
		}
		prev := 0.0
		for _, term := range terms {
			if term.End <= prev {
				return invalid("%s terms not increasing at %v", s, term.End)
			}
			prev = term.End
		}
		if prev != model.SignWidth {
			return invalid("%s terms end at %v, want 30", s, prev)
		}
		if t.Faces[s][0] == "" {
			return invalid("%s has no faces", s)
		}
	}
	for _, e := range []model.Element{model.Fire, model.Earth, model.Air, model.Water} {
		if _, ok := t.Triplicities[e]; !ok {
			return invalid("missing triplicity for %s", e)
		}
	}

	// A planet may never be dignified and debilitated by sign at once.
	for _, b := range model.Planets {
		for s := model.Aries; s <= model.Pisces; s++ {
			positive := t.Rules(b, s) || t.Exalted(b, s)
			negative := t.InDetriment(b, s) || t.InFall(b, s)
			if positive && negative {
				return invalid("%s both dignified and debilitated in %s", b, s)
			}
		}
		if _, ok := t.MeanMotion[b]; !ok {
			return invalid("missing mean motion for %s", b)
		}
		if _, ok := t.Exaltations[b]; !ok {
			return invalid("missing exaltation for %s", b)
		}
	}

	for h := 1; h <= model.SignCount; h++ {
		if t.HouseScores[h] == 0 {
			return invalid("house %d has no score", h)
		}
	}
	for _, tp := range append(append([]Topic{}, t.Topics...), t.DefaultTopic) {
		if tp.House < 1 || tp.House > model.SignCount {
			return invalid("topic %q house %d out of range", tp.Name, tp.House)
		}
	}
	return nil
}

// RawFile returns one embedded YAML document by base name.
func RawFile(name string) ([]byte, error) {
	return dataFS.ReadFile("data/" + name)
}
