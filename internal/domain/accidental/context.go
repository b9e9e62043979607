package accidental

import (
	"fmt"

	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/tables"
)

// Question themes that reweight conditions.
const (
	ThemeReversal = "reversal"
	ThemeDelay    = "delay"
)

// ThemeClassifier detects question themes.
type ThemeClassifier interface {
	Themes(question string) []string
}

// KeywordThemeClassifier matches whole-word keywords per theme.
type KeywordThemeClassifier struct {
	themes []tables.Theme
}

// NewKeywordThemeClassifier creates a classifier over themes.
func NewKeywordThemeClassifier(themes []tables.Theme) *KeywordThemeClassifier {
	return &KeywordThemeClassifier{themes: themes}
}

// Themes returns the names of every theme with a matching keyword.
func (c *KeywordThemeClassifier) Themes(question string) []string {
	text := tables.NormalizeText(question)
	var out []string
	for _, th := range c.themes {
		if _, ok := tables.MatchKeyword(text, th.Keywords); ok {
			out = append(out, th.Name)
		}
	}
	return out
}

type reading struct {
	condition  string
	raw        model.Effect
	contextual model.Effect
	text       string
}

// ContextualInterpretation reads d's raw conditions in light of question.
// Under a reversal theme, retrograde and stations and cadency favor the
// return asked about; under a delay theme slowness is neutral. The raw flags
// and score of d are never changed.
func ContextualInterpretation(d model.AccidentalDignity, question string, c ThemeClassifier) []model.ContextNote {
	if c == nil || question == "" {
		return nil
	}
	var notes []model.ContextNote
	for _, theme := range c.Themes(question) {
		for _, r := range rulesFor(theme, d) {
			notes = append(notes, model.ContextNote{
				Condition:  r.condition,
				Theme:      theme,
				Raw:        r.raw,
				Contextual: r.contextual,
				Text:       fmt.Sprintf("%s %s: %s", d.Body, r.condition, r.text),
			})
		}
	}
	return sortedNotes(notes)
}

func rulesFor(theme string, d model.AccidentalDignity) []reading {
	var out []reading
	switch theme {
	case ThemeReversal:
		if d.Debilities.Retrograde {
			out = append(out, reading{"retrograde", model.Unfavorable, model.Favorable,
				"going back over old ground supports a return"})
		}
		if d.Station == model.StationDirect {
			out = append(out, reading{"stationing_direct", model.Favorable, model.Favorable,
				"the turn back to forward motion follows a return"})
		}
		if d.Debilities.StationingRetrograde {
			out = append(out, reading{"stationing_retrograde", model.Unfavorable, model.Favorable,
				"turning back toward what was lost"})
		}
		if d.Debilities.Cadent {
			out = append(out, reading{"cadent", model.Unfavorable, model.Favorable,
				"falling away from the angles matches leaving and coming back"})
		}
	case ThemeDelay:
		if d.Debilities.Slow {
			out = append(out, reading{"slow", model.Unfavorable, model.Neutral,
				"slowness is expected for a matter already delayed"})
		}
	}
	return out
}
