package verdict

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/okian/horary/internal/domain/model"
)

// Summary is the data handed to the interpretation template.
type Summary struct {
	Question      string
	Answer        model.Answer
	Score         int
	Radical       bool
	RadicalNote   model.RadicalityNote
	Querent       model.Body
	Quesited      model.Body
	House         int
	Topic         string
	SameRuler     bool
	Aspect        *model.Aspect
	Timing        model.Timing
	Cautions      []string
	LowConfidence bool
}

var funcs = template.FuncMap{
	"title":   title,
	"ordinal": model.Ordinal,
	"deg":     func(f float64) string { return fmt.Sprintf("%.1f°", f) },
	"join":    strings.Join,
}

const defaultProse = `
{{- if not .Radical}}The chart is not radical ({{.RadicalNote}}); judge with care. {{end -}}
{{title .Querent}} signifies the querent and {{title .Quesited}} the {{.Topic}} matter of the {{ordinal .House}} house.
{{- if .SameRuler}} One planet rules both, so the matter is already in the querent's hands.
{{- else if .Aspect}} They are joined by a {{if .Aspect.Applying}}applying{{else}}separating{{end}} {{.Aspect.Type}} within {{deg .Aspect.Orb}}.
{{- else}} They make no aspect.{{end}}
{{- if .Timing.Indicated}} Timing: {{.Timing.Text}}.{{end}}
{{- if .Cautions}} Cautions: {{join .Cautions "; "}}.{{end}}
{{- if .LowConfidence}} Confidence is low.{{end}} The answer is {{.Answer}}.`

var defaultTemplate = template.Must(template.New("verdict").Funcs(funcs).Parse(defaultProse))

// Funcs returns the helpers available to interpretation templates.
func Funcs() template.FuncMap {
	out := make(template.FuncMap, len(funcs))
	for k, v := range funcs {
		out[k] = v
	}
	return out
}

func (s *Synthesizer) render(in Input, v model.Verdict, asp *model.Aspect) (string, []string) {
	sum := Summary{
		Question:      in.Question,
		Answer:        v.Answer,
		Score:         v.Score,
		Radical:       v.IsRadical,
		RadicalNote:   in.Validity.RadicalityNote,
		Querent:       in.Significators.QuerentRuler,
		Quesited:      in.Significators.QuesitedRuler,
		House:         in.Significators.QuesitedHouse,
		Topic:         in.Significators.Topic,
		SameRuler:     in.Significators.SameRuler,
		Aspect:        asp,
		Timing:        v.Timing,
		Cautions:      in.Validity.Cautions,
		LowConfidence: v.LowConfidence,
	}

	var buf bytes.Buffer
	if err := s.prose.Execute(&buf, sum); err != nil {
		return fallback(sum), []string{err.Error()}
	}
	return strings.TrimSpace(buf.String()), nil
}

func fallback(s Summary) string {
	text := fmt.Sprintf("The answer is %s (score %d).", s.Answer, s.Score)
	if !s.Radical {
		text = "The chart is not radical. " + text
	}
	return text
}

func title(v any) string {
	s := fmt.Sprint(v)
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
