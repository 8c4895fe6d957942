package widgets

import (
	"html/template"
	"math"

	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
)

// MultipleChoiceConfig are the customization args of MultipleChoiceInput.
type MultipleChoiceConfig struct {
	Choices []string `mapstructure:"choices"`
}

type choiceView struct {
	Index int
	Label string
}

var multipleChoiceTmpl = template.Must(template.New("MultipleChoiceInput").Parse(
	`<form class="lattice-widget multiple-choice">` +
		`{{range .}}<label><input type="radio" name="answer" value="{{.Index}}"> {{.Label}}</label>{{end}}` +
		`<button type="submit">Submit</button></form>`))

// MultipleChoiceInput offers a fixed list of choices. Answers are the
// zero-based choice index, or the choice label itself.
type MultipleChoiceInput struct{}

func (MultipleChoiceInput) Kind() string { return "MultipleChoiceInput" }

func (w MultipleChoiceInput) config(args map[string]any, params domain.Params) (MultipleChoiceConfig, error) {
	var cfg MultipleChoiceConfig
	err := decodeArgs(w.Kind(), args, params, &cfg)
	return cfg, err
}

func (w MultipleChoiceInput) RenderPrompt(args map[string]any, params domain.Params) (string, error) {
	cfg, err := w.config(args, params)
	if err != nil {
		return "", err
	}
	views := make([]choiceView, len(cfg.Choices))
	for i, c := range cfg.Choices {
		views[i] = choiceView{Index: i, Label: c}
	}
	return execute(multipleChoiceTmpl, views)
}

func (w MultipleChoiceInput) RenderResponse(args map[string]any, params domain.Params, answer any) (string, string, error) {
	label, err := w.SummarizeAnswer(args, params, answer)
	if err != nil {
		return "", "", err
	}
	out, err := execute(answerTmpl, label)
	return out, "", err
}

// SummarizeAnswer resolves an index answer to its choice label.
func (w MultipleChoiceInput) SummarizeAnswer(args map[string]any, params domain.Params, answer any) (string, error) {
	cfg, err := w.config(args, params)
	if err != nil {
		return "", err
	}
	if f, ok := toNumber(answer); ok && f == math.Trunc(f) {
		if i := int(f); i >= 0 && i < len(cfg.Choices) {
			return cfg.Choices[i], nil
		}
	}
	return content.Stringify(answer), nil
}
