package widgets

import (
	"html/template"
	"strconv"

	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
)

// NumericInputConfig are the customization args of NumericInput.
type NumericInputConfig struct {
	Placeholder string   `mapstructure:"placeholder"`
	Min         *float64 `mapstructure:"min"`
	Max         *float64 `mapstructure:"max"`
}

var numericInputTmpl = template.Must(template.New("NumericInput").Parse(
	`<form class="lattice-widget numeric-input">` +
		`<input type="number" name="answer" step="any"` +
		`{{with .Min}} min="{{.}}"{{end}}{{with .Max}} max="{{.}}"{{end}} placeholder="{{.Placeholder}}">` +
		`<button type="submit">Submit</button></form>`))

// NumericInput accepts a number.
type NumericInput struct{}

func (NumericInput) Kind() string { return "NumericInput" }

func (w NumericInput) RenderPrompt(args map[string]any, params domain.Params) (string, error) {
	var cfg NumericInputConfig
	if err := decodeArgs(w.Kind(), args, params, &cfg); err != nil {
		return "", err
	}
	return execute(numericInputTmpl, cfg)
}

func (w NumericInput) RenderResponse(args map[string]any, params domain.Params, answer any) (string, string, error) {
	s, _ := w.SummarizeAnswer(args, params, answer)
	out, err := execute(answerTmpl, s)
	return out, "", err
}

// SummarizeAnswer normalizes numeric answers ("4.50" and 4.5 summarize alike);
// anything else is recorded verbatim.
func (NumericInput) SummarizeAnswer(_ map[string]any, _ domain.Params, answer any) (string, error) {
	if f, ok := toNumber(answer); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return content.Stringify(answer), nil
}
