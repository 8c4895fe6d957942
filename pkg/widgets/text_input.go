package widgets

import (
	"html/template"
	"strings"

	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
)

// TextInputConfig are the customization args of TextInput.
type TextInputConfig struct {
	Placeholder string `mapstructure:"placeholder"`
	Rows        int    `mapstructure:"rows"`
}

var textInputTmpl = template.Must(template.New("TextInput").Parse(
	`<form class="lattice-widget text-input">` +
		`{{if gt .Rows 1}}<textarea name="answer" rows="{{.Rows}}" placeholder="{{.Placeholder}}"></textarea>` +
		`{{else}}<input type="text" name="answer" placeholder="{{.Placeholder}}">{{end}}` +
		`<button type="submit">Submit</button></form>`))

// TextInput accepts free text.
type TextInput struct{}

func (TextInput) Kind() string { return "TextInput" }

func (w TextInput) config(args map[string]any, params domain.Params) (TextInputConfig, error) {
	cfg := TextInputConfig{Rows: 1}
	err := decodeArgs(w.Kind(), args, params, &cfg)
	return cfg, err
}

func (w TextInput) RenderPrompt(args map[string]any, params domain.Params) (string, error) {
	cfg, err := w.config(args, params)
	if err != nil {
		return "", err
	}
	return execute(textInputTmpl, cfg)
}

func (TextInput) RenderResponse(_ map[string]any, _ domain.Params, answer any) (string, string, error) {
	out, err := execute(answerTmpl, content.Stringify(answer))
	return out, "", err
}

func (TextInput) SummarizeAnswer(_ map[string]any, _ domain.Params, answer any) (string, error) {
	return strings.TrimSpace(content.Stringify(answer)), nil
}
