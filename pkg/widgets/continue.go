package widgets

import (
	"html/template"

	"github.com/aretw0/lattice/pkg/domain"
)

// ContinueConfig are the customization args of Continue.
type ContinueConfig struct {
	ButtonText string `mapstructure:"button_text"`
}

var continueTmpl = template.Must(template.New("Continue").Parse(
	`<form class="lattice-widget continue"><button type="submit" name="answer" value="">{{.ButtonText}}</button></form>`))

// Continue is a single button that moves the reader on.
type Continue struct{}

func (Continue) Kind() string { return "Continue" }

func (w Continue) config(args map[string]any, params domain.Params) (ContinueConfig, error) {
	cfg := ContinueConfig{ButtonText: "Continue"}
	err := decodeArgs(w.Kind(), args, params, &cfg)
	return cfg, err
}

func (w Continue) RenderPrompt(args map[string]any, params domain.Params) (string, error) {
	cfg, err := w.config(args, params)
	if err != nil {
		return "", err
	}
	return execute(continueTmpl, cfg)
}

// RenderResponse echoes nothing: pressing the button is not an answer worth repeating.
func (Continue) RenderResponse(map[string]any, domain.Params, any) (string, string, error) {
	return "", "", nil
}

func (w Continue) SummarizeAnswer(args map[string]any, params domain.Params, _ any) (string, error) {
	cfg, err := w.config(args, params)
	if err != nil {
		return "", err
	}
	return cfg.ButtonText, nil
}
