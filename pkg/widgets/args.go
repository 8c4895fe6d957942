package widgets

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// decodeArgs substitutes placeholders in string args and decodes them into out.
func decodeArgs(kind string, args map[string]any, params domain.Params, out any) error {
	resolved, err := resolve(args, params)
	if err != nil {
		return fmt.Errorf("%s customization args: %w", kind, err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(resolved); err != nil {
		return fmt.Errorf("%w: %s customization args: %v", domain.ErrConfigurationDefect, kind, err)
	}
	return nil
}

func resolve(v any, params domain.Params) (any, error) {
	switch x := v.(type) {
	case string:
		return content.Interpolate(x, params)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			r, err := resolve(item, params)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			r, err := resolve(item, params)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	return v, nil
}

func execute(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return b.String(), nil
}

// toNumber converts a JSON-ish answer into a float64.
func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case interface{ Float64() (float64, error) }:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

var answerTmpl = template.Must(template.New("answer").Parse(
	`<span class="lattice-answer">{{.}}</span>`))
