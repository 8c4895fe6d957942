package content

import (
	"fmt"
	"html"
	"regexp"
	"strconv"

	"github.com/aretw0/lattice/pkg/domain"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Interpolate substitutes {name} placeholders with raw parameter values.
func Interpolate(text string, params domain.Params) (string, error) {
	return substitute(text, params, nil)
}

// InterpolateHTML substitutes placeholders with HTML-escaped parameter values.
func InterpolateHTML(text string, params domain.Params) (string, error) {
	return substitute(text, params, html.EscapeString)
}

// Placeholders lists the parameter names referenced by text, in order of appearance.
func Placeholders(text string) []string {
	matches := placeholder.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

func substitute(text string, params domain.Params, escape func(string) string) (string, error) {
	var unbound error
	out := placeholder.ReplaceAllStringFunc(text, func(m string) string {
		if unbound != nil {
			return m
		}
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok {
			unbound = &domain.UnboundParameterError{Name: name}
			return m
		}
		s := Stringify(v)
		if escape != nil {
			s = escape(s)
		}
		return s
	})
	if unbound != nil {
		return "", unbound
	}
	return out, nil
}

// Stringify formats a parameter value for display. Integral floats print
// without a fraction so JSON-decoded counters read naturally.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}
