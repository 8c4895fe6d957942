package domain

import (
	"fmt"
	"strings"
)

// PredicateKind tags the variant of a Predicate.
type PredicateKind string

const (
	PredicateDefault   PredicateKind = "default"
	PredicateEquals    PredicateKind = "equals"
	PredicateNotEquals PredicateKind = "not_equals"
	PredicateOneOf     PredicateKind = "one_of"
	PredicateContains  PredicateKind = "contains"
	PredicateLT        PredicateKind = "lt"
	PredicateLTE       PredicateKind = "lte"
	PredicateGT        PredicateKind = "gt"
	PredicateGTE       PredicateKind = "gte"
	PredicateExpr      PredicateKind = "expr"
)

// Valid reports whether k is a known predicate kind.
func (k PredicateKind) Valid() bool {
	switch k {
	case PredicateDefault, PredicateEquals, PredicateNotEquals, PredicateOneOf,
		PredicateContains, PredicateLT, PredicateLTE, PredicateGT, PredicateGTE, PredicateExpr:
		return true
	}
	return false
}

// Numeric reports whether k compares numbers.
func (k PredicateKind) Numeric() bool {
	switch k {
	case PredicateLT, PredicateLTE, PredicateGT, PredicateGTE:
		return true
	}
	return false
}

// Predicate is a tagged condition over (answer, params).
// An empty Kind behaves as PredicateDefault.
type Predicate struct {
	Kind   PredicateKind `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind"`
	Value  any           `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Values []any         `json:"values,omitempty" yaml:"values,omitempty" mapstructure:"values"`
	Expr   string        `json:"expr,omitempty" yaml:"expr,omitempty" mapstructure:"expr"`
}

// IsDefault reports whether the predicate matches every answer.
func (p Predicate) IsDefault() bool {
	return p.Kind == "" || p.Kind == PredicateDefault
}

// String renders the predicate as a stable rule identity, e.g. Equals(yes).
func (p Predicate) String() string {
	switch {
	case p.IsDefault():
		return "Default"
	case p.Kind == PredicateExpr:
		return fmt.Sprintf("Expr(%s)", p.Expr)
	case p.Kind == PredicateOneOf:
		parts := make([]string, len(p.Values))
		for i, v := range p.Values {
			parts[i] = fmt.Sprint(v)
		}
		return fmt.Sprintf("OneOf(%s)", strings.Join(parts, ","))
	}
	return fmt.Sprintf("%s(%v)", kindLabel(p.Kind), p.Value)
}

func kindLabel(k PredicateKind) string {
	var b strings.Builder
	upper := true
	for _, r := range string(k) {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
