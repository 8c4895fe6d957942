package runtime

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aretw0/lattice/pkg/content"
)

// equal compares an answer with an operand. Two numbers compare numerically;
// a number and a numeric string compare numerically; everything else compares
// by its display string.
func equal(a, b any) bool {
	fa, numA := number(a)
	fb, numB := number(b)
	switch {
	case numA && numB:
		return fa == fb
	case numA:
		if f, ok := parseNumber(b); ok {
			return fa == f
		}
	case numB:
		if f, ok := parseNumber(a); ok {
			return f == fb
		}
	}
	return content.Stringify(a) == content.Stringify(b)
}

// number converts numeric kinds only.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func parseNumber(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// toNumber accepts numeric kinds and numeric strings.
func toNumber(v any) (float64, bool) {
	if f, ok := number(v); ok {
		return f, true
	}
	return parseNumber(v)
}
