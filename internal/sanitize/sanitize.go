// Package sanitize cleans participant answers at transport edges before they
// reach the engine.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxAnswerSize is 4KB.
	DefaultMaxAnswerSize = 4096
	// EnvMaxAnswerSize overrides the default limit.
	EnvMaxAnswerSize = "LATTICE_MAX_ANSWER_SIZE"
)

var (
	ErrAnswerTooLarge = errors.New("answer exceeds maximum allowed size")
	ErrInvalidUTF8    = errors.New("answer contains invalid UTF-8 sequences")
)

// String enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return.
func String(input string) (string, error) {
	limit := MaxAnswerSize()
	if len(input) > limit {
		// Rejected rather than truncated so classification stays deterministic.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrAnswerTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Answer sanitizes every string inside a decoded JSON answer.
// Numbers and booleans pass through untouched.
func Answer(answer any) (any, error) {
	switch v := answer.(type) {
	case string:
		return String(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			clean, err := Answer(item)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			clean, err := String(item)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			clean, err := Answer(item)
			if err != nil {
				return nil, err
			}
			out[k] = clean
		}
		return out, nil
	default:
		return answer, nil
	}
}

// MaxAnswerSize returns the active limit in bytes.
func MaxAnswerSize() int {
	if val := os.Getenv(EnvMaxAnswerSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxAnswerSize
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
