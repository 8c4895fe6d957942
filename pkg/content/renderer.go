package content

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/russross/blackfriday/v2"
)

// Format selects the output dialect of a Renderer.
type Format int

const (
	// FormatHTML renders markdown blocks to HTML and joins fragments with <br>.
	FormatHTML Format = iota
	// FormatMarkdown passes markdown through for terminal rendering.
	FormatMarkdown
)

// Separator is the HTML line break inserted between non-empty fragments.
const Separator = "<br>"

// Renderer renders content blocks against a parameter bag. It is pure and safe for concurrent use.
type Renderer struct {
	format    Format
	separator string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFormat selects the output format.
func WithFormat(f Format) Option {
	return func(r *Renderer) {
		r.format = f
		if f == FormatMarkdown {
			r.separator = "\n\n"
		}
	}
}

// NewRenderer creates an HTML renderer unless configured otherwise.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{format: FormatHTML, separator: Separator}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Format returns the configured output format.
func (r *Renderer) Format() Format { return r.format }

// Render renders blocks in order and joins the non-empty fragments.
func (r *Renderer) Render(blocks []domain.ContentBlock, params domain.Params) (string, error) {
	out := ""
	for i, b := range blocks {
		frag, err := r.renderBlock(b, params)
		if err != nil {
			return "", fmt.Errorf("content block %d: %w", i, err)
		}
		out = r.Join(out, frag)
	}
	return out, nil
}

// RenderFeedback renders feedback lines as text fragments joined by the
// separator. Every line break becomes a separator, so blank lines are kept.
func (r *Renderer) RenderFeedback(lines []string, params domain.Params) (string, error) {
	var parts []string
	for _, line := range lines {
		for _, part := range strings.Split(line, "\n") {
			frag, err := r.interpolate(part, params)
			if err != nil {
				return "", fmt.Errorf("feedback: %w", err)
			}
			parts = append(parts, frag)
		}
	}
	return strings.Join(parts, r.separator), nil
}

// Join concatenates two fragments, inserting the separator only when both are non-empty.
func (r *Renderer) Join(prior, next string) string {
	return Join(r.separator, prior, next)
}

// Join concatenates prior and next with sep, omitting sep around empty fragments.
func Join(sep, prior, next string) string {
	switch {
	case prior == "":
		return next
	case next == "":
		return prior
	}
	return prior + sep + next
}

func (r *Renderer) renderBlock(b domain.ContentBlock, params domain.Params) (string, error) {
	text, err := r.interpolate(b.Value, params)
	if err != nil {
		return "", err
	}
	switch b.Type {
	case "", domain.BlockText:
		return text, nil
	case domain.BlockMarkdown:
		if r.format == FormatMarkdown {
			return strings.TrimSpace(text), nil
		}
		return strings.TrimSpace(string(blackfriday.Run([]byte(text)))), nil
	}
	return "", fmt.Errorf("%w: unknown content block type %q", domain.ErrConfigurationDefect, b.Type)
}

func (r *Renderer) interpolate(text string, params domain.Params) (string, error) {
	if r.format == FormatMarkdown {
		return Interpolate(text, params)
	}
	return InterpolateHTML(text, params)
}
