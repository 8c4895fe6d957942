// Package compiler turns authored exploration documents into normalized
// domain.Exploration values.
package compiler

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Parser decodes exploration documents. YAML and JSON are accepted; JSON is
// read through the YAML decoder.
type Parser struct {
	strict bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// Strict rejects unknown fields.
func Strict() ParserOption {
	return func(p *Parser) { p.strict = true }
}

// NewParser creates a new parser instance.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes data into a normalized exploration. fallbackID names the
// exploration when the document carries no id.
func (p *Parser) Parse(data []byte, fallbackID string) (*domain.Exploration, error) {
	var exp domain.Exploration
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.strict)
	if err := dec.Decode(&exp); err != nil {
		return nil, fmt.Errorf("failed to parse exploration: %w", err)
	}
	if exp.ID == "" {
		exp.ID = fallbackID
	}
	if exp.ID == "" {
		return nil, fmt.Errorf("exploration missing id")
	}
	Normalize(&exp)
	return &exp, nil
}

// IDFromPath derives an exploration id from a file name.
func IDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Normalize fills defaults in place: the init state falls back to the first
// state, shorthand prompt rules become the submit handler and content blocks
// default to text.
func Normalize(exp *domain.Exploration) {
	if exp.InitStateID == "" && len(exp.States) > 0 {
		exp.InitStateID = exp.States[0].ID
	}
	for i := range exp.States {
		s := &exp.States[i]
		for j := range s.Content {
			if s.Content[j].Type == "" {
				s.Content[j].Type = domain.BlockText
			}
		}
		if s.Widget == nil {
			continue
		}
		if len(s.Widget.Rules) > 0 {
			foldRules(s.Widget)
		}
	}
}

func foldRules(p *domain.Prompt) {
	for i := range p.Handlers {
		if p.Handlers[i].Name == domain.DefaultHandler {
			p.Handlers[i].Rules = append(p.Handlers[i].Rules, p.Rules...)
			p.Rules = nil
			return
		}
	}
	p.Handlers = append([]domain.AnswerHandler{{Name: domain.DefaultHandler, Rules: p.Rules}}, p.Handlers...)
	p.Rules = nil
}
