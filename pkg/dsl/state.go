package dsl

import "github.com/aretw0/lattice/pkg/domain"

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	state   domain.State
	handler string
	builder *Builder
}

// Text appends a raw HTML text block.
func (s *StateBuilder) Text(value string) *StateBuilder {
	s.state.Content = append(s.state.Content, domain.ContentBlock{Type: domain.BlockText, Value: value})
	return s
}

// Markdown appends a markdown block.
func (s *StateBuilder) Markdown(value string) *StateBuilder {
	s.state.Content = append(s.state.Content, domain.ContentBlock{Type: domain.BlockMarkdown, Value: value})
	return s
}

// Widget sets the interactive widget kind of the state's prompt.
func (s *StateBuilder) Widget(kind string) *StateBuilder {
	s.prompt().WidgetID = kind
	return s
}

// Arg sets one customization arg of the prompt.
func (s *StateBuilder) Arg(name string, value any) *StateBuilder {
	p := s.prompt()
	if p.CustomizationArgs == nil {
		p.CustomizationArgs = make(map[string]any)
	}
	p.CustomizationArgs[name] = value
	return s
}

// Sticky marks the prompt as sticky.
func (s *StateBuilder) Sticky() *StateBuilder {
	s.prompt().Sticky = true
	return s
}

// On switches subsequent rules to the named answer handler.
func (s *StateBuilder) On(handler string) *StateBuilder {
	s.handler = handler
	return s
}

// When adds a rule routing matching answers to dest.
func (s *StateBuilder) When(p domain.Predicate, dest string, feedback ...string) *StateBuilder {
	return s.Rule(domain.Rule{Predicate: p, Dest: dest, Feedback: feedback})
}

// Otherwise adds the catch-all rule.
func (s *StateBuilder) Otherwise(dest string, feedback ...string) *StateBuilder {
	return s.When(Default(), dest, feedback...)
}

// Rule appends a fully specified rule to the current handler.
func (s *StateBuilder) Rule(r domain.Rule) *StateBuilder {
	p := s.prompt()
	name := s.handler
	if name == "" {
		name = domain.DefaultHandler
	}
	for i := range p.Handlers {
		if p.Handlers[i].Name == name {
			p.Handlers[i].Rules = append(p.Handlers[i].Rules, r)
			return s
		}
	}
	p.Handlers = append(p.Handlers, domain.AnswerHandler{Name: name, Rules: []domain.Rule{r}})
	return s
}

// Set adds a parameter change applied on entering the state.
func (s *StateBuilder) Set(name string, value any) *StateBuilder {
	s.state.ParamChanges = append(s.state.ParamChanges, domain.ParamChange{Name: name, Value: value})
	return s
}

// SetExpr adds a parameter change computed by an expression.
func (s *StateBuilder) SetExpr(name, expr string) *StateBuilder {
	s.state.ParamChanges = append(s.state.ParamChanges, domain.ParamChange{Name: name, Expr: expr})
	return s
}

// Add starts the next state, for chaining.
func (s *StateBuilder) Add(id string) *StateBuilder {
	return s.builder.Add(id)
}

// Build returns the underlying domain.State.
func (s *StateBuilder) Build() domain.State {
	return s.state
}

func (s *StateBuilder) prompt() *domain.Prompt {
	if s.state.Widget == nil {
		s.state.Widget = &domain.Prompt{}
	}
	return s.state.Widget
}
