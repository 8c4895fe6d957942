// Package validator checks explorations for authoring defects before they
// reach the engine.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// Severity grades a Defect.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Defect is one problem found in an exploration.
type Defect struct {
	Severity Severity `json:"severity"`
	StateID  string   `json:"state_id,omitempty"`
	Message  string   `json:"message"`
}

func (d Defect) String() string {
	if d.StateID == "" {
		return fmt.Sprintf("[%s] %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.StateID, d.Message)
}

// Report collects the defects of one exploration.
type Report struct {
	ExplorationID string   `json:"exploration_id"`
	Defects       []Defect `json:"defects"`
}

// Errors returns only the error-level defects.
func (r *Report) Errors() []Defect {
	var out []Defect
	for _, d := range r.Defects {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Err summarizes error-level defects as a configuration defect, or nil.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, d := range errs {
		lines[i] = d.String()
	}
	return fmt.Errorf("%w: exploration %q: found %d errors:\n- %s",
		domain.ErrConfigurationDefect, r.ExplorationID, len(errs), strings.Join(lines, "\n- "))
}

func (r *Report) add(sev Severity, stateID, format string, args ...any) {
	r.Defects = append(r.Defects, Defect{Severity: sev, StateID: stateID, Message: fmt.Sprintf(format, args...)})
}

// Validate checks exp against the widgets available in scope. A nil
// registry skips widget checks.
func Validate(exp *domain.Exploration, widgets ports.WidgetRegistry, scope string) *Report {
	r := &Report{ExplorationID: exp.ID}
	norm := exp.Clone()
	compiler.Normalize(norm)

	if len(norm.States) == 0 {
		r.add(SeverityError, "", "exploration has no states")
		return r
	}

	seen := make(map[string]bool, len(norm.States))
	for _, s := range norm.States {
		if s.ID == "" {
			r.add(SeverityError, "", "state without id")
			continue
		}
		if s.ID == domain.EndDest {
			r.add(SeverityError, s.ID, "%q is reserved for the terminal destination", domain.EndDest)
		}
		if seen[s.ID] {
			r.add(SeverityError, s.ID, "duplicate state id")
		}
		seen[s.ID] = true
	}

	if !norm.HasState(norm.InitStateID) {
		r.add(SeverityError, "", "initial state %q does not exist", norm.InitStateID)
	}

	for i := range norm.States {
		checkState(r, norm, &norm.States[i], widgets, scope)
	}

	for _, id := range unreachable(norm) {
		r.add(SeverityWarning, id, "unreachable from initial state")
	}
	return r
}

func checkState(r *Report, exp *domain.Exploration, s *domain.State, widgets ports.WidgetRegistry, scope string) {
	for _, b := range s.Content {
		if b.Type != domain.BlockText && b.Type != domain.BlockMarkdown {
			r.add(SeverityError, s.ID, "unknown content block type %q", b.Type)
		}
	}
	for _, pc := range s.ParamChanges {
		if pc.Name == "" {
			r.add(SeverityError, s.ID, "param change without name")
		}
	}

	if s.Widget == nil {
		return
	}
	if widgets != nil {
		if _, err := widgets.Get(scope, s.Widget.WidgetID); err != nil {
			r.add(SeverityError, s.ID, "%v", err)
		}
	}
	if len(s.Widget.Handlers) == 0 {
		r.add(SeverityError, s.ID, "prompt has no rules")
		return
	}

	for _, h := range s.Widget.Handlers {
		if len(h.Rules) == 0 {
			r.add(SeverityError, s.ID, "handler %q has no rules", h.Name)
			continue
		}
		for i, rule := range h.Rules {
			if !rule.Predicate.IsDefault() && !rule.Predicate.Kind.Valid() {
				r.add(SeverityError, s.ID, "handler %q rule %d: unknown predicate kind %q", h.Name, i, rule.Predicate.Kind)
			}
			if rule.Predicate.Kind.Numeric() {
				if _, ok := numericOperand(rule.Predicate.Value); !ok {
					r.add(SeverityError, s.ID, "handler %q rule %d: operand %v is not numeric", h.Name, i, rule.Predicate.Value)
				}
			}
			if rule.Predicate.IsDefault() && i < len(h.Rules)-1 {
				r.add(SeverityWarning, s.ID, "handler %q rule %d: rules after the catch-all never match", h.Name, i)
			}
			if rule.Dest != domain.EndDest && !exp.HasState(rule.Dest) {
				r.add(SeverityError, s.ID, "handler %q rule %d: destination %q does not exist", h.Name, i, rule.Dest)
			}
		}
		if !h.Rules[len(h.Rules)-1].Predicate.IsDefault() {
			r.add(SeverityWarning, s.ID, "handler %q has no catch-all rule; unmatched answers fail", h.Name)
		}
	}
}

// numericOperand accepts numbers and placeholder strings, which resolve at runtime.
func numericOperand(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		if len(content.Placeholders(x)) > 0 {
			return 0, true
		}
		var f float64
		_, err := fmt.Sscanf(x, "%g", &f)
		return f, err == nil
	}
	return 0, false
}

// unreachable crawls the graph breadth-first from the initial state and
// returns the states never visited, in declaration order.
func unreachable(exp *domain.Exploration) []string {
	visited := make(map[string]bool)
	queue := []string{exp.InitStateID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		s, err := exp.StateByID(id)
		if err != nil || s.Widget == nil {
			continue
		}
		for _, h := range s.Widget.Handlers {
			for _, rule := range h.Rules {
				if rule.Dest != domain.EndDest && !visited[rule.Dest] {
					queue = append(queue, rule.Dest)
				}
			}
		}
	}

	var out []string
	for _, s := range exp.States {
		if s.ID != "" && !visited[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}
