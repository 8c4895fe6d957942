package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
)

// Classify returns the first rule of the handler's list whose predicate holds
// for (answer, params). Evaluation stops at the first match. Exhausting the
// list is a configuration defect, never a silent default.
func (e *Engine) Classify(ctx context.Context, explorationID string, state *domain.State, handler string, answer any, params domain.Params) (*domain.Rule, error) {
	if state.Widget == nil {
		return nil, &domain.MissingPromptError{ExplorationID: explorationID, StateID: state.ID}
	}
	if handler == "" {
		handler = domain.DefaultHandler
	}
	rules, ok := state.Widget.HandlerRules(handler)
	if !ok {
		return nil, &domain.UnknownHandlerError{ExplorationID: explorationID, StateID: state.ID, Handler: handler}
	}

	for i := range rules {
		matched, err := e.Matches(ctx, rules[i].Predicate, answer, params)
		if err != nil {
			return nil, fmt.Errorf("state %q rule %d (%s): %w", state.ID, i, rules[i].ID(), err)
		}
		if matched {
			return &rules[i], nil
		}
	}
	return nil, &domain.NoRuleMatchedError{ExplorationID: explorationID, StateID: state.ID, Handler: handler, Answer: answer}
}

// Matches evaluates a single predicate. String operands have their
// {placeholders} substituted from params before comparison.
func (e *Engine) Matches(ctx context.Context, p domain.Predicate, answer any, params domain.Params) (bool, error) {
	switch p.Kind {
	case "", domain.PredicateDefault:
		return true, nil

	case domain.PredicateEquals, domain.PredicateNotEquals:
		operand, err := resolveOperand(p.Value, params)
		if err != nil {
			return false, err
		}
		eq := equal(answer, operand)
		if p.Kind == domain.PredicateNotEquals {
			return !eq, nil
		}
		return eq, nil

	case domain.PredicateOneOf:
		for _, v := range p.Values {
			operand, err := resolveOperand(v, params)
			if err != nil {
				return false, err
			}
			if equal(answer, operand) {
				return true, nil
			}
		}
		return false, nil

	case domain.PredicateContains:
		operand, err := resolveOperand(p.Value, params)
		if err != nil {
			return false, err
		}
		if items, ok := answer.([]any); ok {
			for _, item := range items {
				if equal(item, operand) {
					return true, nil
				}
			}
			return false, nil
		}
		return strings.Contains(content.Stringify(answer), content.Stringify(operand)), nil

	case domain.PredicateLT, domain.PredicateLTE, domain.PredicateGT, domain.PredicateGTE:
		operand, err := resolveOperand(p.Value, params)
		if err != nil {
			return false, err
		}
		want, ok := toNumber(operand)
		if !ok {
			return false, &domain.PredicateError{Kind: p.Kind, Reason: fmt.Sprintf("operand %v is not numeric", p.Value)}
		}
		got, ok := toNumber(answer)
		if !ok {
			return false, nil
		}
		return compareNumbers(p.Kind, got, want), nil

	case domain.PredicateExpr:
		if p.Expr == "" {
			return false, &domain.PredicateError{Kind: p.Kind, Reason: "empty expression"}
		}
		v, err := e.evaluator.Eval(ctx, p.Expr, params)
		if err != nil {
			return false, err
		}
		b, ok := v.(bool)
		if !ok {
			return false, &domain.ExpressionError{Expr: p.Expr, Err: fmt.Errorf("want boolean, got %T", v)}
		}
		return b, nil
	}
	return false, &domain.PredicateError{Kind: p.Kind, Reason: "unknown kind"}
}

func resolveOperand(v any, params domain.Params) (any, error) {
	if s, ok := v.(string); ok {
		return content.Interpolate(s, params)
	}
	return v, nil
}

func compareNumbers(kind domain.PredicateKind, got, want float64) bool {
	switch kind {
	case domain.PredicateLT:
		return got < want
	case domain.PredicateLTE:
		return got <= want
	case domain.PredicateGT:
		return got > want
	}
	return got >= want
}
