package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an exploration or state id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrConfigurationDefect marks malformed exploration data: no rule matched,
	// an unknown widget kind, a dangling destination, a broken expression.
	ErrConfigurationDefect = errors.New("configuration defect")

	// ErrUnboundParameter is returned when a placeholder names no parameter.
	ErrUnboundParameter = errors.New("unbound parameter")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyFeedback is returned when reader feedback has no text.
	ErrEmptyFeedback = errors.New("feedback is empty")
)

// NotFoundError reports an unknown exploration or state.
type NotFoundError struct {
	Kind          string // "exploration" or "state"
	ExplorationID string
	ID            string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "state" {
		return fmt.Sprintf("state %q not found in exploration %q", e.ID, e.ExplorationID)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DanglingDestinationError reports a rule or init state pointing at a state
// that is missing from the graph. It matches both ErrNotFound and
// ErrConfigurationDefect.
type DanglingDestinationError struct {
	ExplorationID string
	FromStateID   string
	Dest          string
}

func (e *DanglingDestinationError) Error() string {
	if e.FromStateID == "" {
		return fmt.Sprintf("exploration %q: initial state %q does not exist", e.ExplorationID, e.Dest)
	}
	return fmt.Sprintf("exploration %q: state %q routes to missing state %q", e.ExplorationID, e.FromStateID, e.Dest)
}

func (e *DanglingDestinationError) Unwrap() []error {
	return []error{ErrNotFound, ErrConfigurationDefect}
}

// NoRuleMatchedError is returned when classification exhausts the rule list.
type NoRuleMatchedError struct {
	ExplorationID string
	StateID       string
	Handler       string
	Answer        any
}

func (e *NoRuleMatchedError) Error() string {
	return fmt.Sprintf("exploration %q state %q: no %s rule matched answer %v", e.ExplorationID, e.StateID, e.Handler, e.Answer)
}

func (e *NoRuleMatchedError) Unwrap() error { return ErrConfigurationDefect }

// UnknownHandlerError is returned when a prompt has no rules for the requested handler.
type UnknownHandlerError struct {
	ExplorationID string
	StateID       string
	Handler       string
}

func (e *UnknownHandlerError) Error() string {
	return fmt.Sprintf("exploration %q state %q: unknown answer handler %q", e.ExplorationID, e.StateID, e.Handler)
}

func (e *UnknownHandlerError) Unwrap() error { return ErrConfigurationDefect }

// UnknownWidgetError is returned by widget registries for unregistered kinds.
type UnknownWidgetError struct {
	Scope string
	Kind  string
}

func (e *UnknownWidgetError) Error() string {
	return fmt.Sprintf("unknown %s widget %q", e.Scope, e.Kind)
}

func (e *UnknownWidgetError) Unwrap() error { return ErrConfigurationDefect }

// MissingPromptError is returned when an answer is submitted to a pass-through state.
type MissingPromptError struct {
	ExplorationID string
	StateID       string
}

func (e *MissingPromptError) Error() string {
	return fmt.Sprintf("exploration %q state %q has no prompt to answer", e.ExplorationID, e.StateID)
}

func (e *MissingPromptError) Unwrap() error { return ErrConfigurationDefect }

// UnboundParameterError reports a placeholder with no value in the context.
type UnboundParameterError struct {
	Name string
}

func (e *UnboundParameterError) Error() string {
	return fmt.Sprintf("unbound parameter {%s}", e.Name)
}

func (e *UnboundParameterError) Unwrap() error { return ErrUnboundParameter }

// ExpressionError wraps a failed predicate or parameter expression.
type ExpressionError struct {
	Expr string
	Err  error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("expression %q: %v", e.Expr, e.Err)
}

func (e *ExpressionError) Unwrap() []error {
	return []error{ErrConfigurationDefect, e.Err}
}

// PredicateError reports an unusable predicate definition.
type PredicateError struct {
	Kind   PredicateKind
	Reason string
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("predicate %q: %s", e.Kind, e.Reason)
}

func (e *PredicateError) Unwrap() error { return ErrConfigurationDefect }
