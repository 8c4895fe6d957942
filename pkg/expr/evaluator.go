// Package expr evaluates predicate and parameter-change expressions with an
// embedded ECMAScript interpreter (goja).
//
// Every evaluation runs in a fresh runtime, since goja runtimes are not safe
// for concurrent use. Compiled programs are cached by source. Parameters are
// exposed as globals and, as a whole, under the name "params".
package expr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/dop251/goja"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 100 * time.Millisecond

// ErrTimeout is returned when an evaluation exceeds its budget.
var ErrTimeout = errors.New("expression timed out")

// Evaluator implements ports.ExpressionEvaluator.
type Evaluator struct {
	timeout  time.Duration
	programs sync.Map // source -> *goja.Program
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithTimeout sets the evaluation budget. Non-positive disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.timeout = d
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile parses src and caches the program.
func (e *Evaluator) Compile(src string) (*goja.Program, error) {
	if p, ok := e.programs.Load(src); ok {
		return p.(*goja.Program), nil
	}
	p, err := goja.Compile("", src, true)
	if err != nil {
		return nil, &domain.ExpressionError{Expr: src, Err: err}
	}
	actual, _ := e.programs.LoadOrStore(src, p)
	return actual.(*goja.Program), nil
}

// Eval runs src with params bound and returns the exported result.
func (e *Evaluator) Eval(ctx context.Context, src string, params map[string]any) (any, error) {
	prog, err := e.Compile(src)
	if err != nil {
		return nil, err
	}

	vm := goja.New()
	for k, v := range params {
		if err := vm.Set(k, v); err != nil {
			return nil, &domain.ExpressionError{Expr: src, Err: fmt.Errorf("bind %s: %w", k, err)}
		}
	}
	if err := vm.Set("params", params); err != nil {
		return nil, &domain.ExpressionError{Expr: src, Err: err}
	}

	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			vm.Interrupt(ErrTimeout)
		})
		defer timer.Stop()
	}
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	v, err := vm.RunProgram(prog)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause, ok := interrupted.Value().(error); ok {
				err = cause
			}
		}
		return nil, &domain.ExpressionError{Expr: src, Err: err}
	}
	if v == nil {
		return nil, nil
	}
	return v.Export(), nil
}

// EvalBool evaluates src and requires a boolean result.
func (e *Evaluator) EvalBool(ctx context.Context, src string, params map[string]any) (bool, error) {
	v, err := e.Eval(ctx, src, params)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &domain.ExpressionError{Expr: src, Err: fmt.Errorf("want boolean, got %T", v)}
	}
	return b, nil
}
