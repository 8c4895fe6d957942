package ports

import "context"

// ExpressionEvaluator evaluates a source expression against a parameter bag.
type ExpressionEvaluator interface {
	Eval(ctx context.Context, src string, params map[string]any) (any, error)
}
