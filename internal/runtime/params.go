package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
)

// applyParamChanges evaluates changes in order on a copy of base. Each change
// sees the values assigned by the ones before it.
func (e *Engine) applyParamChanges(ctx context.Context, changes []domain.ParamChange, base domain.Params) (domain.Params, error) {
	out := base.Clone()
	for _, pc := range changes {
		v, err := e.paramValue(ctx, pc, out)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", pc.Name, err)
		}
		out[pc.Name] = v
	}
	return out, nil
}

func (e *Engine) paramValue(ctx context.Context, pc domain.ParamChange, params domain.Params) (any, error) {
	if pc.Expr != "" {
		return e.evaluator.Eval(ctx, pc.Expr, params)
	}
	if s, ok := pc.Value.(string); ok {
		return content.Interpolate(s, params)
	}
	return pc.Value, nil
}

// InitParams computes the initial parameters of an exploration, starting
// from an empty context.
func (e *Engine) InitParams(ctx context.Context, explorationID string) (domain.Params, error) {
	exp, err := e.store.Get(ctx, explorationID)
	if err != nil {
		return nil, err
	}
	return e.applyParamChanges(ctx, exp.Params, domain.Params{})
}
