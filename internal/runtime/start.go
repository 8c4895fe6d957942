package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Start delivers the initial state of an exploration. It does not classify
// anything; entering is always a first visit.
func (e *Engine) Start(ctx context.Context, explorationID string) (*domain.InitialView, error) {
	exp, err := e.store.Get(ctx, explorationID)
	if err != nil {
		return nil, err
	}
	first, err := exp.StateByID(exp.InitStateID)
	if err != nil {
		err = &domain.DanglingDestinationError{ExplorationID: exp.ID, Dest: exp.InitStateID}
		e.logger.Error("invalid initial state", "exploration_id", exp.ID, "err", err)
		return nil, err
	}

	params, err := e.applyParamChanges(ctx, exp.Params, domain.Params{})
	if err != nil {
		return nil, err
	}
	params, err = e.applyParamChanges(ctx, first.ParamChanges, params)
	if err != nil {
		return nil, err
	}

	body, err := e.renderer.Render(first.Content, params)
	if err != nil {
		return nil, fmt.Errorf("state %q content: %w", first.ID, err)
	}

	prompt := ""
	if first.Widget != nil {
		w, err := e.widgets.Get(e.scope, first.Widget.WidgetID)
		if err != nil {
			e.logger.Error("widget lookup failed", "exploration_id", exp.ID, "state_id", first.ID, "err", err)
			return nil, err
		}
		if prompt, err = w.RenderPrompt(first.Widget.CustomizationArgs, params); err != nil {
			return nil, fmt.Errorf("state %q prompt: %w", first.ID, err)
		}
	}

	e.emitStateHit(ctx, exp.ID, first.ID, true)

	return &domain.InitialView{
		ExplorationID: exp.ID,
		Title:         exp.Title,
		StateID:       first.ID,
		ContentHTML:   body,
		PromptHTML:    prompt,
		Params:        params,
		BlockNumber:   0,
		StateHistory:  domain.History{first.ID},
	}, nil
}

// RecordFeedback forwards free-text reader feedback about a state to analytics.
func (e *Engine) RecordFeedback(ctx context.Context, explorationID, stateID, feedback string, history domain.History) error {
	exp, err := e.store.Get(ctx, explorationID)
	if err != nil {
		return err
	}
	if _, err := exp.StateByID(stateID); err != nil {
		return err
	}
	if strings.TrimSpace(feedback) == "" {
		return domain.ErrEmptyFeedback
	}

	ev := domain.FeedbackEvent{
		EventBase: domain.NewEventBase(domain.EventFeedbackSubmitted, exp.ID),
		StateID:   stateID,
		Feedback:  feedback,
		Extra:     map[string]any{"state_history": []string(history)},
	}
	e.emit(ctx, string(ev.Type), func() { e.emitter.RecordFeedback(ctx, ev) })
	return nil
}

// ListExplorations returns the public explorations in store order.
func (e *Engine) ListExplorations(ctx context.Context) ([]domain.ExplorationSummary, error) {
	ids, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ExplorationSummary, 0, len(ids))
	for _, id := range ids {
		exp, err := e.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", id, err)
		}
		if exp.IsPublic {
			out = append(out, exp.Summary())
		}
	}
	return out, nil
}
