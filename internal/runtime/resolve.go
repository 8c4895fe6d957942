package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// Submit resolves one submitted answer: classify it against the current
// state's prompt, move to the matched rule's destination and assemble what
// the participant sees next. Analytics are emitted only once everything else
// succeeded.
func (e *Engine) Submit(ctx context.Context, req domain.Request) (*domain.Outcome, error) {
	logger := e.logger.With("exploration_id", req.ExplorationID, "state_id", req.StateID)

	exp, err := e.store.Get(ctx, req.ExplorationID)
	if err != nil {
		return nil, err
	}
	current, err := exp.StateByID(req.StateID)
	if err != nil {
		return nil, err
	}
	if current.Widget == nil {
		return nil, &domain.MissingPromptError{ExplorationID: exp.ID, StateID: current.ID}
	}

	handler := req.Handler
	if handler == "" {
		handler = domain.DefaultHandler
	}

	merged := req.Params.With(domain.AnswerKey, req.Answer)

	rule, err := e.Classify(ctx, exp.ID, current, handler, req.Answer, merged)
	if err != nil {
		e.logDefect(logger, "classification failed", err)
		return nil, err
	}

	widget, err := e.widgets.Get(e.scope, current.Widget.WidgetID)
	if err != nil {
		e.logDefect(logger, "widget lookup failed", err)
		return nil, err
	}
	args := current.Widget.CustomizationArgs
	response, iframe, err := widget.RenderResponse(args, merged, req.Answer)
	if err != nil {
		return nil, fmt.Errorf("render response: %w", err)
	}
	summary, err := widget.SummarizeAnswer(args, merged, req.Answer)
	if err != nil {
		return nil, fmt.Errorf("summarize answer: %w", err)
	}

	feedback, err := e.renderer.RenderFeedback(rule.Feedback, merged)
	if err != nil {
		return nil, err
	}

	out := &domain.Outcome{
		ExplorationID:  exp.ID,
		StateID:        rule.Dest,
		ResponseHTML:   response,
		ResponseIframe: iframe,
		BlockNumber:    req.BlockNumber + 1,
	}

	if rule.IsTerminal() {
		out.Finished = true
		out.Params = merged.Without(domain.AnswerKey)
		out.ContentHTML = feedback
	} else {
		dest, err := exp.StateByID(rule.Dest)
		if err != nil {
			err = &domain.DanglingDestinationError{ExplorationID: exp.ID, FromStateID: current.ID, Dest: rule.Dest}
			e.logDefect(logger, "dangling destination", err)
			return nil, err
		}

		params, err := e.applyParamChanges(ctx, dest.ParamChanges, merged)
		if err != nil {
			return nil, err
		}
		out.Params = params

		out.ContentHTML = feedback
		if dest.ID != current.ID {
			body, err := e.renderer.Render(dest.Content, params)
			if err != nil {
				return nil, fmt.Errorf("state %q content: %w", dest.ID, err)
			}
			out.ContentHTML = e.renderer.Join(feedback, body)
		}

		out.Sticky = isSticky(current, dest)
		if !out.Sticky && dest.Widget != nil {
			destWidget, err := e.widgets.Get(e.scope, dest.Widget.WidgetID)
			if err != nil {
				e.logDefect(logger, "widget lookup failed", err)
				return nil, err
			}
			out.PromptHTML, err = destWidget.RenderPrompt(dest.Widget.CustomizationArgs, params)
			if err != nil {
				return nil, fmt.Errorf("state %q prompt: %w", dest.ID, err)
			}
		}
	}

	out.FirstVisit = !req.StateHistory.Visited(out.StateID)
	out.StateHistory = req.StateHistory.Append(out.StateID)

	e.emitStateHit(ctx, exp.ID, out.StateID, out.FirstVisit)
	e.emitAnswer(ctx, exp.ID, current.ID, handler, rule.ID(), summary)

	logger.Debug("answer resolved",
		"handler", handler,
		"rule", rule.ID(),
		"dest", out.StateID,
		"first_visit", out.FirstVisit,
		"finished", out.Finished,
	)
	return out, nil
}

// isSticky reports whether dest continues current's widget without a prompt refresh.
func isSticky(current, dest *domain.State) bool {
	if current.Widget == nil || dest.Widget == nil {
		return false
	}
	return dest.Widget.Sticky && dest.Widget.WidgetID == current.Widget.WidgetID
}

// logDefect logs malformed exploration data; not-found and input errors stay quiet.
func (e *Engine) logDefect(logger *slog.Logger, msg string, err error) {
	if errors.Is(err, domain.ErrConfigurationDefect) {
		logger.Error(msg, "err", err)
	}
}
