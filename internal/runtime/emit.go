package runtime

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// emit calls the emitter and swallows panics: analytics never fail a transition.
func (e *Engine) emit(ctx context.Context, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("analytics emitter panicked", "event", name, "panic", r)
		}
	}()
	fn()
}

func (e *Engine) emitStateHit(ctx context.Context, explorationID, stateID string, firstVisit bool) {
	ev := domain.StateHitEvent{
		EventBase:  domain.NewEventBase(domain.EventStateHit, explorationID),
		StateID:    stateID,
		FirstVisit: firstVisit,
	}
	e.emit(ctx, string(ev.Type), func() { e.emitter.RecordStateHit(ctx, ev) })
}

func (e *Engine) emitAnswer(ctx context.Context, explorationID, stateID, handler, ruleID, summary string) {
	ev := domain.AnswerSubmittedEvent{
		EventBase: domain.NewEventBase(domain.EventAnswerSubmitted, explorationID),
		StateID:   stateID,
		Handler:   handler,
		RuleID:    ruleID,
		Answer:    summary,
	}
	e.emit(ctx, string(ev.Type), func() { e.emitter.RecordAnswerSubmitted(ctx, ev) })
}

type nopEmitter struct{}

func (nopEmitter) RecordStateHit(context.Context, domain.StateHitEvent)               {}
func (nopEmitter) RecordAnswerSubmitted(context.Context, domain.AnswerSubmittedEvent) {}
func (nopEmitter) RecordFeedback(context.Context, domain.FeedbackEvent)               {}
