package analytics

import (
	"context"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// Multi fans every event out to each emitter in order. A sink that panics
// is skipped; the others still receive the event.
type Multi []ports.AnalyticsEmitter

func (m Multi) RecordStateHit(ctx context.Context, e domain.StateHitEvent) {
	for _, em := range m {
		deliver(e.Type, func() { em.RecordStateHit(ctx, e) })
	}
}

func (m Multi) RecordAnswerSubmitted(ctx context.Context, e domain.AnswerSubmittedEvent) {
	for _, em := range m {
		deliver(e.Type, func() { em.RecordAnswerSubmitted(ctx, e) })
	}
}

func (m Multi) RecordFeedback(ctx context.Context, e domain.FeedbackEvent) {
	for _, em := range m {
		deliver(e.Type, func() { em.RecordFeedback(ctx, e) })
	}
}

func deliver(kind domain.EventType, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Default().Error("analytics sink panicked", "event", string(kind), "panic", r)
		}
	}()
	fn()
}
