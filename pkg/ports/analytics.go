package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// AnalyticsEmitter receives immutable event records.
// Calls are one-way: the engine consumes no result and never fails a
// transition because of the emitter. Implementations must tolerate
// concurrent, unordered calls.
type AnalyticsEmitter interface {
	RecordStateHit(ctx context.Context, e domain.StateHitEvent)
	RecordAnswerSubmitted(ctx context.Context, e domain.AnswerSubmittedEvent)
	RecordFeedback(ctx context.Context, e domain.FeedbackEvent)
}
