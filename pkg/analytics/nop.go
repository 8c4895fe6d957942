package analytics

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// Nop discards every event.
type Nop struct{}

var _ ports.AnalyticsEmitter = Nop{}

func (Nop) RecordStateHit(context.Context, domain.StateHitEvent)               {}
func (Nop) RecordAnswerSubmitted(context.Context, domain.AnswerSubmittedEvent) {}
func (Nop) RecordFeedback(context.Context, domain.FeedbackEvent)               {}
