package analytics

import (
	"context"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// Logger writes every event as a structured log record.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogger creates a log emitter writing at the given level.
func NewLogger(logger *slog.Logger, level slog.Level) *Logger {
	return &Logger{logger: logger.With("component", "analytics"), level: level}
}

func (l *Logger) RecordStateHit(ctx context.Context, e domain.StateHitEvent) {
	l.logger.Log(ctx, l.level, string(e.Type),
		"event_id", e.ID,
		"exploration_id", e.ExplorationID,
		"state_id", e.StateID,
		"first_visit", e.FirstVisit,
	)
}

func (l *Logger) RecordAnswerSubmitted(ctx context.Context, e domain.AnswerSubmittedEvent) {
	l.logger.Log(ctx, l.level, string(e.Type),
		"event_id", e.ID,
		"exploration_id", e.ExplorationID,
		"state_id", e.StateID,
		"handler", e.Handler,
		"rule_id", e.RuleID,
		"answer", e.Answer,
	)
}

func (l *Logger) RecordFeedback(ctx context.Context, e domain.FeedbackEvent) {
	l.logger.Log(ctx, l.level, string(e.Type),
		"event_id", e.ID,
		"exploration_id", e.ExplorationID,
		"state_id", e.StateID,
		"feedback_size", len(e.Feedback),
	)
}
