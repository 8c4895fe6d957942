package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// StreamEmitter appends analytics events to a Redis stream, one entry per
// event with fields type, exploration_id and payload (JSON).
// Failures are logged; wrap it in analytics.Async to keep Redis latency off
// the request path.
type StreamEmitter struct {
	client *backend.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

var _ ports.AnalyticsEmitter = (*StreamEmitter)(nil)

// NewStreamEmitter writes to stream, trimming it to roughly maxLen entries (0 = unbounded).
func NewStreamEmitter(client *backend.Client, stream string, maxLen int64, logger *slog.Logger) *StreamEmitter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamEmitter{client: client, stream: stream, maxLen: maxLen, logger: logger}
}

func (s *StreamEmitter) RecordStateHit(ctx context.Context, e domain.StateHitEvent) {
	s.add(ctx, e.EventBase, e)
}

func (s *StreamEmitter) RecordAnswerSubmitted(ctx context.Context, e domain.AnswerSubmittedEvent) {
	s.add(ctx, e.EventBase, e)
}

func (s *StreamEmitter) RecordFeedback(ctx context.Context, e domain.FeedbackEvent) {
	s.add(ctx, e.EventBase, e)
}

func (s *StreamEmitter) add(ctx context.Context, base domain.EventBase, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal event", "type", base.Type, "err", err)
		return
	}
	args := &backend.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"type":           string(base.Type),
			"exploration_id": base.ExplorationID,
			"payload":        data,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		s.logger.Error("failed to append event to stream", "stream", s.stream, "type", base.Type, "err", err)
	}
}
