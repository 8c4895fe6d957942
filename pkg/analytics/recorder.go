package analytics

import (
	"context"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// Recorder keeps every event in memory. Safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	hits     []domain.StateHitEvent
	answers  []domain.AnswerSubmittedEvent
	feedback []domain.FeedbackEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordStateHit(_ context.Context, e domain.StateHitEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = append(r.hits, e)
}

func (r *Recorder) RecordAnswerSubmitted(_ context.Context, e domain.AnswerSubmittedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, e)
}

func (r *Recorder) RecordFeedback(_ context.Context, e domain.FeedbackEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback = append(r.feedback, e)
}

// StateHits returns a copy of the recorded state hits.
func (r *Recorder) StateHits() []domain.StateHitEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.StateHitEvent(nil), r.hits...)
}

// Answers returns a copy of the recorded answers.
func (r *Recorder) Answers() []domain.AnswerSubmittedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AnswerSubmittedEvent(nil), r.answers...)
}

// Feedback returns a copy of the recorded feedback events.
func (r *Recorder) Feedback() []domain.FeedbackEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FeedbackEvent(nil), r.feedback...)
}

// Len returns the total number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hits) + len(r.answers) + len(r.feedback)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits, r.answers, r.feedback = nil, nil, nil
}
