package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of an analytics event.
type EventType string

const (
	EventStateHit          EventType = "state_hit"
	EventAnswerSubmitted   EventType = "answer_submitted"
	EventFeedbackSubmitted EventType = "feedback_submitted"
)

// EventBase contains common fields for all events.
type EventBase struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	ExplorationID string    `json:"exploration_id"`
}

// NewEventBase stamps a new event of the given type.
func NewEventBase(t EventType, explorationID string) EventBase {
	return EventBase{
		ID:            uuid.NewString(),
		Type:          t,
		Timestamp:     time.Now().UTC(),
		ExplorationID: explorationID,
	}
}

// StateHitEvent records entry into a state (or END).
type StateHitEvent struct {
	EventBase
	StateID    string `json:"state_id"`
	FirstVisit bool   `json:"first_visit"`
}

// AnswerSubmittedEvent records a classified answer.
type AnswerSubmittedEvent struct {
	EventBase
	StateID string `json:"state_id"`
	Handler string `json:"handler"`
	RuleID  string `json:"rule_id"`
	Answer  string `json:"answer"`
}

// FeedbackEvent records free-text reader feedback about a state.
type FeedbackEvent struct {
	EventBase
	StateID  string         `json:"state_id"`
	Feedback string         `json:"feedback"`
	Extra    map[string]any `json:"extra,omitempty"`
}
