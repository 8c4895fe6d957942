package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/lattice/internal/sanitize"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AnswerRequest is the body of POST /explorations/{explorationId}/states/{stateId}.
type AnswerRequest struct {
	Answer       any            `json:"answer"`
	Handler      string         `json:"handler,omitempty" validate:"omitempty,max=64"`
	BlockNumber  int            `json:"block_number" validate:"gte=0"`
	Params       domain.Params  `json:"params"`
	StateHistory domain.History `json:"state_history" validate:"omitempty,dive,required"`
}

// Bind validates the decoded payload and sanitizes the answer.
func (a *AnswerRequest) Bind(_ *http.Request) error {
	if a.Answer == nil {
		return &BadRequestError{Err: errors.New("answer is required")}
	}
	if err := validate.Struct(a); err != nil {
		return &BadRequestError{Err: err}
	}
	clean, err := sanitize.Answer(a.Answer)
	if err != nil {
		return &BadRequestError{Err: err}
	}
	a.Answer = clean
	return nil
}

// Request builds the engine request for the addressed state.
func (a *AnswerRequest) Request(explorationID, stateID string) domain.Request {
	return domain.Request{
		ExplorationID: explorationID,
		StateID:       stateID,
		Answer:        a.Answer,
		Handler:       a.Handler,
		BlockNumber:   a.BlockNumber,
		Params:        a.Params,
		StateHistory:  a.StateHistory,
	}
}

// FeedbackRequest is the body of POST /explorations/{explorationId}/states/{stateId}/feedback.
type FeedbackRequest struct {
	Feedback     string         `json:"feedback" validate:"required"`
	StateHistory domain.History `json:"state_history" validate:"omitempty,dive,required"`
}

func (f *FeedbackRequest) Bind(_ *http.Request) error {
	if err := validate.Struct(f); err != nil {
		return &BadRequestError{Err: err}
	}
	clean, err := sanitize.String(f.Feedback)
	if err != nil {
		return &BadRequestError{Err: err}
	}
	f.Feedback = clean
	return nil
}
