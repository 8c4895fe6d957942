package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations described by openapi.yaml.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
	// (GET /explorations)
	ListExplorations(w http.ResponseWriter, r *http.Request)
	// (GET /explorations/{explorationId})
	StartExploration(w http.ResponseWriter, r *http.Request, explorationID string)
	// (POST /explorations/{explorationId}/states/{stateId})
	SubmitAnswer(w http.ResponseWriter, r *http.Request, explorationID, stateID string)
	// (POST /explorations/{explorationId}/states/{stateId}/feedback)
	SubmitFeedback(w http.ResponseWriter, r *http.Request, explorationID, stateID string)
	// (GET /explorations/{explorationId}/play)
	PlayExploration(w http.ResponseWriter, r *http.Request, explorationID string, params PlayExplorationParams)
	// (GET /events)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
}

// PlayExplorationParams are the query parameters of PlayExploration.
type PlayExplorationParams struct {
	SessionID *string `form:"session_id,omitempty" json:"session_id,omitempty"`
}

// SubscribeEventsParams are the query parameters of SubscribeEvents.
type SubscribeEventsParams struct {
	ExplorationID *string `form:"exploration_id,omitempty" json:"exploration_id,omitempty"`
}

// serverInterfaceWrapper binds path and query parameters before dispatching.
type serverInterfaceWrapper struct {
	handler ServerInterface
	logger  *slog.Logger
}

// HandlerFromMux registers every operation of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router, logger *slog.Logger) http.Handler {
	wrapper := serverInterfaceWrapper{handler: si, logger: logger}

	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	r.Get("/explorations", si.ListExplorations)
	r.Get("/explorations/{explorationId}", wrapper.StartExploration)
	r.Post("/explorations/{explorationId}/states/{stateId}", wrapper.SubmitAnswer)
	r.Post("/explorations/{explorationId}/states/{stateId}/feedback", wrapper.SubmitFeedback)
	r.Get("/explorations/{explorationId}/play", wrapper.PlayExploration)
	r.Get("/events", wrapper.SubscribeEvents)
	return r
}

func (w serverInterfaceWrapper) pathParam(r *http.Request, name string, dest *string) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return &BadRequestError{Err: err}
	}
	return nil
}

func (w serverInterfaceWrapper) StartExploration(rw http.ResponseWriter, r *http.Request) {
	var explorationID string
	if err := w.pathParam(r, "explorationId", &explorationID); err != nil {
		writeError(rw, r, w.logger, err)
		return
	}
	w.handler.StartExploration(rw, r, explorationID)
}

func (w serverInterfaceWrapper) SubmitAnswer(rw http.ResponseWriter, r *http.Request) {
	var explorationID, stateID string
	if err := w.pathParam(r, "explorationId", &explorationID); err != nil {
		writeError(rw, r, w.logger, err)
		return
	}
	if err := w.pathParam(r, "stateId", &stateID); err != nil {
		writeError(rw, r, w.logger, err)
		return
	}
	w.handler.SubmitAnswer(rw, r, explorationID, stateID)
}

func (w serverInterfaceWrapper) SubmitFeedback(rw http.ResponseWriter, r *http.Request) {
	var explorationID, stateID string
	if err := w.pathParam(r, "explorationId", &explorationID); err != nil {
		writeError(rw, r, w.logger, err)
		return
	}
	if err := w.pathParam(r, "stateId", &stateID); err != nil {
		writeError(rw, r, w.logger, err)
		return
	}
	w.handler.SubmitFeedback(rw, r, explorationID, stateID)
}

func (w serverInterfaceWrapper) PlayExploration(rw http.ResponseWriter, r *http.Request) {
	var explorationID string
	if err := w.pathParam(r, "explorationId", &explorationID); err != nil {
		writeError(rw, r, w.logger, err)
		return
	}
	var params PlayExplorationParams
	if err := runtime.BindQueryParameter("form", true, false, "session_id", r.URL.Query(), &params.SessionID); err != nil {
		writeError(rw, r, w.logger, &BadRequestError{Err: err})
		return
	}
	w.handler.PlayExploration(rw, r, explorationID, params)
}

func (w serverInterfaceWrapper) SubscribeEvents(rw http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "exploration_id", r.URL.Query(), &params.ExplorationID); err != nil {
		writeError(rw, r, w.logger, &BadRequestError{Err: err})
		return
	}
	w.handler.SubscribeEvents(rw, r, params)
}
