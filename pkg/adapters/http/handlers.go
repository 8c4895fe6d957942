package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Info is the body of GET /info.
type Info struct {
	App        string `json:"app"`
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
}

func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	return s.logger.With(slog.String("request_id", middleware.GetReqID(r.Context())))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := LoadSpec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	render.JSON(w, r, Info{App: "lattice-http", Version: s.version, APIVersion: apiVersion})
}

// ListExplorations handles GET /explorations.
func (s *Server) ListExplorations(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.ListExplorations(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if list == nil {
		list = []domain.ExplorationSummary{}
	}
	render.JSON(w, r, list)
}

// StartExploration handles GET /explorations/{explorationId}.
func (s *Server) StartExploration(w http.ResponseWriter, r *http.Request, explorationID string) {
	view, err := s.engine.Start(r.Context(), explorationID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.requestLogger(r).Debug("exploration started", "exploration_id", explorationID, "state_id", view.StateID)
	render.JSON(w, r, view)
}

// SubmitAnswer handles POST /explorations/{explorationId}/states/{stateId}.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request, explorationID, stateID string) {
	var body AnswerRequest
	if err := bind(r, &body); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	out, err := s.engine.Submit(r.Context(), body.Request(explorationID, stateID))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.requestLogger(r).Debug("answer resolved",
		"exploration_id", explorationID,
		"from", stateID,
		"to", out.StateID,
		"finished", out.Finished,
	)
	render.JSON(w, r, out)
}

// SubmitFeedback handles POST /explorations/{explorationId}/states/{stateId}/feedback.
func (s *Server) SubmitFeedback(w http.ResponseWriter, r *http.Request, explorationID, stateID string) {
	var body FeedbackRequest
	if err := bind(r, &body); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.engine.RecordFeedback(r.Context(), explorationID, stateID, body.Feedback, body.StateHistory); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	render.NoContent(w, r)
}

// bind decodes and validates a request body, reporting every failure as a bad request.
func bind(r *http.Request, v render.Binder) error {
	err := render.Bind(r, v)
	if err == nil {
		return nil
	}
	var bad *BadRequestError
	if errors.As(err, &bad) {
		return err
	}
	return &BadRequestError{Err: err}
}
