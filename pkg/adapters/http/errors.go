package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/lattice/internal/sanitize"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// BadRequestError marks a payload the server refuses to process.
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string { return "bad request: " + e.Err.Error() }

func (e *BadRequestError) Unwrap() error { return e.Err }

// StatusFor maps engine errors to HTTP status codes.
// Configuration defects win over not-found: a dangling destination is a broken
// exploration, not a missing resource.
func StatusFor(err error) int {
	var bad *BadRequestError
	switch {
	case errors.As(err, &bad),
		errors.Is(err, sanitize.ErrAnswerTooLarge),
		errors.Is(err, sanitize.ErrInvalidUTF8),
		errors.Is(err, domain.ErrEmptyFeedback):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrFinished):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConfigurationDefect),
		errors.Is(err, domain.ErrUnboundParameter):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusFor(err)
	log := logger.With(
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "err", err)
	} else {
		log.Debug("request rejected", "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error(), Status: status})
}
