package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/lattice/internal/sanitize"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Websocket message types.
const (
	WSAnswer   = "answer"
	WSFeedback = "feedback"
	WSView     = "view"
	WSResume   = "resume"
	WSOutcome  = "outcome"
	WSAck      = "ack"
	WSError    = "error"
)

const wsWriteWait = 10 * time.Second

// ClientMessage is sent by the player.
type ClientMessage struct {
	Type     string `json:"type"`
	Answer   any    `json:"answer,omitempty"`
	Handler  string `json:"handler,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// ServerMessage is sent to the player.
type ServerMessage struct {
	Type        string              `json:"type"`
	SessionID   string              `json:"session_id,omitempty"`
	View        *domain.InitialView `json:"view,omitempty"`
	Playthrough *domain.Playthrough `json:"playthrough,omitempty"`
	Outcome     *domain.Outcome     `json:"outcome,omitempty"`
	Error       string              `json:"error,omitempty"`
	Status      int                 `json:"status,omitempty"`
}

// PlayExploration handles GET /explorations/{explorationId}/play.
// The session lives on the server, so the player only sends answers.
func (s *Server) PlayExploration(w http.ResponseWriter, r *http.Request, explorationID string, params PlayExplorationParams) {
	sessionID := uuid.NewString()
	if params.SessionID != nil && *params.SessionID != "" {
		sessionID = *params.SessionID
	}
	logger := s.requestLogger(r).With("session_id", sessionID, "exploration_id", explorationID)

	play, view, err := s.sessions.Begin(r.Context(), sessionID, explorationID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(int64(sanitize.MaxAnswerSize())*4 + 1024)

	first := ServerMessage{Type: WSResume, SessionID: sessionID, Playthrough: play}
	if view != nil {
		first = ServerMessage{Type: WSView, SessionID: sessionID, View: view}
	}
	if err := writeWS(conn, first); err != nil {
		logger.Warn("websocket write failed", "err", err)
		return
	}
	logger.Info("websocket session opened", "resumed", view == nil)

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", "err", err)
			}
			return
		}

		reply, done := s.handleWS(r, sessionID, msg)
		if err := writeWS(conn, reply); err != nil {
			logger.Warn("websocket write failed", "err", err)
			return
		}
		if done {
			logger.Info("websocket session finished")
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "finished"),
				time.Now().Add(wsWriteWait))
			return
		}
	}
}

func (s *Server) handleWS(r *http.Request, sessionID string, msg ClientMessage) (ServerMessage, bool) {
	ctx := r.Context()
	switch msg.Type {
	case WSAnswer:
		if msg.Answer == nil {
			return wsError(&BadRequestError{Err: errors.New("answer is required")}), false
		}
		answer, err := sanitize.Answer(msg.Answer)
		if err != nil {
			return wsError(err), false
		}
		out, err := s.sessions.Answer(ctx, sessionID, msg.Handler, answer)
		if err != nil {
			s.requestLogger(r).Debug("websocket answer failed", "session_id", sessionID, "err", err)
			return wsError(err), false
		}
		return ServerMessage{Type: WSOutcome, SessionID: sessionID, Outcome: out}, out.Finished
	case WSFeedback:
		feedback, err := sanitize.String(msg.Feedback)
		if err == nil && feedback == "" {
			err = &BadRequestError{Err: errors.New("feedback is required")}
		}
		if err == nil {
			err = s.sessions.Feedback(ctx, sessionID, feedback)
		}
		if err != nil {
			return wsError(err), false
		}
		return ServerMessage{Type: WSAck, SessionID: sessionID}, false
	default:
		return wsError(&BadRequestError{Err: errors.New("unknown message type " + msg.Type)}), false
	}
}

func wsError(err error) ServerMessage {
	return ServerMessage{Type: WSError, Error: err.Error(), Status: StatusFor(err)}
}

func writeWS(conn *websocket.Conn, msg ServerMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(msg)
}
