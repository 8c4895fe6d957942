package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

// Server serves the engine over HTTP. It implements ServerInterface.
type Server struct {
	engine     ports.Engine
	sessions   *session.Manager
	streams    *StreamManager
	logger     *slog.Logger
	version    string
	corsOrigin string
	upgrader   websocket.Upgrader
}

var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the application version reported by /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithCORSOrigin sets Access-Control-Allow-Origin. Empty disables CORS headers.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		s.corsOrigin = origin
	}
}

// WithSessions sets the session manager used by the websocket player.
// Defaults to an in-memory manager over the same engine.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithStreams sets the SSE stream manager. Register the same manager as an
// analytics emitter of the engine to stream its events.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// NewServer creates a Server over engine.
func NewServer(engine ports.Engine, opts ...Option) *Server {
	s := &Server{
		engine:     engine,
		logger:     logging.NewNop(),
		version:    "dev",
		corsOrigin: "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(engine, memory.NewSessionStore(), session.WithLogger(s.logger))
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine ports.Engine, opts ...Option) (http.Handler, error) {
	return NewServer(engine, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() (http.Handler, error) {
	doc, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	validateRequest, err := requestValidator(doc, s.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, s.logger, &notFoundRoute{path: r.URL.Path})
	})

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	r.Group(func(r chi.Router) {
		r.Use(validateRequest)
		HandlerFromMux(s, r, s.logger)
	})
	return r, nil
}

// Streams returns the SSE stream manager.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.corsOrigin == "*" || origin == s.corsOrigin
}

type notFoundRoute struct {
	path string
}

func (e *notFoundRoute) Error() string { return fmt.Sprintf("route %s not found", e.path) }

func (e *notFoundRoute) Unwrap() error { return domain.ErrNotFound }
