package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/sanitize"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ExplorationsURI is the resource listing public explorations.
const ExplorationsURI = "lattice://explorations"

// Server exposes the engine as an MCP server.
//
// Stateless tools mirror the engine: the caller threads params and history.
// Session tools keep the playthrough on the server for clients that cannot.
type Server struct {
	engine    ports.Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions sets the session manager used by the session tools.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("lattice-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(engine, memory.NewSessionStore(), session.WithLogger(s.logger))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// StartArgs are the arguments of start_exploration.
type StartArgs struct {
	ExplorationID string `json:"exploration_id"`
}

// AnswerArgs are the arguments of submit_answer.
type AnswerArgs struct {
	ExplorationID string         `json:"exploration_id"`
	StateID       string         `json:"state_id"`
	Answer        string         `json:"answer"`
	AnswerJSON    string         `json:"answer_json,omitempty"`
	Handler       string         `json:"handler,omitempty"`
	BlockNumber   int            `json:"block_number,omitempty"`
	Params        domain.Params  `json:"params,omitempty"`
	StateHistory  domain.History `json:"state_history,omitempty"`
}

// FeedbackArgs are the arguments of submit_feedback.
type FeedbackArgs struct {
	ExplorationID string         `json:"exploration_id"`
	StateID       string         `json:"state_id"`
	Feedback      string         `json:"feedback"`
	StateHistory  domain.History `json:"state_history,omitempty"`
}

// SessionArgs are the arguments of the session tools.
type SessionArgs struct {
	SessionID     string `json:"session_id"`
	ExplorationID string `json:"exploration_id,omitempty"`
	Answer        string `json:"answer,omitempty"`
	AnswerJSON    string `json:"answer_json,omitempty"`
	Handler       string `json:"handler,omitempty"`
}

// SessionView is the result of begin_session.
type SessionView struct {
	Resumed     bool                `json:"resumed" jsonschema_description:"True when an existing session was resumed"`
	View        *domain.InitialView `json:"view,omitempty" jsonschema_description:"Initial view of a new session"`
	Playthrough *domain.Playthrough `json:"playthrough" jsonschema_description:"Server-held session state"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_explorations",
		mcp.WithDescription("List the public explorations."),
	), s.handleList)

	s.mcpServer.AddTool(mcp.NewTool("start_exploration",
		mcp.WithDescription("Enter an exploration at its initial state. Keep params, state_history and block_number for the next submit_answer."),
		mcp.WithString("exploration_id", mcp.Required(), mcp.Description("Exploration ID")),
		mcp.WithOutputSchema[domain.InitialView](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("submit_answer",
		mcp.WithDescription("Resolve an answer to the current state into the next state."),
		mcp.WithString("exploration_id", mcp.Required(), mcp.Description("Exploration ID")),
		mcp.WithString("state_id", mcp.Required(), mcp.Description("Current state ID")),
		mcp.WithString("answer", mcp.Description("Answer text")),
		mcp.WithString("answer_json", mcp.Description("Answer as a JSON value; takes precedence over answer")),
		mcp.WithString("handler", mcp.Description("Answer handler (defaults to submit)")),
		mcp.WithNumber("block_number", mcp.Description("Block number returned by the previous call")),
		mcp.WithObject("params", mcp.Description("Params returned by the previous call")),
		mcp.WithArray("state_history", mcp.WithStringItems(), mcp.Description("State history returned by the previous call")),
		mcp.WithOutputSchema[domain.Outcome](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("submit_feedback",
		mcp.WithDescription("Record free-text reader feedback about a state."),
		mcp.WithString("exploration_id", mcp.Required(), mcp.Description("Exploration ID")),
		mcp.WithString("state_id", mcp.Required(), mcp.Description("State ID")),
		mcp.WithString("feedback", mcp.Required(), mcp.Description("Feedback text")),
		mcp.WithArray("state_history", mcp.WithStringItems(), mcp.Description("State history")),
	), s.handleFeedback)

	s.mcpServer.AddTool(mcp.NewTool("begin_session",
		mcp.WithDescription("Start or resume a server-held session of an exploration."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID chosen by the client")),
		mcp.WithString("exploration_id", mcp.Required(), mcp.Description("Exploration ID")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleBeginSession))

	s.mcpServer.AddTool(mcp.NewTool("answer_session",
		mcp.WithDescription("Answer the current state of a server-held session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("answer", mcp.Description("Answer text")),
		mcp.WithString("answer_json", mcp.Description("Answer as a JSON value; takes precedence over answer")),
		mcp.WithString("handler", mcp.Description("Answer handler (defaults to submit)")),
		mcp.WithOutputSchema[domain.Outcome](),
	), mcp.NewStructuredToolHandler(s.handleAnswerSession))
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.engine.ListExplorations(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args StartArgs) (domain.InitialView, error) {
	view, err := s.engine.Start(ctx, args.ExplorationID)
	if err != nil {
		return domain.InitialView{}, fmt.Errorf("start failed: %w", err)
	}
	return *view, nil
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest, args AnswerArgs) (domain.Outcome, error) {
	answer, err := decodeAnswer(args.Answer, args.AnswerJSON)
	if err != nil {
		s.logger.Warn("MCP submit_answer: answer rejected", "err", err)
		return domain.Outcome{}, fmt.Errorf("answer rejected: %w", err)
	}
	out, err := s.engine.Submit(ctx, domain.Request{
		ExplorationID: args.ExplorationID,
		StateID:       args.StateID,
		Answer:        answer,
		Handler:       args.Handler,
		BlockNumber:   args.BlockNumber,
		Params:        args.Params,
		StateHistory:  args.StateHistory,
	})
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("submit failed: %w", err)
	}
	return *out, nil
}

func (s *Server) handleFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args FeedbackArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	feedback, err := sanitize.String(args.Feedback)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("feedback rejected: %v", err)), nil
	}
	if err := s.engine.RecordFeedback(ctx, args.ExplorationID, args.StateID, feedback, args.StateHistory); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("feedback failed: %v", err)), nil
	}
	return mcp.NewToolResultText("recorded"), nil
}

func (s *Server) handleBeginSession(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionView, error) {
	play, view, err := s.sessions.Begin(ctx, args.SessionID, args.ExplorationID)
	if err != nil {
		return SessionView{}, fmt.Errorf("begin failed: %w", err)
	}
	return SessionView{Resumed: view == nil, View: view, Playthrough: play}, nil
}

func (s *Server) handleAnswerSession(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (domain.Outcome, error) {
	answer, err := decodeAnswer(args.Answer, args.AnswerJSON)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("answer rejected: %w", err)
	}
	out, err := s.sessions.Answer(ctx, args.SessionID, args.Handler, answer)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("answer failed: %w", err)
	}
	return *out, nil
}

// decodeAnswer prefers the JSON form so list and numeric answers survive
// clients that only send strings.
func decodeAnswer(text, raw string) (any, error) {
	if raw == "" {
		return sanitize.String(text)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("answer_json: %w", err)
	}
	return sanitize.Answer(v)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ExplorationsURI, "Public explorations",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.engine.ListExplorations(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list explorations: %w", err)
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ExplorationsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
