// Package mcp exposes kiosk sessions as Model Context Protocol tools, so
// agent hosts can drive an interview the same way a human would at the
// console: watch the prompt land, type an answer, submit, launch.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/kiosk"
	"github.com/aretw0/kiosk/pkg/console"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

// SessionResponse is the unified tool result across adapters: the session's
// read model after the operation applied.
type SessionResponse struct {
	Snapshot domain.Snapshot `json:"snapshot" jsonschema_description:"Read model of the session after the operation"`
}

// EndResponse confirms a session teardown.
type EndResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"The closed session's identifier"`
	Closed    bool   `json:"closed" jsonschema_description:"Whether the session was found and closed"`
}

// SessionFactory builds a ready-to-start session for a new session ID.
type SessionFactory func(id string) (ports.SessionControl, error)

// Server manages live sessions and exposes them as an MCP server.
type Server struct {
	factory   SessionFactory
	mcpServer *server.MCPServer

	mu       sync.RWMutex
	sessions map[string]ports.SessionControl
}

// NewServer creates a new MCP server instance.
func NewServer(factory SessionFactory) *Server {
	s := &Server{
		factory:   factory,
		mcpServer: server.NewMCPServer("kiosk-mcp", strings.TrimSpace(kiosk.Version)),
		sessions:  make(map[string]ports.SessionControl),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, stopping MCP server")
		s.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// Close tears down every live session.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: begin_session
	beginTool := mcp.NewTool("begin_session",
		mcp.WithDescription("Begin an intake session. The kiosk starts auto-typing the first prompt; poll get_snapshot until the phase is awaiting_input."),
		mcp.WithString("session_id", mcp.Description("Session identifier (optional; generated when omitted)")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(beginTool, mcp.NewStructuredToolHandler(s.handleBegin))

	// TOOL: get_snapshot
	snapshotTool := mcp.NewTool("get_snapshot",
		mcp.WithDescription("Read the current session state: step, phase, transcript, draft buffer and launch gate."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(snapshotTool, mcp.NewStructuredToolHandler(s.handleSnapshot))

	// TOOL: type_answer
	typeTool := mcp.NewTool("type_answer",
		mcp.WithDescription("Replace the draft answer for the prompt currently awaiting input. Refused while a prompt is still typing."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Draft answer text")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(typeTool, mcp.NewStructuredToolHandler(s.handleType))

	// TOOL: submit_answer
	submitTool := mcp.NewTool("submit_answer",
		mcp.WithDescription("Commit the current draft as the answer and advance to the next prompt. Refused when the draft is blank."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(submitTool, mcp.NewStructuredToolHandler(s.handleSubmit))

	// TOOL: launch_run
	launchTool := mcp.NewTool("launch_run",
		mcp.WithDescription("Fire the launch gate, handing the completed answers to the configured launcher. Available only once every prompt is answered."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(launchTool, mcp.NewStructuredToolHandler(s.handleLaunch))

	// TOOL: end_session
	endTool := mcp.NewTool("end_session",
		mcp.WithDescription("Close a session and release its resources."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[EndResponse](),
	)
	s.mcpServer.AddTool(endTool, mcp.NewStructuredToolHandler(s.handleEnd))

	// TOOL: list_sessions
	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the IDs of live sessions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.sessionIDs())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleBegin(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	id = strings.TrimSpace(id)
	if id == "" {
		id = fmt.Sprintf("mcp-%d", time.Now().UnixNano())
	}

	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		s.mu.Unlock()
		return SessionResponse{}, fmt.Errorf("session %q already exists", id)
	}
	sess, err := s.factory(id)
	if err != nil {
		s.mu.Unlock()
		return SessionResponse{}, fmt.Errorf("session factory failed: %w", err)
	}
	if err := sess.Start(ctx); err != nil {
		s.mu.Unlock()
		sess.Close()
		return SessionResponse{}, fmt.Errorf("session start failed: %w", err)
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	slog.Info("MCP session created", "session_id", id)
	return SessionResponse{Snapshot: sess.Snapshot()}, nil
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sess, _, err := s.session(args)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{Snapshot: sess.Snapshot()}, nil
}

func (s *Server) handleType(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sess, _, err := s.session(args)
	if err != nil {
		return SessionResponse{}, err
	}
	text, _ := args["text"].(string)

	clean, err := console.SanitizeInput(text)
	if err != nil {
		slog.Warn("MCP type_answer: Input rejected", "error", err, "size", len(text))
		return SessionResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	if err := sess.SetInput(clean); err != nil {
		return SessionResponse{}, fmt.Errorf("draft refused: %w", err)
	}
	return SessionResponse{Snapshot: sess.Snapshot()}, nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sess, _, err := s.session(args)
	if err != nil {
		return SessionResponse{}, err
	}
	if err := sess.Submit(); err != nil {
		return SessionResponse{}, fmt.Errorf("submit refused: %w", err)
	}
	return SessionResponse{Snapshot: sess.Snapshot()}, nil
}

func (s *Server) handleEnd(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EndResponse, error) {
	id, _ := args["session_id"].(string)
	if strings.TrimSpace(id) == "" {
		return EndResponse{}, fmt.Errorf("session_id is required")
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return EndResponse{}, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	sess.Close()
	slog.Info("MCP session closed", "session_id", id)
	return EndResponse{SessionID: id, Closed: true}, nil
}

func (s *Server) handleLaunch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	sess, id, err := s.session(args)
	if err != nil {
		return SessionResponse{}, err
	}
	if err := sess.Launch(ctx); err != nil {
		return SessionResponse{}, fmt.Errorf("launch refused: %w", err)
	}
	slog.Info("MCP launch gate fired", "session_id", id)
	return SessionResponse{Snapshot: sess.Snapshot()}, nil
}

// session resolves the session_id argument to a live session.
func (s *Server) session(args map[string]interface{}) (ports.SessionControl, string, error) {
	id, _ := args["session_id"].(string)
	if strings.TrimSpace(id) == "" {
		return nil, "", fmt.Errorf("session_id is required")
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, id, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	return sess, id, nil
}

func (s *Server) sessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Server) registerResources() {
	// EXPOSE: kiosk://sessions
	s.mcpServer.AddResource(mcp.NewResource("kiosk://sessions", "Live Session Snapshots",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		s.mu.RLock()
		snapshots := make([]domain.Snapshot, 0, len(s.sessions))
		for _, sess := range s.sessions {
			snapshots = append(snapshots, sess.Snapshot())
		}
		s.mu.RUnlock()
		sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].SessionID < snapshots[j].SessionID })

		jsonBytes, err := json.Marshal(snapshots)
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshots: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "kiosk://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
