// ABOUTME: MCP Streamable HTTP transport exposing the tool registry over JSON-RPC 2.0.
// ABOUTME: Manages sessions and serves the /health and / probes.

package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/hiring-router/internal/tools"
)

// mcpSession tracks an active MCP client session.
type mcpSession struct {
	id              string
	protocolVersion string
	createdAt       time.Time
}

// sessionStore manages active MCP sessions (in-memory).
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*mcpSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*mcpSession)}
}

func (s *sessionStore) create(protocolVersion string) *mcpSession {
	sess := &mcpSession{
		id:              uuid.New().String(),
		protocolVersion: protocolVersion,
		createdAt:       time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

func (s *sessionStore) get(id string) (*mcpSession, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

func (s *sessionStore) delete(id string) bool {
	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	return existed
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Config holds configuration for the MCP server.
type Config struct {
	Registry *tools.Registry
	Logger   *slog.Logger
	Name     string // serverInfo.name and the / probe's service field
	Version  string
}

// Server implements MCP-compatible HTTP and stdio endpoints.
type Server struct {
	registry *tools.Registry
	logger   *slog.Logger
	name     string
	version  string
	sessions *sessionStore
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "hiring-router-mcp"
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		registry: cfg.Registry,
		logger:   logger,
		name:     name,
		version:  version,
		sessions: newSessionStore(),
	}, nil
}

// RegisterRoutes registers the MCP endpoint and the health probes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp", s.handleMCP)
	mux.HandleFunc("/mcp/", s.handleMCP)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
}

// SessionCount returns the number of open HTTP sessions.
func (s *Server) SessionCount() int { return s.sessions.count() }

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleRoot identifies the service for environment probes.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"service": s.name, "status": "ok"})
}

// handleMCP is the single MCP endpoint supporting POST and DELETE.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodGet:
		// We don't support server-initiated SSE streams
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, GET, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleDelete terminates a session.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	if sessionID == "" {
		http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
		return
	}
	if !s.sessions.delete(sessionID) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	s.logger.Info("MCP session terminated", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handlePost processes JSON-RPC messages sent via HTTP POST.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	protoVersion := r.Header.Get("Mcp-Protocol-Version")

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.send(w, errorResponse(nil, JSONRPCParseError, "failed to read request body"))
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.send(w, errorResponse(nil, JSONRPCInvalidRequest, "request body too large"))
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.send(w, errorResponse(nil, JSONRPCParseError, "invalid JSON"))
		return
	}
	if req.JSONRPC != "2.0" {
		s.send(w, errorResponse(req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version"))
		return
	}

	isInitialize := req.Method == "initialize"

	if !isInitialize && protoVersion != "" && !supportedProtocolVersions[protoVersion] {
		http.Error(w, "Bad Request: unsupported MCP-Protocol-Version", http.StatusBadRequest)
		return
	}

	// Non-initialize requests require a valid session
	if !isInitialize {
		if sessionID == "" {
			http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
			return
		}
		if _, ok := s.sessions.get(sessionID); !ok {
			// Session expired or invalid - client must re-initialize
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
	}

	s.logger.Debug("MCP request",
		"method", req.Method,
		"is_notification", req.isNotification(),
		"session_id", sessionID,
	)

	// Handle notifications: accept and return HTTP 202 with no body
	if req.isNotification() {
		if !strings.HasPrefix(req.Method, "notifications/") {
			s.logger.Warn("received notification for non-notification method", "method", req.Method)
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if isInitialize {
		sess := s.sessions.create(latestProtocolVersion)
		s.logger.Info("MCP session created",
			"session_id", sess.id,
			"protocol_version", sess.protocolVersion,
		)
		w.Header().Set("Mcp-Session-Id", sess.id)
	}

	s.send(w, s.dispatch(r.Context(), req))
}

// send writes one JSON-RPC response.
func (s *Server) send(w http.ResponseWriter, resp *JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
