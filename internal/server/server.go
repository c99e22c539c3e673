// Package server exposes the debate engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/szaher/kontra/internal/conversation"
	"github.com/szaher/kontra/internal/debate"
	"github.com/szaher/kontra/internal/telemetry"
)

// Server is the HTTP surface over the debate engine.
type Server struct {
	engine  *debate.Engine
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	metrics *telemetry.Metrics

	maxMessageLength int
	startTime        time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics mounts the metrics collector's handler at /metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMaxMessageLength bounds accepted chat messages.
func WithMaxMessageLength(n int) Option {
	return func(s *Server) { s.maxMessageLength = n }
}

// NewServer creates the HTTP server over a debate engine.
func NewServer(engine *debate.Engine, opts ...Option) *Server {
	s := &Server{
		engine:           engine,
		logger:           slog.Default(),
		metrics:          telemetry.NewMetrics(),
		maxMessageLength: 2000,
		startTime:        time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("DELETE /chat/{id}", s.handleDelete)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux = mux
	return s
}

// Handler returns the HTTP handler for use with httptest or custom
// servers.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.correlationMiddleware(s.mux))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("server starting", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := telemetry.WithCorrelationID(r.Context(), r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// message is one turn in the wire format.
type message struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string `json:"conversation_id,omitempty"`
		Message        string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Message must not be empty")
		return
	}
	if len(req.Message) > s.maxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "Message exceeds the maximum length")
		return
	}

	res, err := s.engine.ProcessMessage(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, debate.ErrValidation):
			writeError(w, http.StatusBadRequest, "invalid_request", "Message could not be processed as given")
		default:
			telemetry.RequestLogger(s.logger, r.Context(), req.ConversationID).Error("chat turn failed", "error", err)
			writeError(w, http.StatusInternalServerError, "processing_error", "Failed to process chat message")
		}
		return
	}

	messages := make([]message, len(res.Turns))
	for i, turn := range res.Turns {
		role := "user"
		if turn.Speaker == conversation.SpeakerAgent {
			role = "bot"
		}
		messages[i] = message{Role: role, Message: turn.Text}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": res.ConversationID,
		"messages":        messages,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existed, err := s.engine.DeleteConversation(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, debate.ErrValidation):
			writeError(w, http.StatusBadRequest, "invalid_request", "Conversation id must not be empty")
		default:
			telemetry.RequestLogger(s.logger, r.Context(), id).Error("delete failed", "error", err)
			writeError(w, http.StatusInternalServerError, "processing_error", "Failed to delete conversation")
		}
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "not_found", "Conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": id,
		"deleted":         true,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"engine": s.engine.Status(),
		"uptime": time.Since(s.startTime).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
