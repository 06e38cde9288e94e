// Package server exposes the chat engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/trace"

	"vendor-portal-chatbot/internal/chat/router"
	"vendor-portal-chatbot/internal/common/config"
	stderrors "vendor-portal-chatbot/internal/common/errors"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/common/observability"
	"vendor-portal-chatbot/internal/models"
)

// ChatRouter is the routing surface the server depends on.
type ChatRouter interface {
	Route(ctx context.Context, conversationID, utterance string) (router.Result, error)
}

// HistoryStore reads conversation transcripts for the history endpoint.
type HistoryStore interface {
	History(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
}

const chatRequestSchema = `{
	"type": "object",
	"properties": {
		"conversationId": {"type": "string", "maxLength": 128},
		"message": {"type": "string", "maxLength": 4096}
	},
	"required": ["message"],
	"additionalProperties": false
}`

const maxRequestBody = 1 << 20

type chatRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string   `json:"conversationId"`
	Replies        []string `json:"replies"`
}

type Server struct {
	chat         ChatRouter
	history      HistoryStore
	obs          *observability.Observability
	tracing      *observability.Tracing
	cfg          config.ServerConfig
	historyLimit int
	logger       logger.Logger
	schema       *gojsonschema.Schema
	httpServer   *http.Server
}

// Options carries the server's collaborators. Obs and Tracing may be nil.
type Options struct {
	Chat         ChatRouter
	History      HistoryStore
	Obs          *observability.Observability
	Tracing      *observability.Tracing
	Config       config.ServerConfig
	HistoryLimit int
	Logger       logger.Logger
}

func New(opts Options) (*Server, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(chatRequestSchema))
	if err != nil {
		return nil, err
	}

	s := &Server{
		chat:         opts.Chat,
		history:      opts.History,
		obs:          opts.Obs,
		tracing:      opts.Tracing,
		cfg:          opts.Config,
		historyLimit: opts.HistoryLimit,
		logger:       opts.Logger.With(map[string]interface{}{"component": "server"}),
		schema:       schema,
	}
	s.httpServer = &http.Server{
		Addr:         opts.Config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(opts.Config.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(opts.Config.WriteTimeout) * time.Millisecond,
	}
	return s, nil
}

// Handler builds the route table; exposed so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/chat/history", s.handleHistory)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	start := time.Now()
	ctx := r.Context()
	if s.tracing != nil {
		var span trace.Span
		ctx, span = s.tracing.Start(ctx, "chat.route")
		defer span.End()
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable request body"})
		return
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil || !result.Valid() {
		details := "malformed JSON"
		if err == nil {
			parts := make([]string, 0, len(result.Errors()))
			for _, re := range result.Errors() {
				parts = append(parts, re.String())
			}
			details = strings.Join(parts, "; ")
		}
		stdErr := stderrors.NewInvalidRequestError(details)
		s.logger.Warn("chat request rejected", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "⚠️ Invalid request.", "details": details})
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "⚠️ Invalid request."})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"reply": "⚠️ No message received. Please try again."})
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	res, err := s.chat.Route(ctx, conversationID, req.Message)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"reply": "⚠️ No message received. Please try again."})
		return
	}

	if s.obs != nil {
		s.obs.RecordMessageProcessed(ctx, res.Branch)
		s.obs.RecordMessageDuration(ctx, time.Since(start), res.Branch)
	}

	status := http.StatusOK
	if res.Failed {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, chatResponse{ConversationID: conversationID, Replies: res.Replies})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "conversationId is required"})
		return
	}

	history, err := s.history.History(r.Context(), conversationID, s.historyLimit)
	if err != nil {
		stdErr := stderrors.AsStandard(err)
		s.logger.Error("history fetch failed", map[string]interface{}{
			"conversationId": conversationID,
			"errorCode":      string(stdErr.Code),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "⚠️ Unable to retrieve history."})
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
