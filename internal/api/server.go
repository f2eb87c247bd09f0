package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wnt/pollhub/internal/broadcast"
	"github.com/wnt/pollhub/internal/gamification"
	"github.com/wnt/pollhub/internal/store"
)

// Server exposes the poll store over HTTP and WebSocket.
type Server struct {
	store       *store.Store
	engine      *gamification.Engine
	broadcaster broadcast.Broadcaster
	chain       *ChainDeps
	adminAddr   string
	logger      zerolog.Logger
	httpServer  *http.Server
}

// New creates an API server. adminAddr gates the admin endpoints; an
// empty value disables them. chainDeps may be nil, which disables the
// /api/chain routes.
func New(st *store.Store, engine *gamification.Engine, b broadcast.Broadcaster, chainDeps *ChainDeps, adminAddr string, port int, logger zerolog.Logger) *Server {
	s := &Server{
		store:       st,
		engine:      engine,
		broadcaster: b,
		chain:       chainDeps,
		adminAddr:   adminAddr,
		logger:      logger.With().Str("component", "api").Logger(),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/polls", s.handleListPolls).Methods("GET")
	api.HandleFunc("/polls", s.handleCreatePoll).Methods("POST")
	api.HandleFunc("/polls/{id}", s.handleGetPoll).Methods("GET")
	api.HandleFunc("/polls/{id}/votes", s.handleVote).Methods("POST")
	api.HandleFunc("/profiles/{address}", s.handleGetProfile).Methods("GET")
	api.HandleFunc("/profiles/{address}", s.handleUpsertProfile).Methods("POST")
	api.HandleFunc("/profiles/{address}/level", s.handleLevel).Methods("GET")
	api.HandleFunc("/admin/creator-pass", s.handleMintCreatorPass).Methods("POST")
	api.HandleFunc("/chain/surveys/{address}", s.handleChainSurveys).Methods("GET")
	api.HandleFunc("/chain/profiles/{address}", s.handleChainProfile).Methods("GET")
	api.HandleFunc("/chain/transactions/create-survey", s.handleBuildCreateSurvey).Methods("POST")
	api.HandleFunc("/chain/transactions/mint-badge", s.handleBuildMintBadge).Methods("POST")
	api.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	return r
}

// Start runs the HTTP server until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting API server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the router, used by tests to serve requests without a
// listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
