package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wnt/pollhub/internal/chain"
)

// ChainDeps bundles the optional on-chain collaborators. When nil the
// /api/chain routes respond 503.
type ChainDeps struct {
	Surveys  *chain.SurveyService
	Profiles *chain.ProfileService
	Builder  *chain.Builder
}

func (s *Server) chainEnabled(w http.ResponseWriter) bool {
	if s.chain == nil {
		s.writeError(w, http.StatusServiceUnavailable, "chain integration not configured")
		return false
	}
	return true
}

func (s *Server) handleChainSurveys(w http.ResponseWriter, r *http.Request) {
	if !s.chainEnabled(w) {
		return
	}
	address := mux.Vars(r)["address"]
	if !chain.IsValidAddress(address) {
		s.writeError(w, http.StatusBadRequest, "invalid chain address")
		return
	}

	surveys, err := s.chain.Surveys.OwnedSurveys(r.Context(), address)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch on-chain surveys")
		s.writeError(w, http.StatusBadGateway, "failed to fetch on-chain surveys")
		return
	}
	s.writeJSON(w, http.StatusOK, surveys)
}

func (s *Server) handleChainProfile(w http.ResponseWriter, r *http.Request) {
	if !s.chainEnabled(w) {
		return
	}
	address := mux.Vars(r)["address"]
	if !chain.IsValidAddress(address) {
		s.writeError(w, http.StatusBadRequest, "invalid chain address")
		return
	}

	profile, err := s.chain.Profiles.Profile(r.Context(), address)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch on-chain profile")
		s.writeError(w, http.StatusBadGateway, "failed to fetch on-chain profile")
		return
	}
	if profile == nil {
		s.writeError(w, http.StatusNotFound, "profile not found on chain")
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

// handleBuildCreateSurvey returns the unsigned transaction for a survey
// creation. The caller's wallet signs and submits it; the server never
// holds keys.
func (s *Server) handleBuildCreateSurvey(w http.ResponseWriter, r *http.Request) {
	if !s.chainEnabled(w) {
		return
	}

	var req struct {
		chain.SurveyParams
		BadgeID string `json:"badgeId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, "survey title is required")
		return
	}

	var tx *chain.Transaction
	if req.BadgeID != "" {
		tx = s.chain.Builder.CreateSurveyWithBadge(req.SurveyParams, req.BadgeID)
	} else {
		tx = s.chain.Builder.CreateSurvey(req.SurveyParams)
	}
	s.writeJSON(w, http.StatusOK, tx)
}

// handleBuildMintBadge returns the unsigned admin transaction minting a
// creator badge for a recipient.
func (s *Server) handleBuildMintBadge(w http.ResponseWriter, r *http.Request) {
	if !s.chainEnabled(w) {
		return
	}
	if s.adminAddr == "" || r.Header.Get("X-Admin-Address") != s.adminAddr {
		s.writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req struct {
		Tier      uint8  `json:"tier"`
		Recipient string `json:"recipient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !chain.IsValidAddress(req.Recipient) {
		s.writeError(w, http.StatusBadRequest, "invalid recipient address")
		return
	}

	s.writeJSON(w, http.StatusOK, s.chain.Builder.MintCreatorBadge(req.Tier, req.Recipient))
}
