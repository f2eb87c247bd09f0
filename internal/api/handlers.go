package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wnt/pollhub/internal/logger"
	"github.com/wnt/pollhub/internal/models"
	"github.com/wnt/pollhub/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Polls())
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	poll, ok := s.store.Poll(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "poll not found")
		return
	}
	s.writeJSON(w, http.StatusOK, poll)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var input models.CreatePollInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.store.CreatePoll(r.Context(), input)
	if err != nil {
		if store.IsQuotaError(err) {
			s.writeError(w, http.StatusForbidden, err.Error())
			return
		}
		switch {
		case errors.Is(err, store.ErrQuestionRequired),
			errors.Is(err, store.ErrTooFewOptions),
			errors.Is(err, store.ErrAddressRequired):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error().Err(err).Msg("Failed to create poll")
			s.writeError(w, http.StatusInternalServerError, "failed to create poll")
		}
		return
	}

	poll, _ := s.store.Poll(id)
	s.writeJSON(w, http.StatusCreated, poll)
}

type voteRequest struct {
	Address  string `json:"address"`
	OptionID string `json:"optionId"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	pollID := mux.Vars(r)["id"]

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.Vote(r.Context(), req.Address, pollID, req.OptionID); err != nil {
		switch {
		case errors.Is(err, store.ErrPollNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, store.ErrOptionNotFound):
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, store.ErrAddressRequired):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			pollLogger := logger.WithPoll(s.logger, pollID)
			pollLogger.Error().Err(err).Msg("Failed to record vote")
			s.writeError(w, http.StatusInternalServerError, "failed to record vote")
		}
		return
	}

	poll, _ := s.store.Poll(pollID)
	s.writeJSON(w, http.StatusOK, poll)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	profile, ok := s.store.Profile(address)
	if !ok {
		s.writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

type upsertProfileRequest struct {
	DisplayName string `json:"displayName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	var req upsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.store.EnsureProfile(r.Context(), address)
	if err != nil {
		if errors.Is(err, store.ErrAddressRequired) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("Failed to ensure profile")
		s.writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	if req.DisplayName != "" {
		profile.DisplayName = req.DisplayName
	}
	profile.Bio = req.Bio
	profile.AvatarURL = req.AvatarURL

	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		s.logger.Error().Err(err).Msg("Failed to upsert profile")
		s.writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	info := s.engine.LevelFor(s.store.State(), address)
	s.writeJSON(w, http.StatusOK, info)
}

type mintRequest struct {
	Address string `json:"address"`
}

func (s *Server) handleMintCreatorPass(w http.ResponseWriter, r *http.Request) {
	if s.adminAddr == "" || r.Header.Get("X-Admin-Address") != s.adminAddr {
		s.writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.MintCreatorPass(r.Context(), req.Address); err != nil {
		if errors.Is(err, store.ErrAddressRequired) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		walletLogger := logger.WithWallet(s.logger, req.Address)
		walletLogger.Error().Err(err).Msg("Failed to mint creator pass")
		s.writeError(w, http.StatusInternalServerError, "failed to mint creator pass")
		return
	}

	profile, _ := s.store.Profile(req.Address)
	s.writeJSON(w, http.StatusOK, profile)
}
