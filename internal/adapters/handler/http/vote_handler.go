package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/votechain/backend/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

type castVoteRequest struct {
	UserID      string `json:"user_id"`
	Address     string `json:"address"`
	PrivateKey  string `json:"private_key"`
	CandidateID uint64 `json:"candidate_id"`
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.PrivateKey == "" || req.CandidateID == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "private_key and candidate_id are required")
		return
	}

	input := ports.CastVoteInput{
		VoterAddress: common.HexToAddress(req.Address),
		VoterKeyHex:  req.PrivateKey,
		CandidateID:  req.CandidateID,
	}
	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
			return
		}
		input.UserID = userID
	}

	result, err := h.service.CastVote(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *VoteHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	votes, err := h.service.ListVotes(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

func (h *VoteHandler) VoteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.VoteStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
