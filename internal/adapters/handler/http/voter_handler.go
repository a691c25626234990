package http

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/votechain/backend/internal/core/ports"
)

type VoterHandler struct {
	service ports.VoterService
}

func NewVoterHandler(service ports.VoterService) *VoterHandler {
	return &VoterHandler{service: service}
}

type registerVoterRequest struct {
	UserID  string `json:"user_id"`
	Address string `json:"address"`
}

func (h *VoterHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req registerVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	input, ok := parseRegisterInput(w, req)
	if !ok {
		return
	}

	receipt, err := h.service.RegisterVoter(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *VoterHandler) RegisterVoters(w http.ResponseWriter, r *http.Request) {
	var reqs []registerVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "at least one voter is required")
		return
	}

	inputs := make([]ports.RegisterVoterInput, 0, len(reqs))
	for _, req := range reqs {
		input, ok := parseRegisterInput(w, req)
		if !ok {
			return
		}
		inputs = append(inputs, input)
	}

	receipt, err := h.service.RegisterVoters(r.Context(), inputs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
	voters, err := h.service.Voters(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voters)
}

func (h *VoterHandler) Status(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "address")
	if !common.IsHexAddress(raw) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid ledger address")
		return
	}

	status, err := h.service.Status(r.Context(), common.HexToAddress(raw))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func parseRegisterInput(w http.ResponseWriter, req registerVoterRequest) (ports.RegisterVoterInput, bool) {
	if !common.IsHexAddress(req.Address) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid ledger address")
		return ports.RegisterVoterInput{}, false
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
		return ports.RegisterVoterInput{}, false
	}
	return ports.RegisterVoterInput{UserID: userID, Address: common.HexToAddress(req.Address)}, true
}
