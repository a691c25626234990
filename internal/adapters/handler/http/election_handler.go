package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/votechain/backend/internal/core/ports"
)

type ElectionHandler struct {
	service ports.ElectionService
}

func NewElectionHandler(service ports.ElectionService) *ElectionHandler {
	return &ElectionHandler{service: service}
}

func (h *ElectionHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *ElectionHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.service.Candidates(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (h *ElectionHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type addCandidateRequest struct {
	Name  string `json:"name"`
	Party string `json:"party"`
}

func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	var req addCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "candidate name is required")
		return
	}

	receipt, err := h.service.AddCandidate(r.Context(), req.Name, req.Party)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

type startElectionRequest struct {
	Name            string `json:"name"`
	DurationMinutes int64  `json:"duration_minutes"`
}

func (h *ElectionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Name == "" || req.DurationMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and a positive duration_minutes are required")
		return
	}

	receipt, err := h.service.Start(r.Context(), ports.StartElectionInput{
		Name:     req.Name,
		Duration: time.Duration(req.DurationMinutes) * time.Minute,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *ElectionHandler) End(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.End(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

type resetRequest struct {
	RequestedBy string `json:"requested_by"`
}

func (h *ElectionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.RequestedBy == "" {
		req.RequestedBy = "admin"
	}

	result, err := h.service.Reset(r.Context(), req.RequestedBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type transferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

func (h *ElectionHandler) TransferAdmin(w http.ResponseWriter, r *http.Request) {
	var req transferAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if !common.IsHexAddress(req.NewAdmin) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid ledger address")
		return
	}

	receipt, err := h.service.TransferAdmin(r.Context(), common.HexToAddress(req.NewAdmin))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
