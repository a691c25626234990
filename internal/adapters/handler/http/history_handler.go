package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/votechain/backend/internal/core/ports"
)

type HistoryHandler struct {
	service ports.HistoryService
}

func NewHistoryHandler(service ports.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	number, ok := electionNumber(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Get(r.Context(), number)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	number, ok := electionNumber(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), number); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func electionNumber(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	number, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 64)
	if err != nil || number == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid election number")
		return 0, false
	}
	return number, true
}
