package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/votechain/backend/internal/core/domain"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Kind: kind, Message: message}})
}

// writeServiceError maps domain errors onto the wire. Ledger rejections
// carry the contract's message verbatim.
func writeServiceError(w http.ResponseWriter, err error) {
	if rej, ok := domain.AsLedgerRejection(err); ok {
		writeError(w, http.StatusConflict, "ledger_rejection", rej.Reason)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		writeError(w, http.StatusForbidden, "not_registered", err.Error())
	case errors.Is(err, domain.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, domain.ErrVoterNotFound),
		errors.Is(err, domain.ErrCandidateNotFound),
		errors.Is(err, domain.ErrVoteNotFound),
		errors.Is(err, domain.ErrSnapshotNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrLedgerUnavailable):
		writeError(w, http.StatusBadGateway, "transient_network", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", domain.ErrInternal.Error())
	}
}
