package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Voter is the local mirror of a voter's on-ledger flags. The ledger is
// authoritative; Registered and HasVoted are a cache reconciled by the event
// monitor and may lag a pending confirmation.
type Voter struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	Address          common.Address `json:"address"`
	Registered       bool           `json:"registered"`
	HasVoted         bool           `json:"has_voted"`
	VotedCandidateID *uint64        `json:"voted_candidate_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// VoterStatus is a ledger-backed status read, returned by user-visible
// status queries. Never served from the mirror.
type VoterStatus struct {
	Address          common.Address `json:"address"`
	Registered       bool           `json:"registered"`
	HasVoted         bool           `json:"has_voted"`
	VotedCandidateID uint64         `json:"voted_candidate_id"`
}
