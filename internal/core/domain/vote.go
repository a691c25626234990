package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// VoteRecord is the off-chain audit record of one confirmed vote
// transaction. TxHash is unique: exactly one record exists per confirmed
// vote no matter which ingestion path observes it first.
type VoteRecord struct {
	ID             uuid.UUID      `json:"id"`
	VoterAddress   common.Address `json:"voter_address"`
	UserID         *uuid.UUID     `json:"user_id,omitempty"`
	CandidateID    uint64         `json:"candidate_id"`
	CandidateName  string         `json:"candidate_name"`
	CandidateParty string         `json:"candidate_party"`
	TxHash         common.Hash    `json:"tx_hash"`
	BlockNumber    uint64         `json:"block_number"`
	BlockTime      time.Time      `json:"block_time"`
	GasUsed        uint64         `json:"gas_used"`
	ElectionName   string         `json:"election_name"`
	Verified       bool           `json:"verified"`
	CreatedAt      time.Time      `json:"created_at"`
}

// VoteStats is an on-demand projection over the vote records. These are
// read models computed from the record set, never maintained counters.
type VoteStats struct {
	Total        int64            `json:"total"`
	UniqueVoters int64            `json:"unique_voters"`
	ByCandidate  map[uint64]int64 `json:"by_candidate"`
	ByHour       map[string]int64 `json:"by_hour"`
}
