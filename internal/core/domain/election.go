package domain

import "time"

// Phase is the election lifecycle state as enforced by the contract.
type Phase uint8

const (
	PhaseNotStarted Phase = iota
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ElectionState is the contract's current election, read through the gateway.
// The ledger owns it; nothing here is ever written back.
type ElectionState struct {
	Phase            Phase     `json:"phase"`
	Name             string    `json:"name"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	RegisteredVoters uint64    `json:"registered_voters"`
	TotalVotes       uint64    `json:"total_votes"`
	CandidateCount   uint64    `json:"candidate_count"`
}

// TxReceipt summarizes a confirmed ledger transaction.
type TxReceipt struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}
