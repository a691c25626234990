package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger-emitted events observed by the monitor. Each carries the block
// metadata of the log it was unpacked from.

type EventMeta struct {
	TxHash      common.Hash
	BlockNumber uint64
}

type VoterRegisteredEvent struct {
	Voter common.Address
	Meta  EventMeta
}

type VoteCastEvent struct {
	Voter         common.Address
	CandidateID   uint64
	CandidateName string
	Meta          EventMeta
}

type ElectionStartedEvent struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Meta      EventMeta
}

type ElectionEndedEvent struct {
	Name       string
	TotalVotes uint64
	Meta       EventMeta
}

type CandidateAddedEvent struct {
	CandidateID uint64
	Name        string
	Party       string
	Meta        EventMeta
}

type AdminChangedEvent struct {
	PreviousAdmin common.Address
	NewAdmin      common.Address
	Meta          EventMeta
}
