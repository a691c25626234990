package domain

import "time"

// WinnerSummary describes the outcome of a concluded election. A draw lists
// every tied candidate; an election with zero votes has no candidates and a
// zero count.
type WinnerSummary struct {
	IsDraw     bool              `json:"is_draw"`
	Candidates []CandidateResult `json:"candidates"`
	VoteCount  uint64            `json:"vote_count"`
}

// ElectionSnapshot is an immutable historical record of a concluded
// election. At most one exists per (Name, StartTime, EndTime); election
// numbers are assigned sequentially from 1. Never mutated after creation.
type ElectionSnapshot struct {
	ElectionNumber   uint64            `json:"election_number"`
	Name             string            `json:"name"`
	StartTime        time.Time         `json:"start_time"`
	EndTime          time.Time         `json:"end_time"`
	TotalVotes       uint64            `json:"total_votes"`
	TotalCandidates  uint64            `json:"total_candidates"`
	RegisteredVoters uint64            `json:"registered_voters"`
	TurnoutPct       int               `json:"turnout_pct"`
	Results          []CandidateResult `json:"results"`
	Winner           WinnerSummary     `json:"winner"`
	ArchivedAt       time.Time         `json:"archived_at"`
	ArchivedBy       string            `json:"archived_by"`
}

// ArchiveOutcome reports what an archival attempt did. A repeat call on an
// already-archived election is not an error; it comes back with
// AlreadyExists set and the original election number.
type ArchiveOutcome struct {
	Archived       bool   `json:"archived"`
	AlreadyExists  bool   `json:"already_exists,omitempty"`
	ElectionNumber uint64 `json:"election_number,omitempty"`
}

// Turnout computes the rounded turnout percentage, 0 when nobody is
// registered.
func Turnout(totalVotes, registeredVoters uint64) int {
	if registeredVoters == 0 {
		return 0
	}
	return int((float64(totalVotes)/float64(registeredVoters))*100 + 0.5)
}
