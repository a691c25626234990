package domain

// Candidate is ledger-owned. Vote counts are incremented by the contract
// itself; off-chain code only ever reads them.
type Candidate struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Party     string `json:"party"`
	VoteCount uint64 `json:"vote_count"`
}

// CandidateResult is a candidate's final tally inside an archived snapshot.
type CandidateResult struct {
	CandidateID uint64 `json:"candidate_id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	VoteCount   uint64 `json:"vote_count"`
}
