package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLedgerUnavailable   = errors.New("ledger endpoint unreachable")
	ErrDuplicateVoteRecord = errors.New("vote record already exists for transaction")
	ErrVoteNotFound        = errors.New("vote record not found")
	ErrSnapshotExists      = errors.New("election already archived")
	ErrElectionNumberTaken = errors.New("election number already allocated")
	ErrSnapshotNotFound    = errors.New("election snapshot not found")
	ErrVoterNotFound       = errors.New("voter not found")
	ErrNotRegistered       = errors.New("voter is not registered")
	ErrAlreadyVoted        = errors.New("voter has already voted")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrInternal            = errors.New("internal server error")
)

// LedgerRejection is a contract-level revert. The reason is the contract's
// message verbatim; callers map it to domain outcomes and must not retry.
type LedgerRejection struct {
	Reason string
}

func (e *LedgerRejection) Error() string {
	return fmt.Sprintf("ledger rejected transaction: %s", e.Reason)
}

// AsLedgerRejection unwraps err into a LedgerRejection if there is one.
func AsLedgerRejection(err error) (*LedgerRejection, bool) {
	var rej *LedgerRejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
