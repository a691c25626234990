package ports

import (
	"context"
	"crypto/ecdsa"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/votechain/backend/internal/core/domain"
)

// LedgerGateway is the sole point of contact with the election contract.
// Read operations are pure queries and fail only on connectivity problems.
// Write operations submit a transaction and block until it is mined,
// returning the confirmation receipt. The gateway performs no retries;
// timeout and retry policy belong to the caller via ctx.
type LedgerGateway interface {
	GetCandidates(ctx context.Context) ([]domain.Candidate, error)
	GetCandidate(ctx context.Context, id uint64) (*domain.Candidate, error)
	GetElectionState(ctx context.Context) (*domain.ElectionState, error)
	GetVoterStatus(ctx context.Context, addr common.Address) (*domain.VoterStatus, error)
	GetResults(ctx context.Context) ([]domain.Candidate, error)

	AddCandidate(ctx context.Context, name, party string) (*domain.TxReceipt, error)
	RegisterVoter(ctx context.Context, addr common.Address) (*domain.TxReceipt, error)
	RegisterVoters(ctx context.Context, addrs []common.Address) (*domain.TxReceipt, error)
	StartElection(ctx context.Context, name string, duration time.Duration) (*domain.TxReceipt, error)
	EndElection(ctx context.Context) (*domain.TxReceipt, error)
	ResetElection(ctx context.Context) (*domain.TxReceipt, error)
	TransferAdmin(ctx context.Context, newAdmin common.Address) (*domain.TxReceipt, error)

	// CastVote signs with the voter's own key instead of the administrative
	// identity every other write uses.
	CastVote(ctx context.Context, voterKey *ecdsa.PrivateKey, candidateID uint64) (*domain.TxReceipt, error)

	// TxContext resolves a confirmed transaction's receipt and its block
	// timestamp. The event ingestion path uses it to fill audit metadata.
	TxContext(ctx context.Context, txHash common.Hash) (*domain.TxReceipt, time.Time, error)
}

// Subscription is a live event subscription. Unsubscribe detaches it
// synchronously; after it returns no further events are delivered.
type Subscription interface {
	Unsubscribe()
	Err() <-chan error
}

// LedgerEventSource exposes the six contract event streams. Delivery order
// within one stream matches emission order on the ledger; nothing is
// guaranteed across streams.
type LedgerEventSource interface {
	WatchVoterRegistered(ctx context.Context) (<-chan domain.VoterRegisteredEvent, Subscription, error)
	WatchVoteCast(ctx context.Context) (<-chan domain.VoteCastEvent, Subscription, error)
	WatchElectionStarted(ctx context.Context) (<-chan domain.ElectionStartedEvent, Subscription, error)
	WatchElectionEnded(ctx context.Context) (<-chan domain.ElectionEndedEvent, Subscription, error)
	WatchCandidateAdded(ctx context.Context) (<-chan domain.CandidateAddedEvent, Subscription, error)
	WatchAdminChanged(ctx context.Context) (<-chan domain.AdminChangedEvent, Subscription, error)
}
