package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/votechain/backend/internal/core/domain"
)

// VoterRepository holds the local registration mirror. The ledger stays the
// value of record; these rows self-heal through the event monitor.
type VoterRepository interface {
	GetByAddress(ctx context.Context, addr common.Address) (*domain.Voter, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Voter, error)
	Upsert(ctx context.Context, voter *domain.Voter) error
	SetRegistered(ctx context.Context, addr common.Address, registered bool) error
	SetVoted(ctx context.Context, addr common.Address, candidateID uint64) error
	ClearRegistrations(ctx context.Context) error
	List(ctx context.Context) ([]*domain.Voter, error)
}

type RegisterVoterInput struct {
	UserID  uuid.UUID
	Address common.Address
}

type VoterService interface {
	RegisterVoter(ctx context.Context, input RegisterVoterInput) (*domain.TxReceipt, error)
	RegisterVoters(ctx context.Context, inputs []RegisterVoterInput) (*domain.TxReceipt, error)
	// Status re-reads the ledger; the mirror is never used to answer it.
	Status(ctx context.Context, addr common.Address) (*domain.VoterStatus, error)
	// Voters lists the local mirror rows, for administrative inspection.
	Voters(ctx context.Context) ([]*domain.Voter, error)
}
