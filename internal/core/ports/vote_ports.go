package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/votechain/backend/internal/core/domain"
)

// VoteRepository is the append-only audit store of confirmed votes. The
// uniqueness of TxHash is its core correctness guarantee: InsertIfAbsent is
// a single atomic operation and the losing side of the dual-writer race
// gets domain.ErrDuplicateVoteRecord.
type VoteRepository interface {
	InsertIfAbsent(ctx context.Context, vote *domain.VoteRecord) error
	GetByTxHash(ctx context.Context, txHash common.Hash) (*domain.VoteRecord, error)
	List(ctx context.Context, limit, offset int) ([]*domain.VoteRecord, error)
	Stats(ctx context.Context) (*domain.VoteStats, error)
}

type CastVoteInput struct {
	UserID       uuid.UUID
	VoterAddress common.Address
	VoterKeyHex  string
	CandidateID  uint64
}

type CastVoteResult struct {
	Receipt     *domain.TxReceipt `json:"receipt"`
	CandidateID uint64            `json:"candidate_id"`
}

type VoteService interface {
	CastVote(ctx context.Context, input CastVoteInput) (*CastVoteResult, error)
	ListVotes(ctx context.Context, limit, offset int) ([]*domain.VoteRecord, error)
	VoteStats(ctx context.Context) (*domain.VoteStats, error)
}
