package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

type voteService struct {
	gateway   ports.LedgerGateway
	voterRepo ports.VoterRepository
	voteRepo  ports.VoteRepository
	logger    *slog.Logger
}

func NewVoteService(
	gateway ports.LedgerGateway,
	voterRepo ports.VoterRepository,
	voteRepo ports.VoteRepository,
	logger *slog.Logger,
) ports.VoteService {
	return &voteService{
		gateway:   gateway,
		voterRepo: voterRepo,
		voteRepo:  voteRepo,
		logger:    logger,
	}
}

// CastVote is the synchronous ingestion path. It signs the vote with the
// voter's own key, waits for confirmation and records the audit row. The
// event monitor observes the same transaction independently; whichever
// insert loses the race on tx hash is treated as success.
func (s *voteService) CastVote(ctx context.Context, input ports.CastVoteInput) (*ports.CastVoteResult, error) {
	voterKey, err := crypto.HexToECDSA(strings.TrimPrefix(input.VoterKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid voter key: %w", err)
	}

	addr := crypto.PubkeyToAddress(voterKey.PublicKey)
	if input.VoterAddress != (common.Address{}) && input.VoterAddress != addr {
		return nil, fmt.Errorf("voter key does not match address %s", input.VoterAddress.Hex())
	}

	// Mirror gatekeeping only. The ledger remains the arbiter; an unknown
	// address is let through and the contract decides.
	if voter, err := s.voterRepo.GetByAddress(ctx, addr); err == nil {
		if !voter.Registered {
			return nil, domain.ErrNotRegistered
		}
		if voter.HasVoted {
			return nil, domain.ErrAlreadyVoted
		}
	} else if !errors.Is(err, domain.ErrVoterNotFound) {
		return nil, fmt.Errorf("mirror lookup: %w", err)
	}

	candidate, err := s.gateway.GetCandidate(ctx, input.CandidateID)
	if err != nil {
		return nil, err
	}
	state, err := s.gateway.GetElectionState(ctx)
	if err != nil {
		return nil, err
	}

	receipt, err := s.gateway.CastVote(ctx, voterKey, input.CandidateID)
	if err != nil {
		return nil, err
	}

	// The audit row carries the block timestamp, not the insert time, so
	// the record is identical no matter which writer stores it. The vote
	// is confirmed either way; if the header read fails, wall clock
	// stands in rather than failing the request.
	blockTime := time.Now().UTC()
	if _, resolved, err := s.gateway.TxContext(ctx, common.HexToHash(receipt.TxHash)); err == nil {
		blockTime = resolved
	} else {
		s.logger.Warn("could not resolve block time for confirmed vote",
			"tx_hash", receipt.TxHash, "error", err)
	}

	record := &domain.VoteRecord{
		ID:             uuid.New(),
		VoterAddress:   addr,
		CandidateID:    candidate.ID,
		CandidateName:  candidate.Name,
		CandidateParty: candidate.Party,
		TxHash:         common.HexToHash(receipt.TxHash),
		BlockNumber:    receipt.BlockNumber,
		BlockTime:      blockTime,
		GasUsed:        receipt.GasUsed,
		ElectionName:   state.Name,
		Verified:       true,
	}
	if input.UserID != uuid.Nil {
		userID := input.UserID
		record.UserID = &userID
	}

	if err := s.voteRepo.InsertIfAbsent(ctx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateVoteRecord) {
			// The event monitor got there first. The vote itself is
			// confirmed, so the caller still sees success.
			s.logger.Debug("vote record already present, event path won the race",
				"tx_hash", receipt.TxHash)
		} else {
			// The transaction is confirmed on the ledger either way; losing
			// the audit row is worth surfacing but not worth failing the vote.
			s.logger.Error("failed to record confirmed vote",
				"tx_hash", receipt.TxHash, "error", err)
		}
	}

	if err := s.voterRepo.SetVoted(ctx, addr, input.CandidateID); err != nil {
		// The mirror self-heals once the vote-cast event arrives.
		s.logger.Warn("failed to update voter mirror after vote",
			"address", addr.Hex(), "error", err)
	}

	return &ports.CastVoteResult{Receipt: receipt, CandidateID: candidate.ID}, nil
}

func (s *voteService) ListVotes(ctx context.Context, limit, offset int) ([]*domain.VoteRecord, error) {
	return s.voteRepo.List(ctx, limit, offset)
}

func (s *voteService) VoteStats(ctx context.Context) (*domain.VoteStats, error) {
	return s.voteRepo.Stats(ctx)
}
