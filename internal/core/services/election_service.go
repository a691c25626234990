package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

type electionService struct {
	gateway   ports.LedgerGateway
	voterRepo ports.VoterRepository
	archive   ports.ArchiveService
	logger    *slog.Logger
}

func NewElectionService(
	gateway ports.LedgerGateway,
	voterRepo ports.VoterRepository,
	archive ports.ArchiveService,
	logger *slog.Logger,
) ports.ElectionService {
	return &electionService{
		gateway:   gateway,
		voterRepo: voterRepo,
		archive:   archive,
		logger:    logger,
	}
}

func (s *electionService) State(ctx context.Context) (*domain.ElectionState, error) {
	return s.gateway.GetElectionState(ctx)
}

func (s *electionService) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	return s.gateway.GetCandidates(ctx)
}

func (s *electionService) Results(ctx context.Context) ([]domain.Candidate, error) {
	return s.gateway.GetResults(ctx)
}

func (s *electionService) AddCandidate(ctx context.Context, name, party string) (*domain.TxReceipt, error) {
	if name == "" {
		return nil, fmt.Errorf("candidate name is required")
	}
	return s.gateway.AddCandidate(ctx, name, party)
}

func (s *electionService) Start(ctx context.Context, input ports.StartElectionInput) (*domain.TxReceipt, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("election name is required")
	}
	if input.Duration <= 0 {
		return nil, fmt.Errorf("election duration must be positive")
	}
	return s.gateway.StartElection(ctx, input.Name, input.Duration)
}

// End concludes the election on the ledger. Archival itself is driven by
// the election-ended event once the monitor observes it.
func (s *electionService) End(ctx context.Context) (*domain.TxReceipt, error) {
	return s.gateway.EndElection(ctx)
}

// Reset archives the concluded election, wipes the contract state and
// clears every local registration flag. Archival failure is reported as a
// warning on the result; it never blocks the reset.
func (s *electionService) Reset(ctx context.Context, requestedBy string) (*ports.ResetResult, error) {
	result := &ports.ResetResult{}

	outcome, err := s.archive.Archive(ctx, requestedBy)
	if err != nil {
		s.logger.Warn("archival before reset failed, proceeding with reset",
			"requested_by", requestedBy, "error", err)
		result.ArchiveWarning = fmt.Sprintf("election history was not archived: %v", err)
	} else {
		result.Archive = outcome
	}

	receipt, err := s.gateway.ResetElection(ctx)
	if err != nil {
		return nil, err
	}
	result.Receipt = receipt

	if err := s.voterRepo.ClearRegistrations(ctx); err != nil {
		return nil, fmt.Errorf("reset confirmed on ledger but clearing the voter mirror failed: %w", err)
	}

	s.logger.Info("election reset", "requested_by", requestedBy, "tx_hash", receipt.TxHash)
	return result, nil
}

func (s *electionService) TransferAdmin(ctx context.Context, newAdmin common.Address) (*domain.TxReceipt, error) {
	if newAdmin == (common.Address{}) {
		return nil, fmt.Errorf("new admin address is required")
	}
	receipt, err := s.gateway.TransferAdmin(ctx, newAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("contract admin transferred", "new_admin", newAdmin.Hex(), "tx_hash", receipt.TxHash)
	return receipt, nil
}
