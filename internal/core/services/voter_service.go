package services

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

type voterService struct {
	gateway   ports.LedgerGateway
	voterRepo ports.VoterRepository
	logger    *slog.Logger
}

func NewVoterService(
	gateway ports.LedgerGateway,
	voterRepo ports.VoterRepository,
	logger *slog.Logger,
) ports.VoterService {
	return &voterService{
		gateway:   gateway,
		voterRepo: voterRepo,
		logger:    logger,
	}
}

func (s *voterService) RegisterVoter(ctx context.Context, input ports.RegisterVoterInput) (*domain.TxReceipt, error) {
	receipt, err := s.gateway.RegisterVoter(ctx, input.Address)
	if err != nil {
		return nil, err
	}
	s.mirrorRegistration(ctx, input)
	return receipt, nil
}

func (s *voterService) RegisterVoters(ctx context.Context, inputs []ports.RegisterVoterInput) (*domain.TxReceipt, error) {
	addrs := make([]common.Address, 0, len(inputs))
	for _, in := range inputs {
		addrs = append(addrs, in.Address)
	}

	receipt, err := s.gateway.RegisterVoters(ctx, addrs)
	if err != nil {
		return nil, err
	}
	for _, in := range inputs {
		s.mirrorRegistration(ctx, in)
	}
	return receipt, nil
}

// Status is the user-visible registration/voting status. It always
// re-reads the ledger; the mirror is never used to answer it.
func (s *voterService) Status(ctx context.Context, addr common.Address) (*domain.VoterStatus, error) {
	return s.gateway.GetVoterStatus(ctx, addr)
}

func (s *voterService) Voters(ctx context.Context) ([]*domain.Voter, error) {
	return s.voterRepo.List(ctx)
}

func (s *voterService) mirrorRegistration(ctx context.Context, input ports.RegisterVoterInput) {
	voter := &domain.Voter{
		ID:         uuid.New(),
		UserID:     input.UserID,
		Address:    input.Address,
		Registered: true,
	}
	if err := s.voterRepo.Upsert(ctx, voter); err != nil {
		// The voter-registered event re-applies this; a failed upsert only
		// widens the staleness window.
		s.logger.Warn("failed to mirror registration",
			"address", input.Address.Hex(), "error", err)
	}
}
