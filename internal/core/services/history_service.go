package services

import (
	"context"
	"log/slog"

	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

type historyService struct {
	snapshots ports.SnapshotRepository
	logger    *slog.Logger
}

func NewHistoryService(snapshots ports.SnapshotRepository, logger *slog.Logger) ports.HistoryService {
	return &historyService{snapshots: snapshots, logger: logger}
}

func (s *historyService) List(ctx context.Context) ([]*domain.ElectionSnapshot, error) {
	return s.snapshots.List(ctx)
}

func (s *historyService) Get(ctx context.Context, number uint64) (*domain.ElectionSnapshot, error) {
	return s.snapshots.GetByNumber(ctx, number)
}

// Delete removes an archived snapshot. This is a deliberate administrative
// action, never part of the normal lifecycle, so it is logged loudly.
func (s *historyService) Delete(ctx context.Context, number uint64) error {
	if err := s.snapshots.Delete(ctx, number); err != nil {
		return err
	}
	s.logger.Warn("election snapshot deleted", "election_number", number)
	return nil
}
