package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

// numberAllocRetries bounds re-allocation when a concurrent archiver of a
// different election wins the same election number.
const numberAllocRetries = 3

type archiveService struct {
	gateway   ports.LedgerGateway
	snapshots ports.SnapshotRepository
	logger    *slog.Logger

	// Serializes near-simultaneous archival triggers in-process (end
	// followed immediately by reset). The unique snapshot identity index
	// is the cross-process backstop.
	mu sync.Mutex
}

func NewArchiveService(
	gateway ports.LedgerGateway,
	snapshots ports.SnapshotRepository,
	logger *slog.Logger,
) ports.ArchiveService {
	return &archiveService{
		gateway:   gateway,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Archive persists an immutable snapshot of the concluded election. It is
// idempotent: repeat calls on the same election identity report
// AlreadyExists with the original election number.
func (s *archiveService) Archive(ctx context.Context, archivedBy string) (*domain.ArchiveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.gateway.GetElectionState(ctx)
	if err != nil {
		return nil, fmt.Errorf("read election state: %w", err)
	}

	if state.Phase != domain.PhaseEnded || state.TotalVotes == 0 {
		s.logger.Info("nothing to archive",
			"phase", state.Phase.String(), "total_votes", state.TotalVotes)
		return &domain.ArchiveOutcome{Archived: false}, nil
	}

	existing, err := s.snapshots.FindByIdentity(ctx, state.Name, state.StartTime, state.EndTime)
	if err != nil && !errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("snapshot lookup: %w", err)
	}
	if existing != nil {
		return &domain.ArchiveOutcome{
			Archived:       false,
			AlreadyExists:  true,
			ElectionNumber: existing.ElectionNumber,
		}, nil
	}

	candidates, err := s.gateway.GetCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	snap := &domain.ElectionSnapshot{
		Name:             state.Name,
		StartTime:        state.StartTime,
		EndTime:          state.EndTime,
		TotalVotes:       state.TotalVotes,
		TotalCandidates:  uint64(len(candidates)),
		RegisteredVoters: state.RegisteredVoters,
		TurnoutPct:       domain.Turnout(state.TotalVotes, state.RegisteredVoters),
		Results:          candidateResults(candidates),
		Winner:           computeWinner(candidates),
		ArchivedAt:       time.Now().UTC(),
		ArchivedBy:       archivedBy,
	}

	for attempt := 0; ; attempt++ {
		maxNumber, err := s.snapshots.MaxElectionNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("allocate election number: %w", err)
		}
		snap.ElectionNumber = maxNumber + 1

		err = s.snapshots.Insert(ctx, snap)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrSnapshotExists) {
			// Another writer archived the same election between our
			// lookup and insert. Report its number.
			winner, lookupErr := s.snapshots.FindByIdentity(ctx, state.Name, state.StartTime, state.EndTime)
			if lookupErr != nil {
				return nil, fmt.Errorf("snapshot lookup after conflict: %w", lookupErr)
			}
			return &domain.ArchiveOutcome{
				Archived:       false,
				AlreadyExists:  true,
				ElectionNumber: winner.ElectionNumber,
			}, nil
		}
		if errors.Is(err, domain.ErrElectionNumberTaken) && attempt < numberAllocRetries {
			// A concurrent archiver of a different election took this
			// number first; re-read the maximum and try again.
			continue
		}
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	s.logger.Info("election archived",
		"election_number", snap.ElectionNumber,
		"name", state.Name,
		"total_votes", state.TotalVotes,
		"turnout_pct", snap.TurnoutPct,
		"is_draw", snap.Winner.IsDraw)

	return &domain.ArchiveOutcome{Archived: true, ElectionNumber: snap.ElectionNumber}, nil
}

// computeWinner is a pure projection of the ledger-authoritative tallies
// read just above. It must stay downstream of the gateway read and never
// become a second source of truth.
func computeWinner(candidates []domain.Candidate) domain.WinnerSummary {
	var max uint64
	for _, c := range candidates {
		if c.VoteCount > max {
			max = c.VoteCount
		}
	}
	if max == 0 {
		return domain.WinnerSummary{Candidates: []domain.CandidateResult{}}
	}

	var tied []domain.CandidateResult
	for _, c := range candidates {
		if c.VoteCount == max {
			tied = append(tied, toResult(c))
		}
	}
	return domain.WinnerSummary{
		IsDraw:     len(tied) > 1,
		Candidates: tied,
		VoteCount:  max,
	}
}

func toResult(c domain.Candidate) domain.CandidateResult {
	return domain.CandidateResult{
		CandidateID: c.ID,
		Name:        c.Name,
		Party:       c.Party,
		VoteCount:   c.VoteCount,
	}
}

func candidateResults(candidates []domain.Candidate) []domain.CandidateResult {
	results := make([]domain.CandidateResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, toResult(c))
	}
	return results
}
