package ports

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/votechain/backend/internal/core/domain"
)

// SnapshotRepository stores immutable election history. Insert must fail
// with domain.ErrSnapshotExists when a snapshot with the same
// (name, startTime, endTime) identity already exists.
type SnapshotRepository interface {
	Insert(ctx context.Context, snap *domain.ElectionSnapshot) error
	FindByIdentity(ctx context.Context, name string, start, end time.Time) (*domain.ElectionSnapshot, error)
	MaxElectionNumber(ctx context.Context) (uint64, error)
	List(ctx context.Context) ([]*domain.ElectionSnapshot, error)
	GetByNumber(ctx context.Context, number uint64) (*domain.ElectionSnapshot, error)
	Delete(ctx context.Context, number uint64) error
}

// ArchiveService produces at most one snapshot per concluded election and
// is safe to call repeatedly.
type ArchiveService interface {
	Archive(ctx context.Context, archivedBy string) (*domain.ArchiveOutcome, error)
}

type StartElectionInput struct {
	Name     string
	Duration time.Duration
}

// ResetResult reports a completed reset. Archival failure during the reset
// flow does not block the reset; it surfaces here as a warning.
type ResetResult struct {
	Receipt        *domain.TxReceipt      `json:"receipt"`
	Archive        *domain.ArchiveOutcome `json:"archive,omitempty"`
	ArchiveWarning string                 `json:"archive_warning,omitempty"`
}

type ElectionService interface {
	State(ctx context.Context) (*domain.ElectionState, error)
	Candidates(ctx context.Context) ([]domain.Candidate, error)
	Results(ctx context.Context) ([]domain.Candidate, error)
	AddCandidate(ctx context.Context, name, party string) (*domain.TxReceipt, error)
	Start(ctx context.Context, input StartElectionInput) (*domain.TxReceipt, error)
	End(ctx context.Context) (*domain.TxReceipt, error)
	Reset(ctx context.Context, requestedBy string) (*ResetResult, error)
	TransferAdmin(ctx context.Context, newAdmin common.Address) (*domain.TxReceipt, error)
}

type HistoryService interface {
	List(ctx context.Context) ([]*domain.ElectionSnapshot, error)
	Get(ctx context.Context, number uint64) (*domain.ElectionSnapshot, error)
	Delete(ctx context.Context, number uint64) error
}
