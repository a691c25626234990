package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) ports.SnapshotRepository {
	return &snapshotRepository{db: db}
}

const (
	uniqueViolation       = pq.ErrorCode("23505")
	electionNumberPrimary = "election_history_pkey"
)

// Insert persists an immutable snapshot. The unique identity constraint
// turns a concurrent archival of the same election into
// domain.ErrSnapshotExists instead of a second row; a collision on the
// election number alone means another archiver took the number for a
// different election, reported as domain.ErrElectionNumberTaken so the
// caller can re-allocate.
func (r *snapshotRepository) Insert(ctx context.Context, snap *domain.ElectionSnapshot) error {
	results, err := json.Marshal(snap.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	winner, err := json.Marshal(snap.Winner)
	if err != nil {
		return fmt.Errorf("marshal winner: %w", err)
	}

	query := `
		INSERT INTO election_history (
			election_number, name, start_time, end_time, total_votes,
			total_candidates, registered_voters, turnout_pct, results, winner,
			archived_at, archived_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = r.db.ExecContext(ctx, query,
		snap.ElectionNumber, snap.Name, snap.StartTime, snap.EndTime,
		snap.TotalVotes, snap.TotalCandidates, snap.RegisteredVoters,
		snap.TurnoutPct, results, winner, snap.ArchivedAt, snap.ArchivedBy,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == electionNumberPrimary {
				return domain.ErrElectionNumberTaken
			}
			return domain.ErrSnapshotExists
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) FindByIdentity(ctx context.Context, name string, start, end time.Time) (*domain.ElectionSnapshot, error) {
	query := snapshotSelect + ` WHERE name = $1 AND start_time = $2 AND end_time = $3`
	row := r.db.QueryRowContext(ctx, query, name, start, end)
	return scanSnapshotNotFound(row)
}

func (r *snapshotRepository) MaxElectionNumber(ctx context.Context) (uint64, error) {
	var max uint64
	query := `SELECT COALESCE(MAX(election_number), 0) FROM election_history`
	if err := r.db.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("max election number: %w", err)
	}
	return max, nil
}

func (r *snapshotRepository) List(ctx context.Context) ([]*domain.ElectionSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, snapshotSelect+` ORDER BY election_number DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.ElectionSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (r *snapshotRepository) GetByNumber(ctx context.Context, number uint64) (*domain.ElectionSnapshot, error) {
	row := r.db.QueryRowContext(ctx, snapshotSelect+` WHERE election_number = $1`, number)
	return scanSnapshotNotFound(row)
}

func (r *snapshotRepository) Delete(ctx context.Context, number uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM election_history WHERE election_number = $1`, number)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return requireRow(res, domain.ErrSnapshotNotFound)
}

const snapshotSelect = `
	SELECT election_number, name, start_time, end_time, total_votes,
	       total_candidates, registered_voters, turnout_pct, results, winner,
	       archived_at, archived_by
	FROM election_history
`

func scanSnapshotNotFound(row *sql.Row) (*domain.ElectionSnapshot, error) {
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap, err
}

func scanSnapshot(row rowScanner) (*domain.ElectionSnapshot, error) {
	var (
		snap    domain.ElectionSnapshot
		results []byte
		winner  []byte
	)
	err := row.Scan(
		&snap.ElectionNumber, &snap.Name, &snap.StartTime, &snap.EndTime,
		&snap.TotalVotes, &snap.TotalCandidates, &snap.RegisteredVoters,
		&snap.TurnoutPct, &results, &winner, &snap.ArchivedAt, &snap.ArchivedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(results, &snap.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	if err := json.Unmarshal(winner, &snap.Winner); err != nil {
		return nil, fmt.Errorf("unmarshal winner: %w", err)
	}
	return &snap, nil
}
