package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

type voterRepository struct {
	db *sql.DB
}

func NewVoterRepository(db *sql.DB) ports.VoterRepository {
	return &voterRepository{db: db}
}

const voterSelect = `
	SELECT id, user_id, address, is_registered, has_voted, voted_candidate_id,
	       created_at, updated_at
	FROM voters
`

func (r *voterRepository) GetByAddress(ctx context.Context, addr common.Address) (*domain.Voter, error) {
	row := r.db.QueryRowContext(ctx, voterSelect+` WHERE address = $1`, addr.Hex())
	return scanVoter(row)
}

func (r *voterRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Voter, error) {
	row := r.db.QueryRowContext(ctx, voterSelect+` WHERE user_id = $1`, userID)
	return scanVoter(row)
}

// Upsert creates or refreshes the mirror row for an address. It leaves
// has_voted alone: registration and voting are reconciled independently.
func (r *voterRepository) Upsert(ctx context.Context, voter *domain.Voter) error {
	query := `
		INSERT INTO voters (id, user_id, address, is_registered)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    is_registered = EXCLUDED.is_registered,
		    updated_at = NOW();
	`
	_, err := r.db.ExecContext(ctx, query, voter.ID, voter.UserID, voter.Address.Hex(), voter.Registered)
	if err != nil {
		return fmt.Errorf("upsert voter: %w", err)
	}
	return nil
}

func (r *voterRepository) SetRegistered(ctx context.Context, addr common.Address, registered bool) error {
	query := `UPDATE voters SET is_registered = $2, updated_at = NOW() WHERE address = $1`
	res, err := r.db.ExecContext(ctx, query, addr.Hex(), registered)
	if err != nil {
		return fmt.Errorf("set registered: %w", err)
	}
	return requireRow(res, domain.ErrVoterNotFound)
}

func (r *voterRepository) SetVoted(ctx context.Context, addr common.Address, candidateID uint64) error {
	query := `
		UPDATE voters
		SET has_voted = TRUE, voted_candidate_id = $2, updated_at = NOW()
		WHERE address = $1
	`
	res, err := r.db.ExecContext(ctx, query, addr.Hex(), candidateID)
	if err != nil {
		return fmt.Errorf("set voted: %w", err)
	}
	return requireRow(res, domain.ErrVoterNotFound)
}

// ClearRegistrations wipes every mirror flag after an election reset.
func (r *voterRepository) ClearRegistrations(ctx context.Context) error {
	query := `
		UPDATE voters
		SET is_registered = FALSE, has_voted = FALSE, voted_candidate_id = NULL,
		    updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear registrations: %w", err)
	}
	return nil
}

func (r *voterRepository) List(ctx context.Context) ([]*domain.Voter, error) {
	rows, err := r.db.QueryContext(ctx, voterSelect+` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	defer rows.Close()

	var voters []*domain.Voter
	for rows.Next() {
		voter, err := scanVoterRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan voter: %w", err)
		}
		voters = append(voters, voter)
	}
	return voters, rows.Err()
}

func scanVoter(row *sql.Row) (*domain.Voter, error) {
	voter, err := scanVoterRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVoterNotFound
	}
	return voter, err
}

func scanVoterRow(row rowScanner) (*domain.Voter, error) {
	var (
		voter    domain.Voter
		address  string
		votedFor sql.NullInt64
	)
	err := row.Scan(
		&voter.ID, &voter.UserID, &address, &voter.Registered, &voter.HasVoted,
		&votedFor, &voter.CreatedAt, &voter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	voter.Address = common.HexToAddress(address)
	if votedFor.Valid {
		id := uint64(votedFor.Int64)
		voter.VotedCandidateID = &id
	}
	return &voter, nil
}

func requireRow(res sql.Result, missing error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return missing
	}
	return nil
}
