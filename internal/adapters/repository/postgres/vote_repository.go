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

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{db: db}
}

// InsertIfAbsent records a confirmed vote unless its transaction hash is
// already present. The single statement is the arbiter of the dual-writer
// race: no separate existence check, no window between check and insert.
func (r *voteRepository) InsertIfAbsent(ctx context.Context, vote *domain.VoteRecord) error {
	query := `
		INSERT INTO votes (
			id, voter_address, user_id, candidate_id, candidate_name,
			candidate_party, tx_hash, block_number, block_time, gas_used,
			election_name, verified
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tx_hash) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		vote.ID,
		addressText(vote.VoterAddress),
		nullableUUID(vote.UserID),
		vote.CandidateID,
		vote.CandidateName,
		vote.CandidateParty,
		vote.TxHash.Hex(),
		vote.BlockNumber,
		vote.BlockTime,
		vote.GasUsed,
		vote.ElectionName,
		vote.Verified,
	)
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	if rows == 0 {
		return domain.ErrDuplicateVoteRecord
	}
	return nil
}

func (r *voteRepository) GetByTxHash(ctx context.Context, txHash common.Hash) (*domain.VoteRecord, error) {
	query := voteSelect + ` WHERE tx_hash = $1`
	row := r.db.QueryRowContext(ctx, query, txHash.Hex())
	vote, err := scanVote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVoteNotFound
	}
	return vote, err
}

func (r *voteRepository) List(ctx context.Context, limit, offset int) ([]*domain.VoteRecord, error) {
	query := voteSelect + ` ORDER BY block_number DESC, created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []*domain.VoteRecord
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}

// Stats computes the derived views on demand from the record set. They are
// projections, not counters, so they cannot drift from the records.
func (r *voteRepository) Stats(ctx context.Context) (*domain.VoteStats, error) {
	stats := &domain.VoteStats{
		ByCandidate: make(map[uint64]int64),
		ByHour:      make(map[string]int64),
	}

	totals := `SELECT COUNT(*), COUNT(DISTINCT voter_address) FROM votes`
	if err := r.db.QueryRowContext(ctx, totals).Scan(&stats.Total, &stats.UniqueVoters); err != nil {
		return nil, fmt.Errorf("vote totals: %w", err)
	}

	byCandidate := `SELECT candidate_id, COUNT(*) FROM votes GROUP BY candidate_id`
	rows, err := r.db.QueryContext(ctx, byCandidate)
	if err != nil {
		return nil, fmt.Errorf("votes by candidate: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var candidateID uint64
		var count int64
		if err := rows.Scan(&candidateID, &count); err != nil {
			return nil, fmt.Errorf("scan candidate count: %w", err)
		}
		stats.ByCandidate[candidateID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byHour := `
		SELECT to_char(date_trunc('hour', block_time), 'YYYY-MM-DD"T"HH24:00'), COUNT(*)
		FROM votes GROUP BY 1 ORDER BY 1
	`
	hourRows, err := r.db.QueryContext(ctx, byHour)
	if err != nil {
		return nil, fmt.Errorf("votes by hour: %w", err)
	}
	defer hourRows.Close()
	for hourRows.Next() {
		var bucket string
		var count int64
		if err := hourRows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scan hour bucket: %w", err)
		}
		stats.ByHour[bucket] = count
	}
	return stats, hourRows.Err()
}

const voteSelect = `
	SELECT id, voter_address, user_id, candidate_id, candidate_name,
	       candidate_party, tx_hash, block_number, block_time, gas_used,
	       election_name, verified, created_at
	FROM votes
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVote(row rowScanner) (*domain.VoteRecord, error) {
	var (
		vote    domain.VoteRecord
		address string
		userID  sql.NullString
		txHash  string
	)
	err := row.Scan(
		&vote.ID, &address, &userID, &vote.CandidateID, &vote.CandidateName,
		&vote.CandidateParty, &txHash, &vote.BlockNumber, &vote.BlockTime,
		&vote.GasUsed, &vote.ElectionName, &vote.Verified, &vote.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	vote.VoterAddress = common.HexToAddress(address)
	vote.TxHash = common.HexToHash(txHash)
	if userID.Valid {
		parsed, err := uuid.Parse(userID.String)
		if err != nil {
			return nil, fmt.Errorf("parse vote user id: %w", err)
		}
		vote.UserID = &parsed
	}
	return &vote, nil
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func addressText(addr common.Address) string {
	return addr.Hex()
}
