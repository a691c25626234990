package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/votechain/backend/internal/core/domain"
)

// Gateway is the only component that talks to the election contract. Reads
// are eth_call queries; writes submit a transaction and block until it is
// mined. It never retries and imposes no timeouts of its own.
type Gateway struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	adminKey *ecdsa.PrivateKey
	chainID  *big.Int
	address  common.Address
	logger   *slog.Logger
}

// Dial connects to the ledger RPC endpoint and binds the election contract.
// adminKeyHex is the administrative identity used for every write except
// CastVote, which signs with the voter's own key.
func Dial(ctx context.Context, rpcURL string, contractAddr common.Address, adminKeyHex string, chainID int64, logger *slog.Logger) (*Gateway, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrLedgerUnavailable, rpcURL, err)
	}

	parsed, err := abi.JSON(strings.NewReader(electionABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	adminKey, err := crypto.HexToECDSA(strings.TrimPrefix(adminKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse admin key: %w", err)
	}

	return &Gateway{
		client:   client,
		contract: bind.NewBoundContract(contractAddr, parsed, client, client, client),
		adminKey: adminKey,
		chainID:  big.NewInt(chainID),
		address:  contractAddr,
		logger:   logger,
	}, nil
}

func (g *Gateway) Close() {
	g.client.Close()
}

func (g *Gateway) GetElectionState(ctx context.Context) (*domain.ElectionState, error) {
	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getElection"); err != nil {
		return nil, mapReadError(err)
	}
	return &domain.ElectionState{
		Phase:            domain.Phase(out[0].(uint8)),
		Name:             out[1].(string),
		StartTime:        time.Unix(out[2].(*big.Int).Int64(), 0).UTC(),
		EndTime:          time.Unix(out[3].(*big.Int).Int64(), 0).UTC(),
		RegisteredVoters: out[4].(*big.Int).Uint64(),
		TotalVotes:       out[5].(*big.Int).Uint64(),
		CandidateCount:   out[6].(*big.Int).Uint64(),
	}, nil
}

func (g *Gateway) GetCandidate(ctx context.Context, id uint64) (*domain.Candidate, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "candidates", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, mapReadError(err)
	}
	candidate := &domain.Candidate{
		ID:        out[0].(*big.Int).Uint64(),
		Name:      out[1].(string),
		Party:     out[2].(string),
		VoteCount: out[3].(*big.Int).Uint64(),
	}
	// The candidates mapping returns a zero struct for unknown ids.
	if candidate.ID == 0 {
		return nil, domain.ErrCandidateNotFound
	}
	return candidate, nil
}

// GetCandidates reads the full candidate list. Candidate ids are assigned
// by the contract starting at 1.
func (g *Gateway) GetCandidates(ctx context.Context) ([]domain.Candidate, error) {
	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "candidatesCount"); err != nil {
		return nil, mapReadError(err)
	}
	count := out[0].(*big.Int).Uint64()

	candidates := make([]domain.Candidate, 0, count)
	for id := uint64(1); id <= count; id++ {
		candidate, err := g.GetCandidate(ctx, id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *candidate)
	}
	return candidates, nil
}

// GetResults is the tally read. Vote counts live on the ledger, so the
// result set is the candidate list itself.
func (g *Gateway) GetResults(ctx context.Context) ([]domain.Candidate, error) {
	return g.GetCandidates(ctx)
}

func (g *Gateway) GetVoterStatus(ctx context.Context, addr common.Address) (*domain.VoterStatus, error) {
	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "voters", addr); err != nil {
		return nil, mapReadError(err)
	}
	return &domain.VoterStatus{
		Address:          addr,
		Registered:       out[0].(bool),
		HasVoted:         out[1].(bool),
		VotedCandidateID: out[2].(*big.Int).Uint64(),
	}, nil
}

func (g *Gateway) AddCandidate(ctx context.Context, name, party string) (*domain.TxReceipt, error) {
	return g.transact(ctx, g.adminKey, "addCandidate", name, party)
}

func (g *Gateway) RegisterVoter(ctx context.Context, addr common.Address) (*domain.TxReceipt, error) {
	return g.transact(ctx, g.adminKey, "registerVoter", addr)
}

func (g *Gateway) RegisterVoters(ctx context.Context, addrs []common.Address) (*domain.TxReceipt, error) {
	return g.transact(ctx, g.adminKey, "registerVoters", addrs)
}

func (g *Gateway) StartElection(ctx context.Context, name string, duration time.Duration) (*domain.TxReceipt, error) {
	minutes := big.NewInt(int64(duration / time.Minute))
	return g.transact(ctx, g.adminKey, "startElection", name, minutes)
}

func (g *Gateway) EndElection(ctx context.Context) (*domain.TxReceipt, error) {
	return g.transact(ctx, g.adminKey, "endElection")
}

func (g *Gateway) ResetElection(ctx context.Context) (*domain.TxReceipt, error) {
	return g.transact(ctx, g.adminKey, "resetElection")
}

func (g *Gateway) TransferAdmin(ctx context.Context, newAdmin common.Address) (*domain.TxReceipt, error) {
	return g.transact(ctx, g.adminKey, "transferAdmin", newAdmin)
}

// CastVote signs with the voter's own key; votes must come from the
// voter's identity, not the admin's.
func (g *Gateway) CastVote(ctx context.Context, voterKey *ecdsa.PrivateKey, candidateID uint64) (*domain.TxReceipt, error) {
	return g.transact(ctx, voterKey, "castVote", new(big.Int).SetUint64(candidateID))
}

// TxContext resolves a confirmed transaction's receipt and block time.
func (g *Gateway) TxContext(ctx context.Context, txHash common.Hash) (*domain.TxReceipt, time.Time, error) {
	receipt, err := g.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, time.Time{}, mapReadError(err)
	}
	header, err := g.client.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return nil, time.Time{}, mapReadError(err)
	}
	return &domain.TxReceipt{
		TxHash:      txHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, time.Unix(int64(header.Time), 0).UTC(), nil
}

// transact submits one write and blocks until it is mined. Confirmation
// can take tens of seconds depending on finality; cancellation is the
// caller's job through ctx.
func (g *Gateway) transact(ctx context.Context, key *ecdsa.PrivateKey, method string, params ...interface{}) (*domain.TxReceipt, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, g.chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := g.contract.Transact(opts, method, params...)
	if err != nil {
		return nil, mapWriteError(err)
	}

	g.logger.Debug("transaction submitted", "method", method, "tx_hash", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		return nil, mapReadError(err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, &domain.LedgerRejection{
			Reason: fmt.Sprintf("transaction %s reverted", tx.Hash().Hex()),
		}
	}

	return &domain.TxReceipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}
