package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

// stubVoteService returns canned values so the handler mapping can be
// exercised without a ledger or a database.
type stubVoteService struct {
	castErr error
	stats   *domain.VoteStats
}

func (s *stubVoteService) CastVote(ctx context.Context, input ports.CastVoteInput) (*ports.CastVoteResult, error) {
	if s.castErr != nil {
		return nil, s.castErr
	}
	return &ports.CastVoteResult{
		Receipt:     &domain.TxReceipt{TxHash: "0xdead", BlockNumber: 42, GasUsed: 21000},
		CandidateID: input.CandidateID,
	}, nil
}

func (s *stubVoteService) ListVotes(ctx context.Context, limit, offset int) ([]*domain.VoteRecord, error) {
	return nil, nil
}

func (s *stubVoteService) VoteStats(ctx context.Context) (*domain.VoteStats, error) {
	if s.stats != nil {
		return s.stats, nil
	}
	return &domain.VoteStats{ByCandidate: map[uint64]int64{}, ByHour: map[string]int64{}}, nil
}

type stubVoterService struct {
	status    *domain.VoterStatus
	statusErr error
}

func (s *stubVoterService) RegisterVoter(ctx context.Context, input ports.RegisterVoterInput) (*domain.TxReceipt, error) {
	return &domain.TxReceipt{TxHash: "0xbeef"}, nil
}

func (s *stubVoterService) RegisterVoters(ctx context.Context, inputs []ports.RegisterVoterInput) (*domain.TxReceipt, error) {
	return &domain.TxReceipt{TxHash: "0xbeef"}, nil
}

func (s *stubVoterService) Voters(ctx context.Context) ([]*domain.Voter, error) {
	return nil, nil
}

func (s *stubVoterService) Status(ctx context.Context, addr common.Address) (*domain.VoterStatus, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	if s.status != nil {
		return s.status, nil
	}
	return &domain.VoterStatus{Address: addr, Registered: true}, nil
}

type stubElectionService struct {
	stateErr error
}

func (s *stubElectionService) State(ctx context.Context) (*domain.ElectionState, error) {
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	return &domain.ElectionState{Phase: domain.PhaseActive, Name: "General 2026"}, nil
}

func (s *stubElectionService) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	return []domain.Candidate{{ID: 1, Name: "Alice"}}, nil
}

func (s *stubElectionService) Results(ctx context.Context) ([]domain.Candidate, error) {
	return []domain.Candidate{{ID: 1, Name: "Alice", VoteCount: 45}}, nil
}

func (s *stubElectionService) AddCandidate(ctx context.Context, name, party string) (*domain.TxReceipt, error) {
	return &domain.TxReceipt{TxHash: "0xadd"}, nil
}

func (s *stubElectionService) Start(ctx context.Context, input ports.StartElectionInput) (*domain.TxReceipt, error) {
	return &domain.TxReceipt{TxHash: "0xstart"}, nil
}

func (s *stubElectionService) End(ctx context.Context) (*domain.TxReceipt, error) {
	return &domain.TxReceipt{TxHash: "0xend"}, nil
}

func (s *stubElectionService) TransferAdmin(ctx context.Context, newAdmin common.Address) (*domain.TxReceipt, error) {
	return &domain.TxReceipt{TxHash: "0xxfer"}, nil
}

func (s *stubElectionService) Reset(ctx context.Context, requestedBy string) (*ports.ResetResult, error) {
	return &ports.ResetResult{
		Receipt:        &domain.TxReceipt{TxHash: "0xreset"},
		ArchiveWarning: "election history was not archived: history store unavailable",
	}, nil
}

type stubHistoryService struct{}

func (s *stubHistoryService) List(ctx context.Context) ([]*domain.ElectionSnapshot, error) {
	return []*domain.ElectionSnapshot{{ElectionNumber: 1, Name: "General 2026"}}, nil
}

func (s *stubHistoryService) Get(ctx context.Context, number uint64) (*domain.ElectionSnapshot, error) {
	if number != 1 {
		return nil, domain.ErrSnapshotNotFound
	}
	return &domain.ElectionSnapshot{ElectionNumber: 1, Name: "General 2026"}, nil
}

func (s *stubHistoryService) Delete(ctx context.Context, number uint64) error {
	if number != 1 {
		return domain.ErrSnapshotNotFound
	}
	return nil
}

func testServer(votes *stubVoteService, voters *stubVoterService, elections *stubElectionService) *httptest.Server {
	handler := NewHandler(
		NewVoteHandler(votes),
		NewVoterHandler(voters),
		NewElectionHandler(elections),
		NewHistoryHandler(&stubHistoryService{}),
		nil,
	)
	return httptest.NewServer(handler)
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	defer resp.Body.Close()
	var wrapper map[string]errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&wrapper))
	return wrapper["error"]
}

func TestCastVoteEndpoint(t *testing.T) {
	server := testServer(&stubVoteService{}, &stubVoterService{}, &stubElectionService{})
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/votes", map[string]any{
		"private_key":  "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		"candidate_id": 1,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result ports.CastVoteResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "0xdead", result.Receipt.TxHash)
	assert.Equal(t, uint64(1), result.CandidateID)
}

func TestCastVoteEndpointValidation(t *testing.T) {
	server := testServer(&stubVoteService{}, &stubVoterService{}, &stubElectionService{})
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/votes", map[string]any{"candidate_id": 1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", decodeError(t, resp).Kind)
}

func TestLedgerRejectionCarriesVerbatimReason(t *testing.T) {
	votes := &stubVoteService{castErr: &domain.LedgerRejection{Reason: "Election is not active"}}
	server := testServer(votes, &stubVoterService{}, &stubElectionService{})
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/votes", map[string]any{
		"private_key":  "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		"candidate_id": 1,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeError(t, resp)
	assert.Equal(t, "ledger_rejection", body.Kind)
	assert.Equal(t, "Election is not active", body.Message)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"not registered", domain.ErrNotRegistered, http.StatusForbidden, "not_registered"},
		{"already voted", domain.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
		{"candidate missing", domain.ErrCandidateNotFound, http.StatusNotFound, "not_found"},
		{"ledger down", fmt.Errorf("%w: dial tcp", domain.ErrLedgerUnavailable), http.StatusBadGateway, "transient_network"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testServer(&stubVoteService{castErr: tt.err}, &stubVoterService{}, &stubElectionService{})
			defer server.Close()

			resp := postJSON(t, server.URL+"/api/votes", map[string]any{
				"private_key":  "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
				"candidate_id": 1,
			})
			require.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantKind, decodeError(t, resp).Kind)
		})
	}
}

func TestVoterStatusEndpoint(t *testing.T) {
	server := testServer(&stubVoteService{}, &stubVoterService{}, &stubElectionService{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/voters/0x5555555555555555555555555555555555555555/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status domain.VoterStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Registered)

	bad, err := http.Get(server.URL + "/api/voters/not-an-address/status")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestResetEndpointSurfacesArchiveWarning(t *testing.T) {
	server := testServer(&stubVoteService{}, &stubVoterService{}, &stubElectionService{})
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/admin/election/reset", map[string]any{})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result ports.ResetResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "0xreset", result.Receipt.TxHash)
	assert.Contains(t, result.ArchiveWarning, "not archived")
}

func TestHistoryEndpoints(t *testing.T) {
	server := testServer(&stubVoteService{}, &stubVoterService{}, &stubElectionService{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/history/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	missing, err := http.Get(server.URL + "/api/history/99")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.Equal(t, "not_found", decodeError(t, missing).Kind)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/history/1", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)
}
