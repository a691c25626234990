package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGateway is an in-memory stand-in for the contract. Writes return a
// canned receipt unless an error is injected.
type fakeGateway struct {
	mu sync.Mutex

	state      *domain.ElectionState
	candidates []domain.Candidate

	stateErr     error
	candidateErr error
	castVoteErr  error
	writeErr     error

	txReceipt  *domain.TxReceipt
	txTime     time.Time
	txErr      error
	txFailHash common.Hash

	castVotes     []uint64
	resetCalls    int
	registerCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		state: &domain.ElectionState{Phase: domain.PhaseNotStarted},
	}
}

func (g *fakeGateway) receipt() *domain.TxReceipt {
	return &domain.TxReceipt{
		TxHash:      fmt.Sprintf("0x%064x", len(g.castVotes)+g.resetCalls+g.registerCalls+1),
		BlockNumber: 42,
		GasUsed:     21000,
	}
}

func (g *fakeGateway) GetCandidates(ctx context.Context) ([]domain.Candidate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.candidateErr != nil {
		return nil, g.candidateErr
	}
	return append([]domain.Candidate(nil), g.candidates...), nil
}

func (g *fakeGateway) GetCandidate(ctx context.Context, id uint64) (*domain.Candidate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.candidateErr != nil {
		return nil, g.candidateErr
	}
	for _, c := range g.candidates {
		if c.ID == id {
			candidate := c
			return &candidate, nil
		}
	}
	return nil, domain.ErrCandidateNotFound
}

func (g *fakeGateway) GetElectionState(ctx context.Context) (*domain.ElectionState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stateErr != nil {
		return nil, g.stateErr
	}
	state := *g.state
	return &state, nil
}

func (g *fakeGateway) GetVoterStatus(ctx context.Context, addr common.Address) (*domain.VoterStatus, error) {
	return &domain.VoterStatus{Address: addr}, nil
}

func (g *fakeGateway) GetResults(ctx context.Context) ([]domain.Candidate, error) {
	return g.GetCandidates(ctx)
}

func (g *fakeGateway) AddCandidate(ctx context.Context, name, party string) (*domain.TxReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return nil, g.writeErr
	}
	g.candidates = append(g.candidates, domain.Candidate{
		ID: uint64(len(g.candidates) + 1), Name: name, Party: party,
	})
	return g.receipt(), nil
}

func (g *fakeGateway) RegisterVoter(ctx context.Context, addr common.Address) (*domain.TxReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return nil, g.writeErr
	}
	g.registerCalls++
	return g.receipt(), nil
}

func (g *fakeGateway) RegisterVoters(ctx context.Context, addrs []common.Address) (*domain.TxReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return nil, g.writeErr
	}
	g.registerCalls += len(addrs)
	return g.receipt(), nil
}

func (g *fakeGateway) StartElection(ctx context.Context, name string, duration time.Duration) (*domain.TxReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return nil, g.writeErr
	}
	return g.receipt(), nil
}

func (g *fakeGateway) EndElection(ctx context.Context) (*domain.TxReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return nil, g.writeErr
	}
	return g.receipt(), nil
}

func (g *fakeGateway) ResetElection(ctx context.Context) (*domain.TxReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return nil, g.writeErr
	}
	g.resetCalls++
	return g.receipt(), nil
}

func (g *fakeGateway) TransferAdmin(ctx context.Context, newAdmin common.Address) (*domain.TxReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return nil, g.writeErr
	}
	return g.receipt(), nil
}

func (g *fakeGateway) CastVote(ctx context.Context, voterKey *ecdsa.PrivateKey, candidateID uint64) (*domain.TxReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.castVoteErr != nil {
		return nil, g.castVoteErr
	}
	g.castVotes = append(g.castVotes, candidateID)
	return g.receipt(), nil
}

func (g *fakeGateway) TxContext(ctx context.Context, txHash common.Hash) (*domain.TxReceipt, time.Time, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.txErr != nil {
		return nil, time.Time{}, g.txErr
	}
	if g.txFailHash != (common.Hash{}) && txHash == g.txFailHash {
		return nil, time.Time{}, fmt.Errorf("transaction %s not found", txHash.Hex())
	}
	if g.txReceipt != nil {
		return g.txReceipt, g.txTime, nil
	}
	return &domain.TxReceipt{TxHash: txHash.Hex(), BlockNumber: 42, GasUsed: 21000},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), nil
}

// fakeVoterRepo mirrors voters in a map keyed by address.
type fakeVoterRepo struct {
	mu     sync.Mutex
	voters map[common.Address]*domain.Voter

	upsertErr error
	clears    int
}

func newFakeVoterRepo() *fakeVoterRepo {
	return &fakeVoterRepo{voters: make(map[common.Address]*domain.Voter)}
}

func (r *fakeVoterRepo) seed(voter *domain.Voter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voters[voter.Address] = voter
}

func (r *fakeVoterRepo) GetByAddress(ctx context.Context, addr common.Address) (*domain.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	voter, ok := r.voters[addr]
	if !ok {
		return nil, domain.ErrVoterNotFound
	}
	copied := *voter
	return &copied, nil
}

func (r *fakeVoterRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, voter := range r.voters {
		if voter.UserID == userID {
			copied := *voter
			return &copied, nil
		}
	}
	return nil, domain.ErrVoterNotFound
}

func (r *fakeVoterRepo) Upsert(ctx context.Context, voter *domain.Voter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	copied := *voter
	r.voters[voter.Address] = &copied
	return nil
}

func (r *fakeVoterRepo) SetRegistered(ctx context.Context, addr common.Address, registered bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	voter, ok := r.voters[addr]
	if !ok {
		return domain.ErrVoterNotFound
	}
	voter.Registered = registered
	return nil
}

func (r *fakeVoterRepo) SetVoted(ctx context.Context, addr common.Address, candidateID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	voter, ok := r.voters[addr]
	if !ok {
		return domain.ErrVoterNotFound
	}
	voter.HasVoted = true
	id := candidateID
	voter.VotedCandidateID = &id
	return nil
}

func (r *fakeVoterRepo) ClearRegistrations(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	for _, voter := range r.voters {
		voter.Registered = false
		voter.HasVoted = false
		voter.VotedCandidateID = nil
	}
	return nil
}

func (r *fakeVoterRepo) List(ctx context.Context) ([]*domain.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Voter, 0, len(r.voters))
	for _, voter := range r.voters {
		copied := *voter
		out = append(out, &copied)
	}
	return out, nil
}

// fakeVoteRepo enforces the tx-hash uniqueness contract in memory.
type fakeVoteRepo struct {
	mu      sync.Mutex
	records map[common.Hash]*domain.VoteRecord

	inserts   int
	insertErr error
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{records: make(map[common.Hash]*domain.VoteRecord)}
}

func (r *fakeVoteRepo) InsertIfAbsent(ctx context.Context, vote *domain.VoteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, exists := r.records[vote.TxHash]; exists {
		return domain.ErrDuplicateVoteRecord
	}
	copied := *vote
	r.records[vote.TxHash] = &copied
	return nil
}

func (r *fakeVoteRepo) GetByTxHash(ctx context.Context, txHash common.Hash) (*domain.VoteRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[txHash]
	if !ok {
		return nil, domain.ErrVoteNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeVoteRepo) List(ctx context.Context, limit, offset int) ([]*domain.VoteRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.VoteRecord, 0, len(r.records))
	for _, record := range r.records {
		copied := *record
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeVoteRepo) Stats(ctx context.Context) (*domain.VoteStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.VoteStats{
		Total:       int64(len(r.records)),
		ByCandidate: make(map[uint64]int64),
		ByHour:      make(map[string]int64),
	}
	seen := make(map[common.Address]bool)
	for _, record := range r.records {
		stats.ByCandidate[record.CandidateID]++
		if !seen[record.VoterAddress] {
			seen[record.VoterAddress] = true
			stats.UniqueVoters++
		}
	}
	return stats, nil
}

func (r *fakeVoteRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// fakeSnapshotRepo enforces identity uniqueness the way the postgres
// constraint does.
type fakeSnapshotRepo struct {
	mu    sync.Mutex
	snaps map[uint64]*domain.ElectionSnapshot

	insertErr error
	// suppressFinds makes the next N FindByIdentity calls miss, to
	// simulate a concurrent writer landing between lookup and insert.
	suppressFinds int
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snaps: make(map[uint64]*domain.ElectionSnapshot)}
}

func identityKey(name string, start, end time.Time) string {
	return fmt.Sprintf("%s|%d|%d", name, start.Unix(), end.Unix())
}

func (r *fakeSnapshotRepo) Insert(ctx context.Context, snap *domain.ElectionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		err := r.insertErr
		r.insertErr = nil
		return err
	}
	key := identityKey(snap.Name, snap.StartTime, snap.EndTime)
	for _, existing := range r.snaps {
		if identityKey(existing.Name, existing.StartTime, existing.EndTime) == key {
			return domain.ErrSnapshotExists
		}
	}
	if _, taken := r.snaps[snap.ElectionNumber]; taken {
		return domain.ErrElectionNumberTaken
	}
	copied := *snap
	r.snaps[snap.ElectionNumber] = &copied
	return nil
}

func (r *fakeSnapshotRepo) FindByIdentity(ctx context.Context, name string, start, end time.Time) (*domain.ElectionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.suppressFinds > 0 {
		r.suppressFinds--
		return nil, domain.ErrSnapshotNotFound
	}
	key := identityKey(name, start, end)
	for _, snap := range r.snaps {
		if identityKey(snap.Name, snap.StartTime, snap.EndTime) == key {
			copied := *snap
			return &copied, nil
		}
	}
	return nil, domain.ErrSnapshotNotFound
}

func (r *fakeSnapshotRepo) MaxElectionNumber(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max uint64
	for number := range r.snaps {
		if number > max {
			max = number
		}
	}
	return max, nil
}

func (r *fakeSnapshotRepo) List(ctx context.Context) ([]*domain.ElectionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.ElectionSnapshot, 0, len(r.snaps))
	for _, snap := range r.snaps {
		copied := *snap
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeSnapshotRepo) GetByNumber(ctx context.Context, number uint64) (*domain.ElectionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snaps[number]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	copied := *snap
	return &copied, nil
}

func (r *fakeSnapshotRepo) Delete(ctx context.Context, number uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snaps[number]; !ok {
		return domain.ErrSnapshotNotFound
	}
	delete(r.snaps, number)
	return nil
}

func (r *fakeSnapshotRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

// fakeArchive records calls and returns a canned outcome.
type fakeArchive struct {
	mu      sync.Mutex
	calls   []string
	outcome *domain.ArchiveOutcome
	err     error
}

func (a *fakeArchive) Archive(ctx context.Context, archivedBy string) (*domain.ArchiveOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, archivedBy)
	if a.err != nil {
		return nil, a.err
	}
	if a.outcome != nil {
		return a.outcome, nil
	}
	return &domain.ArchiveOutcome{Archived: true, ElectionNumber: 1}, nil
}

// fakeSub closes its event channel on Unsubscribe so consumer loops end,
// matching the real watcher's contract.
type fakeSub struct {
	once    sync.Once
	errCh   chan error
	onUnsub func()
}

func (s *fakeSub) Unsubscribe() {
	s.once.Do(func() {
		if s.onUnsub != nil {
			s.onUnsub()
		}
		close(s.errCh)
	})
}

func (s *fakeSub) Err() <-chan error { return s.errCh }

// fakeEventSource hands out buffered channels the tests emit into.
type fakeEventSource struct {
	mu         sync.Mutex
	watchCalls map[string]int
	failKind   string

	registered   chan domain.VoterRegisteredEvent
	voteCast     chan domain.VoteCastEvent
	started      chan domain.ElectionStartedEvent
	ended        chan domain.ElectionEndedEvent
	added        chan domain.CandidateAddedEvent
	adminChanged chan domain.AdminChangedEvent
}

func newFakeEventSource() *fakeEventSource {
	return &fakeEventSource{watchCalls: make(map[string]int)}
}

func watchFake[E any](s *fakeEventSource, kind string, store *chan E) (<-chan E, ports.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchCalls[kind]++
	if s.failKind == kind {
		return nil, nil, fmt.Errorf("node refused filter for %s", kind)
	}
	ch := make(chan E, 16)
	*store = ch
	sub := &fakeSub{errCh: make(chan error, 1)}
	sub.onUnsub = func() { close(ch) }
	return ch, sub, nil
}

func (s *fakeEventSource) WatchVoterRegistered(ctx context.Context) (<-chan domain.VoterRegisteredEvent, ports.Subscription, error) {
	return watchFake(s, kindVoterRegistered, &s.registered)
}

func (s *fakeEventSource) WatchVoteCast(ctx context.Context) (<-chan domain.VoteCastEvent, ports.Subscription, error) {
	return watchFake(s, kindVoteCast, &s.voteCast)
}

func (s *fakeEventSource) WatchElectionStarted(ctx context.Context) (<-chan domain.ElectionStartedEvent, ports.Subscription, error) {
	return watchFake(s, kindElectionStarted, &s.started)
}

func (s *fakeEventSource) WatchElectionEnded(ctx context.Context) (<-chan domain.ElectionEndedEvent, ports.Subscription, error) {
	return watchFake(s, kindElectionEnded, &s.ended)
}

func (s *fakeEventSource) WatchCandidateAdded(ctx context.Context) (<-chan domain.CandidateAddedEvent, ports.Subscription, error) {
	return watchFake(s, kindCandidateAdded, &s.added)
}

func (s *fakeEventSource) WatchAdminChanged(ctx context.Context) (<-chan domain.AdminChangedEvent, ports.Subscription, error) {
	return watchFake(s, kindAdminChanged, &s.adminChanged)
}

func (s *fakeEventSource) calls(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchCalls[kind]
}
