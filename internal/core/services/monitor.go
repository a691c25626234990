package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

// DefaultSettleDelay is the pause between stop and start during a restart,
// long enough for the node to tear down the old filters.
const DefaultSettleDelay = 2 * time.Second

const (
	kindVoterRegistered = "voter_registered"
	kindVoteCast        = "vote_cast"
	kindElectionStarted = "election_started"
	kindElectionEnded   = "election_ended"
	kindCandidateAdded  = "candidate_added"
	kindAdminChanged    = "admin_changed"
)

// Monitor keeps the voter mirror and the vote audit store eventually
// consistent with the ledger by consuming the six contract event streams.
// It is an owned instance with an explicit Stopped/Listening lifecycle:
// construct it once per process and pass it by reference.
type Monitor struct {
	events    ports.LedgerEventSource
	gateway   ports.LedgerGateway
	voterRepo ports.VoterRepository
	voteRepo  ports.VoteRepository
	archive   ports.ArchiveService
	logger    *slog.Logger
	metrics   *monitorMetrics

	// SettleDelay is the restart settling pause. Overridable in tests.
	SettleDelay time.Duration

	lifecycle sync.Mutex
	running   bool
	subs      []ports.Subscription
	wg        sync.WaitGroup
}

func NewMonitor(
	events ports.LedgerEventSource,
	gateway ports.LedgerGateway,
	voterRepo ports.VoterRepository,
	voteRepo ports.VoteRepository,
	archive ports.ArchiveService,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Monitor {
	return &Monitor{
		events:      events,
		gateway:     gateway,
		voterRepo:   voterRepo,
		voteRepo:    voteRepo,
		archive:     archive,
		logger:      logger,
		metrics:     newMonitorMetrics(promRegistry),
		SettleDelay: DefaultSettleDelay,
	}
}

// Start attaches exactly one subscription per event kind and begins
// consuming. It fails if the monitor is already listening.
func (m *Monitor) Start(ctx context.Context) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.running {
		return fmt.Errorf("event monitor is already listening")
	}

	if err := m.subscribeAll(ctx); err != nil {
		m.detachLocked()
		m.wg.Wait()
		return err
	}

	m.running = true
	m.logger.Info("event monitor listening", "subscriptions", len(m.subs))
	return nil
}

// Stop detaches every subscription and waits for in-flight handlers to
// finish. It is synchronous: zero subscriptions remain when it returns.
func (m *Monitor) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if !m.running {
		return
	}
	m.detachLocked()
	m.wg.Wait()
	m.running = false
	m.logger.Info("event monitor stopped")
}

// Restart stops, waits out the settling delay and starts again, so a
// restart can never leave a duplicate subscription behind.
func (m *Monitor) Restart(ctx context.Context) error {
	m.Stop()
	time.Sleep(m.SettleDelay)
	return m.Start(ctx)
}

func (m *Monitor) Running() bool {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	return m.running
}

func (m *Monitor) detachLocked() {
	for _, sub := range m.subs {
		sub.Unsubscribe()
	}
	m.subs = nil
}

func (m *Monitor) subscribeAll(ctx context.Context) error {
	registered, sub, err := m.events.WatchVoterRegistered(ctx)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", kindVoterRegistered, err)
	}
	m.track(kindVoterRegistered, sub)
	consume(m, kindVoterRegistered, registered, func(ev domain.VoterRegisteredEvent) error {
		return m.onVoterRegistered(ctx, ev)
	})

	voteCast, sub, err := m.events.WatchVoteCast(ctx)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", kindVoteCast, err)
	}
	m.track(kindVoteCast, sub)
	consume(m, kindVoteCast, voteCast, func(ev domain.VoteCastEvent) error {
		return m.onVoteCast(ctx, ev)
	})

	started, sub, err := m.events.WatchElectionStarted(ctx)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", kindElectionStarted, err)
	}
	m.track(kindElectionStarted, sub)
	consume(m, kindElectionStarted, started, func(ev domain.ElectionStartedEvent) error {
		m.logger.Info("election started on ledger",
			"name", ev.Name, "start_time", ev.StartTime, "end_time", ev.EndTime)
		return nil
	})

	ended, sub, err := m.events.WatchElectionEnded(ctx)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", kindElectionEnded, err)
	}
	m.track(kindElectionEnded, sub)
	consume(m, kindElectionEnded, ended, func(ev domain.ElectionEndedEvent) error {
		return m.onElectionEnded(ctx, ev)
	})

	added, sub, err := m.events.WatchCandidateAdded(ctx)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", kindCandidateAdded, err)
	}
	m.track(kindCandidateAdded, sub)
	consume(m, kindCandidateAdded, added, func(ev domain.CandidateAddedEvent) error {
		m.logger.Info("candidate added on ledger",
			"candidate_id", ev.CandidateID, "name", ev.Name, "party", ev.Party)
		return nil
	})

	adminChanged, sub, err := m.events.WatchAdminChanged(ctx)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", kindAdminChanged, err)
	}
	m.track(kindAdminChanged, sub)
	consume(m, kindAdminChanged, adminChanged, func(ev domain.AdminChangedEvent) error {
		m.logger.Info("contract admin changed",
			"previous", ev.PreviousAdmin.Hex(), "new", ev.NewAdmin.Hex())
		return nil
	})

	return nil
}

func (m *Monitor) track(kind string, sub ports.Subscription) {
	m.subs = append(m.subs, sub)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err, ok := <-sub.Err(); ok && err != nil {
			m.logger.Error("event subscription failed", "event", kind, "error", err)
			m.metrics.subscriptionErrors.WithLabelValues(kind).Inc()
		}
	}()
}

// consume drains one event stream until its channel closes on
// unsubscribe. A failure handling one event is logged and counted but
// never stops delivery of the next, and never detaches the subscription.
func consume[E any](m *Monitor, kind string, ch <-chan E, handle func(E) error) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for ev := range ch {
			event := ev
			m.handleOne(kind, func() error { return handle(event) })
		}
	}()
}

func (m *Monitor) handleOne(kind string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("event handler panic", "event", kind, "panic", r)
			m.metrics.handlerErrors.WithLabelValues(kind).Inc()
		}
	}()

	if err := fn(); err != nil {
		m.logger.Error("event handler failed", "event", kind, "error", err)
		m.metrics.handlerErrors.WithLabelValues(kind).Inc()
		return
	}
	m.metrics.eventsHandled.WithLabelValues(kind).Inc()
}

func (m *Monitor) onVoterRegistered(ctx context.Context, ev domain.VoterRegisteredEvent) error {
	err := m.voterRepo.SetRegistered(ctx, ev.Voter, true)
	if errors.Is(err, domain.ErrVoterNotFound) {
		// No local user owns this address. Expected for voters registered
		// outside this backend; skip without failing the handler.
		m.logger.Info("registration event for unknown address, skipping",
			"address", ev.Voter.Hex())
		return nil
	}
	return err
}

func (m *Monitor) onVoteCast(ctx context.Context, ev domain.VoteCastEvent) error {
	voter, err := m.voterRepo.GetByAddress(ctx, ev.Voter)
	if errors.Is(err, domain.ErrVoterNotFound) {
		m.logger.Info("vote event for unknown address, skipping",
			"address", ev.Voter.Hex(), "tx_hash", ev.Meta.TxHash.Hex())
		return nil
	}
	if err != nil {
		return fmt.Errorf("mirror lookup: %w", err)
	}

	receipt, blockTime, err := m.gateway.TxContext(ctx, ev.Meta.TxHash)
	if err != nil {
		return fmt.Errorf("resolve transaction %s: %w", ev.Meta.TxHash.Hex(), err)
	}

	record := m.buildVoteRecord(ctx, ev, voter, receipt, blockTime)
	if err := m.voteRepo.InsertIfAbsent(ctx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateVoteRecord) {
			m.logger.Debug("vote already recorded by synchronous path",
				"tx_hash", ev.Meta.TxHash.Hex())
			return nil
		}
		return fmt.Errorf("record vote: %w", err)
	}

	if err := m.voterRepo.SetVoted(ctx, ev.Voter, ev.CandidateID); err != nil {
		return fmt.Errorf("update mirror: %w", err)
	}
	return nil
}

func (m *Monitor) buildVoteRecord(
	ctx context.Context,
	ev domain.VoteCastEvent,
	voter *domain.Voter,
	receipt *domain.TxReceipt,
	blockTime time.Time,
) *domain.VoteRecord {
	record := &domain.VoteRecord{
		ID:            uuid.New(),
		VoterAddress:  ev.Voter,
		CandidateID:   ev.CandidateID,
		CandidateName: ev.CandidateName,
		TxHash:        ev.Meta.TxHash,
		BlockNumber:   receipt.BlockNumber,
		BlockTime:     blockTime,
		GasUsed:       receipt.GasUsed,
		Verified:      true,
	}
	userID := voter.UserID
	record.UserID = &userID

	// Party and election tag are cached display data; a failed gateway
	// read degrades the record instead of failing the event.
	if candidate, err := m.gateway.GetCandidate(ctx, ev.CandidateID); err == nil {
		record.CandidateParty = candidate.Party
	} else {
		m.logger.Warn("could not resolve candidate party",
			"candidate_id", ev.CandidateID, "error", err)
	}
	if state, err := m.gateway.GetElectionState(ctx); err == nil {
		record.ElectionName = state.Name
	} else {
		m.logger.Warn("could not resolve election name", "error", err)
	}
	return record
}

func (m *Monitor) onElectionEnded(ctx context.Context, ev domain.ElectionEndedEvent) error {
	m.logger.Info("election ended on ledger",
		"name", ev.Name, "total_votes", ev.TotalVotes)

	outcome, err := m.archive.Archive(ctx, "event-monitor")
	if err != nil {
		return fmt.Errorf("archive after election end: %w", err)
	}
	if outcome.Archived {
		m.logger.Info("election archived from event",
			"election_number", outcome.ElectionNumber)
	}
	return nil
}
