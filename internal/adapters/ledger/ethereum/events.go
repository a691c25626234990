package ethereum

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/votechain/backend/internal/core/domain"
	"github.com/votechain/backend/internal/core/ports"
)

// eventBuffer is the per-stream channel depth; a slow handler backpressures
// the forwarder rather than dropping events.
const eventBuffer = 20

// EventSource adapts the contract's log subscriptions to typed event
// streams. One Watch call opens one eth_subscribe filter.
type EventSource struct {
	gateway *Gateway
	logger  *slog.Logger
}

func NewEventSource(gateway *Gateway, logger *slog.Logger) *EventSource {
	return &EventSource{gateway: gateway, logger: logger}
}

type watchSub struct {
	unsubscribe func()
	errCh       chan error
}

func (w *watchSub) Unsubscribe()      { w.unsubscribe() }
func (w *watchSub) Err() <-chan error { return w.errCh }

// watch opens a log subscription for one event and forwards decoded events
// until the subscription is torn down. The typed channel closes when the
// forwarder exits, which is how consumers learn the stream is done.
func watch[E any](
	s *EventSource,
	ctx context.Context,
	name string,
	decode func(types.Log) (E, error),
) (<-chan E, ports.Subscription, error) {
	logs, inner, err := s.gateway.contract.WatchLogs(&bind.WatchOpts{Context: ctx}, name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: watch %s: %v", domain.ErrLedgerUnavailable, name, err)
	}

	out := make(chan E, eventBuffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		for {
			select {
			case lg, ok := <-logs:
				if !ok {
					return
				}
				ev, decodeErr := decode(lg)
				if decodeErr != nil {
					s.logger.Error("failed to decode ledger event",
						"event", name, "tx_hash", lg.TxHash.Hex(), "error", decodeErr)
					continue
				}
				out <- ev
			case subErr, ok := <-inner.Err():
				if ok && subErr != nil {
					errCh <- subErr
				}
				return
			}
		}
	}()

	return out, &watchSub{unsubscribe: inner.Unsubscribe, errCh: errCh}, nil
}

func meta(lg types.Log) domain.EventMeta {
	return domain.EventMeta{TxHash: lg.TxHash, BlockNumber: lg.BlockNumber}
}

func (s *EventSource) WatchVoterRegistered(ctx context.Context) (<-chan domain.VoterRegisteredEvent, ports.Subscription, error) {
	return watch(s, ctx, "VoterRegistered", func(lg types.Log) (domain.VoterRegisteredEvent, error) {
		var raw voterRegisteredLog
		if err := s.gateway.contract.UnpackLog(&raw, "VoterRegistered", lg); err != nil {
			return domain.VoterRegisteredEvent{}, err
		}
		return domain.VoterRegisteredEvent{Voter: raw.Voter, Meta: meta(lg)}, nil
	})
}

func (s *EventSource) WatchVoteCast(ctx context.Context) (<-chan domain.VoteCastEvent, ports.Subscription, error) {
	return watch(s, ctx, "VoteCast", func(lg types.Log) (domain.VoteCastEvent, error) {
		var raw voteCastLog
		if err := s.gateway.contract.UnpackLog(&raw, "VoteCast", lg); err != nil {
			return domain.VoteCastEvent{}, err
		}
		return domain.VoteCastEvent{
			Voter:         raw.Voter,
			CandidateID:   raw.CandidateId.Uint64(),
			CandidateName: raw.CandidateName,
			Meta:          meta(lg),
		}, nil
	})
}

func (s *EventSource) WatchElectionStarted(ctx context.Context) (<-chan domain.ElectionStartedEvent, ports.Subscription, error) {
	return watch(s, ctx, "ElectionStarted", func(lg types.Log) (domain.ElectionStartedEvent, error) {
		var raw electionStartedLog
		if err := s.gateway.contract.UnpackLog(&raw, "ElectionStarted", lg); err != nil {
			return domain.ElectionStartedEvent{}, err
		}
		return domain.ElectionStartedEvent{
			Name:      raw.Name,
			StartTime: time.Unix(raw.StartTime.Int64(), 0).UTC(),
			EndTime:   time.Unix(raw.EndTime.Int64(), 0).UTC(),
			Meta:      meta(lg),
		}, nil
	})
}

func (s *EventSource) WatchElectionEnded(ctx context.Context) (<-chan domain.ElectionEndedEvent, ports.Subscription, error) {
	return watch(s, ctx, "ElectionEnded", func(lg types.Log) (domain.ElectionEndedEvent, error) {
		var raw electionEndedLog
		if err := s.gateway.contract.UnpackLog(&raw, "ElectionEnded", lg); err != nil {
			return domain.ElectionEndedEvent{}, err
		}
		return domain.ElectionEndedEvent{
			Name:       raw.Name,
			TotalVotes: raw.TotalVotes.Uint64(),
			Meta:       meta(lg),
		}, nil
	})
}

func (s *EventSource) WatchCandidateAdded(ctx context.Context) (<-chan domain.CandidateAddedEvent, ports.Subscription, error) {
	return watch(s, ctx, "CandidateAdded", func(lg types.Log) (domain.CandidateAddedEvent, error) {
		var raw candidateAddedLog
		if err := s.gateway.contract.UnpackLog(&raw, "CandidateAdded", lg); err != nil {
			return domain.CandidateAddedEvent{}, err
		}
		return domain.CandidateAddedEvent{
			CandidateID: raw.CandidateId.Uint64(),
			Name:        raw.Name,
			Party:       raw.Party,
			Meta:        meta(lg),
		}, nil
	})
}

func (s *EventSource) WatchAdminChanged(ctx context.Context) (<-chan domain.AdminChangedEvent, ports.Subscription, error) {
	return watch(s, ctx, "AdminChanged", func(lg types.Log) (domain.AdminChangedEvent, error) {
		var raw adminChangedLog
		if err := s.gateway.contract.UnpackLog(&raw, "AdminChanged", lg); err != nil {
			return domain.AdminChangedEvent{}, err
		}
		return domain.AdminChangedEvent{
			PreviousAdmin: raw.PreviousAdmin,
			NewAdmin:      raw.NewAdmin,
			Meta:          meta(lg),
		}, nil
	})
}
