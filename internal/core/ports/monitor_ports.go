package ports

import "context"

// MonitorService keeps the mirror and the vote audit store eventually
// consistent with the ledger. Lifecycle is Stopped -> Listening -> Stopped;
// Stop is synchronous and leaves zero active subscriptions, Restart
// guarantees no duplicate subscription survives.
type MonitorService interface {
	Start(ctx context.Context) error
	Stop()
	Restart(ctx context.Context) error
	Running() bool
}
