// Package hook provides an extensible event hook system for the ledger.
// Hooks can observe transfer activity without participating in the
// locking protocol: events are delivered only after the ledger has
// released its locks.
package hook

import (
	"context"
	"time"

	"github.com/acctmgr/ledger/types"
)

// Hook is the base interface that all hooks must implement.
type Hook interface {
	Name() string
}

// OnTransferApplied is called after a transfer moved funds.
type OnTransferApplied interface {
	Hook
	OnTransferApplied(ctx context.Context, ev *types.TransferEvent) error
}

// OnTransferSkipped is called after a transfer was silently skipped,
// e.g. for insufficient funds.
type OnTransferSkipped interface {
	Hook
	OnTransferSkipped(ctx context.Context, ev *types.TransferEvent) error
}

// OnBulkCompleted is called after a bulk transfer batch finished.
// Applied counts the elements that actually moved funds.
type OnBulkCompleted interface {
	Hook
	OnBulkCompleted(ctx context.Context, batchSize, applied int, elapsed time.Duration) error
}
