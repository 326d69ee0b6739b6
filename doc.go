// Package ledger provides a small concurrent account-transfer engine
// with two selectable locking strategies, built to study deadlock
// behavior under dynamic tracing and static analysis tooling.
//
// A Ledger owns a balance map seeded with accounts 1 and 2 (1000 each)
// and two mutexes used as coarse ordering tokens. Transfer dispatches to
// one of two strategies chosen by a runtime flag:
//
//   - Ordered (default, safe): the lock paired with the smaller account
//     id is always acquired first, so all goroutines share one global
//     lock order and no circular wait can form.
//   - Direct ("optimized", deadlock-prone): lock selection
//     follows the argument order, and the first lock is held through a
//     short delay before the second is requested. Two goroutines running
//     opposite-direction transfers acquire the locks in opposite order
//     and deadlock once both hold their first lock.
//
// # Quick Start
//
//	l := ledger.New(ledger.WithLogger(slog.Default()))
//
//	var wg sync.WaitGroup
//	wg.Add(2)
//	go func() { defer wg.Done(); l.Transfer(ctx, 1, 2, 100) }()
//	go func() { defer wg.Done(); l.Transfer(ctx, 2, 1, 50) }()
//	wg.Wait()
//
//	b1, _ := l.Balance(1) // 950
//	b2, _ := l.Balance(2) // 1050
//
// # Failure semantics
//
// Insufficient funds is not an error: the transfer is skipped and a
// TransferSkipped event is emitted. Unknown account ids return
// ErrAccountNotFound. A deadlock on the direct path is a genuine
// liveness failure the engine neither detects nor recovers from; the
// caller observes it by bounding its own wait (see cmd/deadlockdemo).
//
// # Observability
//
// Hooks (package hook) receive transfer events after all locks are
// released. The audit_hook package records them to a pluggable
// Recorder; the observability package counts them with go-metrics.
// Every event carries a K-sortable TypeID ("xfer_...", "audit_...").
package ledger
